package utils

import "strings"

const (
	valueSep  = "|"
	sourceSep = ","
)

// Label 记录某个节点对候选或请求做了什么，例如 recall.multi_condition 写入命中的字段，
// filter 写入过滤原因。Source 是写入者的节点名。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// NewLabel 创建一个 Label。
func NewLabel(value, source string) Label {
	return Label{Value: value, Source: source}
}

// Values 返回累积的全部取值。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, valueSep)
}

// Has 判断 v 是否在累积取值中。
func (l Label) Has(v string) bool {
	for _, x := range l.Values() {
		if x == v {
			return true
		}
	}
	return false
}

// MergeLabel 合并同名 Label：取值按顺序追加，来源去重追加。空 Label 不影响结果。
func MergeLabel(existing Label, incoming Label) Label {
	switch {
	case existing.Value == "":
		return incoming
	case incoming.Value == "":
		return existing
	}
	return Label{
		Value:  existing.Value + valueSep + incoming.Value,
		Source: appendSource(existing.Source, incoming.Source),
	}
}

func appendSource(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	if incoming == "" {
		return existing
	}
	for _, s := range strings.Split(existing, sourceSep) {
		if s == incoming {
			return existing
		}
	}
	return existing + sourceSep + incoming
}
