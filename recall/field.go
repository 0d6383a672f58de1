package recall

import (
	"strings"

	"github.com/rushteam/moviekit/core"
)

var fieldByKey = func() map[string]core.Field {
	m := make(map[string]core.Field, len(core.Fields()))
	for _, f := range core.Fields() {
		m[strings.ToLower(string(f))] = f
	}
	return m
}()

// NormalizeField 把调用方输入的字段名映射为语义字段。
//
// 规则：去掉首尾空白，不区分大小写，连续的空格/下划线视为一个下划线。
// "plot summary"、" PLOT__Summary " 都映射为 Plot_Summary；
// "plot-summary"、"plotsummary"、"genre" 无法识别。
func NormalizeField(name string) (core.Field, bool) {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '_' || r == '\t' })
	if len(parts) == 0 {
		return "", false
	}
	f, ok := fieldByKey[strings.ToLower(strings.Join(parts, "_"))]
	return f, ok
}

// Condition 是归一化后的查询条件。
type Condition struct {
	Field core.Field
	Text  string
}

// PrepareConditions 归一化字段名并丢弃无法识别的条件。
//
// 同一字段出现多次时后者覆盖前者的文本，位置保留第一次出现的位置。
// 被丢弃的条件以 UnrecognizedFieldWarning 返回，按提交顺序排列。
func PrepareConditions(conds []core.QueryCondition) ([]Condition, []core.UnrecognizedFieldWarning) {
	var (
		out      = make([]Condition, 0, len(conds))
		pos      = make(map[core.Field]int, len(conds))
		warnings []core.UnrecognizedFieldWarning
	)
	for _, c := range conds {
		f, ok := NormalizeField(c.Field)
		if !ok {
			warnings = append(warnings, core.UnrecognizedFieldWarning{Field: c.Field})
			continue
		}
		if i, seen := pos[f]; seen {
			out[i].Text = c.Text
			continue
		}
		pos[f] = len(out)
		out = append(out, Condition{Field: f, Text: c.Text})
	}
	return out, warnings
}
