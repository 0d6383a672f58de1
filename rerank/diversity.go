package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/conv"
)

// Diversity 是多样性重排：同一取值最多保留 MaxPerKey 个物品，保持原有顺序。
// 例如 Key="director"、MaxPerKey=1 时，每位导演只出现一次。
//
// 取值来源优先级：
// - label[Key].Value
// - meta[Key]（string；列表字段取第一个元素）
type Diversity struct {
	Key       string // 默认 "director"
	MaxPerKey int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.Key
	if key == "" {
		key = core.MetaDirector
	}
	limit := n.MaxPerKey
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}
		value := strings.ToLower(strings.TrimSpace(diversityValue(it, key)))
		if value == "" {
			out = append(out, it)
			continue
		}
		if seen[value] >= limit {
			continue
		}
		seen[value]++
		out = append(out, it)
	}

	return out, nil
}

func diversityValue(it *core.Item, key string) string {
	if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
		return lbl.Value
	}
	v, ok := it.Meta[key]
	if !ok {
		return ""
	}
	if s, ok := conv.ToString(v); ok {
		return s
	}
	if list := conv.SliceAnyToString(v); len(list) > 0 {
		return list[0]
	}
	return ""
}
