package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
)

// TopNNode 是 Top-N 截断节点：按分数降序、目录位置升序稳定排序后截取前 N 个。
// 通常是 Pipeline 的最后一个节点，过滤之后再截断，保证过滤不会让结果少于 N。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.MultiCondition{},
//	        &filter.FilterNode{...},
//	        &rerank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量；N <= 0 时使用默认值（5），N > len(items) 时返回全部
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil {
		if v, ok := rctx.Params["top_n"].(int); ok && v > 0 {
			limit = v
		}
	}
	if limit <= 0 {
		limit = core.Defaults.DefaultTopN()
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	SortByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SortByScore 按分数降序、目录位置升序排序。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Index < items[j].Index
	})
}
