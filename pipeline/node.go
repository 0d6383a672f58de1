package pipeline

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Kind 标记 Node 所处的阶段，用于打点与插入位置判断。
type Kind string

// 电影推荐只有三个阶段：多条件召回产出带分数的候选，过滤剔除，重排截断。
const (
	KindRecall Kind = "recall"
	KindFilter Kind = "filter"
	KindReRank Kind = "rerank"
)

// Valid 判断是否为已知阶段。
func (k Kind) Valid() bool {
	switch k {
	case KindRecall, KindFilter, KindReRank:
		return true
	}
	return false
}

// Node 是 Pipeline 的最小单元：输入候选，输出候选。
// 快照通过 ctx 传入（snapshot.FromContext），Node 不持有目录引用。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// LastOf 返回最后一个 kind 阶段 Node 的下标，没有时为 -1。
func LastOf(nodes []Node, kind Kind) int {
	last := -1
	for i, n := range nodes {
		if n.Kind() == kind {
			last = i
		}
	}
	return last
}
