// Package filter 提供召回之后的候选过滤：年份、分级、类型多选，标题黑名单与 CEL 表达式。
package filter

import (
	"context"

	"github.com/rushteam/moviekit/core"
)

// Filter 判断一个候选电影是否应被移除；true 表示移除。
// 候选的元信息由召回节点写入 Item.Meta（core.MetaTitle 等）。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Func 把普通函数包装为 Filter。
type Func struct {
	Label string
	Fn    func(item *core.Item) bool
}

func (f Func) Name() string {
	if f.Label == "" {
		return "filter.func"
	}
	return f.Label
}

func (f Func) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Fn == nil || item == nil {
		return false, nil
	}
	return f.Fn(item), nil
}
