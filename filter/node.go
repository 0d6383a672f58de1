package filter

import (
	"context"
	"strconv"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/logging"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉；输出保持输入顺序。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filteredCount := 0

	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				l := logging.With("filter")
				l.Warn().Err(err).Str("filter", f.Name()).Str("item", item.ID).Msg("filter failed, item kept")
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			filteredCount++
			item.PutLabel("filtered", utils.NewLabel("true", reason))
			continue
		}
		out = append(out, item)
	}

	if rctx != nil && filteredCount > 0 {
		rctx.PutLabel("filtered_count", utils.NewLabel(strconv.Itoa(filteredCount), n.Name()))
	}
	return out, nil
}
