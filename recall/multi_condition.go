package recall

import (
	"context"
	"strconv"
	"strings"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/logging"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/utils"
	"github.com/rushteam/moviekit/snapshot"
)

// ErrNoSnapshot 表示 context 中没有可用的快照。
var ErrNoSnapshot = core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: no snapshot in context")

// MultiCondition 是召回 Node：对 rctx.Conditions 做多条件聚合打分，
// 按 (分数降序, 目录位置升序) 输出候选。
//
// 快照从 context 读取（snapshot.NewContext）。
// 打分结果写回 rctx.Applied / rctx.Warnings；没有可用条件时输出为空。
type MultiCondition struct {
	// Limit 限制输出的候选数，<= 0 表示输出整个目录，交给后续过滤与截断
	Limit int
}

func (n *MultiCondition) Name() string        { return "recall.multi_condition" }
func (n *MultiCondition) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *MultiCondition) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	snap, ok := snapshot.FromContext(ctx)
	if !ok {
		return nil, ErrNoSnapshot
	}
	if rctx == nil {
		return nil, nil
	}

	agg, err := Aggregate(ctx, snap.Index, rctx.Conditions)
	if err != nil {
		return nil, err
	}
	rctx.Applied = agg.Applied()
	rctx.Warnings = agg.Warnings

	if len(agg.Warnings) > 0 {
		log := logging.With("recall")
		for _, w := range agg.Warnings {
			log.Debug().Str("request_id", rctx.RequestID).Str("field", w.Field).Msg("dropped unrecognized query field")
		}
	}
	if agg.Applied() == 0 {
		return nil, nil
	}

	limit := n.Limit
	if limit <= 0 {
		limit = len(agg.Scores)
	}
	order := Rank(agg.Scores, limit)

	out := make([]*core.Item, 0, len(order))
	for _, i := range order {
		it := NewMovieItem(i, snap.Catalog.At(i))
		it.Score = agg.Scores[i]
		for k, c := range agg.Conditions {
			it.Features["sim_"+strings.ToLower(string(c.Field))] = agg.PerCondition[k][i]
		}
		it.PutLabel("recall_source", utils.NewLabel(n.Name(), "recall"))
		out = append(out, it)
	}
	return out, nil
}

// NewMovieItem 把目录记录包装为 Pipeline 的 Item，元信息供过滤与重排使用。
func NewMovieItem(index int, m catalog.MovieRecord) *core.Item {
	it := core.NewItem(strconv.Itoa(index))
	it.Index = index
	it.Meta[core.MetaTitle] = m.Title
	it.Meta[core.MetaGenres] = m.Genres
	it.Meta[core.MetaStars] = m.Stars
	it.Meta[core.MetaDirector] = m.Director
	it.Meta[core.MetaYear] = m.Year
	it.Meta[core.MetaRating] = m.Rating
	it.Meta[core.MetaVotes] = m.Votes
	it.Meta[core.MetaMPAA] = m.MPAA
	it.Meta[core.MetaDuration] = m.DurationMinutes
	return it
}

// Result 是 Recommend 的返回值。
type Result struct {
	Items    []core.Recommendation
	Applied  int
	Warnings []core.UnrecognizedFieldWarning
}

// Recommend 不经过 Pipeline，直接对快照做多条件推荐。
// 没有可用条件时 Items 为空，不是错误。
func Recommend(ctx context.Context, snap *snapshot.Snapshot, conds []core.QueryCondition, topN int) (Result, error) {
	if snap == nil {
		return Result{}, ErrNoSnapshot
	}
	agg, err := Aggregate(ctx, snap.Index, conds)
	if err != nil {
		return Result{}, err
	}
	res := Result{Applied: agg.Applied(), Warnings: agg.Warnings, Items: []core.Recommendation{}}
	if agg.Applied() == 0 {
		return res, nil
	}
	for _, i := range Rank(agg.Scores, topN) {
		res.Items = append(res.Items, core.Recommendation{
			Title: snap.Catalog.At(i).Title,
			Score: agg.Scores[i],
			Index: i,
		})
	}
	return res, nil
}
