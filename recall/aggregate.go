package recall

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/vector"
)

// Aggregation 是多条件聚合的结果。
type Aggregation struct {
	// Conditions 是实际参与打分的条件（已归一化、去重）
	Conditions []Condition

	// PerCondition[k][i] 是第 k 个条件对第 i 部电影的余弦相似度
	PerCondition [][]float64

	// Scores[i] 是第 i 部电影的平均分；没有可用条件时为 nil
	Scores []float64

	Warnings []core.UnrecognizedFieldWarning
}

// Applied 返回参与打分的条件数。
func (a Aggregation) Applied() int { return len(a.Conditions) }

// Aggregate 对每个可识别的条件独立打分，再按条件数取平均。
//
// 各条件并发打分，求和按条件顺序进行，结果与并发调度无关。
// 查询文本投影到合并文本的列空间，字段名只决定条件是否生效。
// 文本为空（零向量）的条件仍计入分母。
func Aggregate(ctx context.Context, idx *vector.Index, conds []core.QueryCondition) (Aggregation, error) {
	prepared, warnings := PrepareConditions(conds)
	agg := Aggregation{Conditions: prepared, Warnings: warnings}
	if len(prepared) == 0 || idx == nil {
		return agg, nil
	}

	per := make([][]float64, len(prepared))
	eg, egCtx := errgroup.WithContext(ctx)
	for k, c := range prepared {
		k, text := k, c.Text
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			per[k] = idx.Score(idx.Project(text))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Aggregation{}, err
	}

	sum := make([]float64, idx.Docs())
	for _, scores := range per {
		for i, s := range scores {
			sum[i] += s
		}
	}
	n := float64(len(prepared))
	for i := range sum {
		sum[i] /= n
	}

	agg.PerCondition = per
	agg.Scores = sum
	return agg, nil
}

// Rank 按分数降序、目录位置升序返回前 topN 个目录位置。
// topN <= 0 时使用默认值；topN 大于目录大小时返回全部。
func Rank(scores []float64, topN int) []int {
	if topN <= 0 {
		topN = core.Defaults.DefaultTopN()
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}
