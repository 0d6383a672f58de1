package filter

import (
	"context"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤：表达式为 false 的物品被过滤。
//
//	f, _ := filter.NewExprFilter(`movie.year >= 2000 && "Crime" in movie.genres`)
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式，编译失败时返回错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "filter: invalid expression", err)
	}
	return &ExprFilter{program: p}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

// Expr 返回表达式原文。
func (f *ExprFilter) Expr() string { return f.program.String() }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	ok, err := f.program.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
