// Package dsl 是基于 CEL (Common Expression Language) 的过滤表达式。
//
// 表达式可访问的变量：
//   - movie：title / genres / stars / director / year / rating / votes / mpaa / duration
//   - score：当前聚合分数
//   - label：Item 的 Label 取值，例如 label.recall_source
//   - params：请求级参数
//
// 示例：
//   - `movie.year >= 2000 && movie.rating >= 7.5`
//   - `"Crime" in movie.genres`
//   - `movie.director != "Michael Bay" && score > 0.1`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/moviekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 按表达式缓存编译结果
	programs sync.Map
)

func env() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("movie", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("label", cel.MapType(cel.StringType, cel.StringType)),
			cel.Variable("params", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，可并发复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式并缓存；表达式必须返回 bool。
func Compile(expr string) (*Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(*Program), nil
	}
	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, out)
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p := &Program{expr: expr, prg: prg}
	programs.Store(expr, p)
	return p, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Match 对一个 Item 求值。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(Input(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译（命中缓存时跳过）并求值；空表达式恒为 true。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(item, rctx)
}

var movieKeys = []string{
	core.MetaTitle, core.MetaGenres, core.MetaStars, core.MetaDirector,
	core.MetaYear, core.MetaRating, core.MetaVotes, core.MetaMPAA, core.MetaDuration,
}

// Input 构建表达式的输入变量；缺失的电影字段以零值补齐，表达式可以直接访问。
func Input(item *core.Item, rctx *core.RecommendContext) map[string]any {
	movie := map[string]any{
		core.MetaTitle:    "",
		core.MetaGenres:   []string{},
		core.MetaStars:    []string{},
		core.MetaDirector: "",
		core.MetaYear:     0,
		core.MetaRating:   0.0,
		core.MetaVotes:    int64(0),
		core.MetaMPAA:     "",
		core.MetaDuration: 0.0,
	}
	labels := map[string]string{}
	score := 0.0
	if item != nil {
		for _, k := range movieKeys {
			if v, ok := item.Meta[k]; ok && v != nil {
				movie[k] = v
			}
		}
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		score = item.Score
	}
	params := map[string]any{}
	if rctx != nil && rctx.Params != nil {
		params = rctx.Params
	}
	return map[string]any{
		"movie":  movie,
		"score":  score,
		"label":  labels,
		"params": params,
	}
}
