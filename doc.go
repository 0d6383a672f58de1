// Package moviekit 是基于内容的电影推荐工具包。
//
// 设计要点：
// - 多条件召回: 标题、类型、明星、导演、剧情各自独立查询，TF-IDF 余弦相似度取平均
// - 快照不可变: 目录与向量空间一次构建、原子替换，查询路径无锁
// - Pipeline-first: 召回 → 过滤 → 重排通过 Node 串联，可由 YAML 配置
package moviekit

import (
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/engine"
	"github.com/rushteam/moviekit/pipeline"
)

// 轻量 facade：便于用户直接 import "moviekit" 使用核心抽象。
type (
	Pipeline       = pipeline.Pipeline
	Node           = pipeline.Node
	Kind           = pipeline.Kind
	Engine         = engine.Engine
	Request        = engine.Request
	Response       = engine.Response
	Condition      = core.QueryCondition
	Recommendation = core.Recommendation
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// New 创建引擎，见 engine.New。
func New(cfg engine.Config, opts ...engine.Option) *Engine {
	return engine.New(cfg, opts...)
}
