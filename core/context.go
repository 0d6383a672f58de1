package core

import "github.com/rushteam/moviekit/pkg/utils"

// RecommendContext 承载一次查询的请求级信息，贯穿整个 Pipeline 透传。
// 推荐只依赖本次查询，不携带任何用户历史。
type RecommendContext struct {
	RequestID string
	Scene     string

	// Conditions 是本次查询提交的 (字段, 文本) 列表，顺序即提交顺序
	Conditions []QueryCondition

	// Warnings 由召回阶段写入：被丢弃的无法识别字段
	Warnings []UnrecognizedFieldWarning

	// Applied 由召回阶段写入：实际参与打分的条件数
	Applied int

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 top_n、filter 表达式等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
