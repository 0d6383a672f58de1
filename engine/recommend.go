package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/logging"
	"github.com/rushteam/moviekit/metrics"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/recall"
	"github.com/rushteam/moviekit/rerank"
	"github.com/rushteam/moviekit/snapshot"
)

// Request 是一次推荐请求。
type Request struct {
	// Conditions 按提交顺序处理；无法识别的字段被丢弃并产生警告
	Conditions []core.QueryCondition `json:"conditions"`

	// TopN <= 0 时使用 Config.TopN
	TopN int `json:"top_n,omitempty"`

	// Filter 是可选的 CEL 表达式，为 false 的电影被排除
	Filter string `json:"filter,omitempty"`
}

// Response 是推荐结果。
type Response struct {
	SnapshotVersion uint64                          `json:"snapshot_version"`
	Applied         int                             `json:"applied"`
	Warnings        []core.UnrecognizedFieldWarning `json:"warnings"`
	Items           []core.Recommendation           `json:"items"`
	Cached          bool                            `json:"cached"`
}

// Recommend 执行一次推荐。
// 没有可用条件时返回空列表而不是错误；过滤表达式无效时返回 INVALID_INPUT。
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	topN := req.TopN
	if topN <= 0 {
		topN = e.cfg.TopN
	}

	var exprFilter *filter.ExprFilter
	if strings.TrimSpace(req.Filter) != "" {
		f, err := filter.NewExprFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		exprFilter = f
	}

	key := cacheKey(snap.CatalogHash, req, topN)
	if resp, ok := e.cached(ctx, key); ok {
		// 同一目录重新加载后版本号会变，缓存里的版本号以当前快照为准
		resp.SnapshotVersion = snap.Version
		metrics.RecordRecommend(time.Since(start), true, resp.Applied, len(resp.Warnings), len(resp.Items))
		return resp, nil
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logging.NewRequestID()
	}
	rctx := &core.RecommendContext{
		RequestID:  requestID,
		Scene:      "recommend",
		Conditions: req.Conditions,
		Params:     map[string]any{"top_n": topN},
	}
	if exprFilter != nil {
		rctx.Params["filter"] = req.Filter
	}

	p := e.buildPipeline(exprFilter, topN)
	items, err := p.Run(snapshot.NewContext(ctx, snap), rctx, nil)
	if err != nil {
		return nil, err
	}
	if len(items) > topN {
		items = items[:topN]
	}

	resp := &Response{
		SnapshotVersion: snap.Version,
		Applied:         rctx.Applied,
		Warnings:        rctx.Warnings,
		Items:           make([]core.Recommendation, 0, len(items)),
	}
	if resp.Warnings == nil {
		resp.Warnings = []core.UnrecognizedFieldWarning{}
	}
	for _, it := range items {
		resp.Items = append(resp.Items, it.Recommendation())
	}

	e.storeCached(ctx, key, resp)
	metrics.RecordRecommend(time.Since(start), false, resp.Applied, len(resp.Warnings), len(resp.Items))
	logging.Ctx(ctx).Debug().
		Str("request_id", requestID).
		Int("applied", resp.Applied).
		Int("warnings", len(resp.Warnings)).
		Int("results", len(resp.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation served")
	return resp, nil
}

// buildPipeline 组装本次请求的 Pipeline。
// 内置：召回 → [过滤] → 截断；自定义 Pipeline 时把过滤节点插入最后一个召回节点之后。
func (e *Engine) buildPipeline(exprFilter *filter.ExprFilter, topN int) *pipeline.Pipeline {
	hooks := []pipeline.NodeHook{e.nodeHook}

	if e.pipeline == nil {
		nodes := []pipeline.Node{&recall.MultiCondition{Limit: e.cfg.CandidateLimit}}
		if exprFilter != nil {
			nodes = append(nodes, &filter.FilterNode{Filters: []filter.Filter{exprFilter}})
		}
		nodes = append(nodes, &rerank.TopNNode{N: topN})
		return &pipeline.Pipeline{Nodes: nodes, Hooks: hooks}
	}

	nodes := make([]pipeline.Node, 0, len(e.pipeline.Nodes)+1)
	insertAt := pipeline.LastOf(e.pipeline.Nodes, pipeline.KindRecall) + 1
	nodes = append(nodes, e.pipeline.Nodes[:insertAt]...)
	if exprFilter != nil {
		nodes = append(nodes, &filter.FilterNode{Filters: []filter.Filter{exprFilter}})
	}
	nodes = append(nodes, e.pipeline.Nodes[insertAt:]...)
	return &pipeline.Pipeline{Nodes: nodes, Hooks: append(hooks, e.pipeline.Hooks...)}
}

func (e *Engine) nodeHook(node pipeline.Node, elapsed time.Duration, in, out int, err error) {
	metrics.RecordNode(node.Name(), string(node.Kind()), elapsed)
	ev := e.log.Debug()
	if err != nil {
		ev = e.log.Warn().Err(err)
	}
	ev.Str("node", node.Name()).Int("in", in).Int("out", out).Dur("elapsed", elapsed).Msg("node finished")
}

// cacheKey 是 rec:<目录哈希>:<请求哈希>，目录变化后旧结果自然失效。
// 每个字符串都带长度前缀写入摘要，文本中出现任何字节都不会与边界混淆。
func cacheKey(catalogHash uint64, req Request, topN int) string {
	d := xxhash.New()
	_, _ = fmt.Fprintf(d, "%d;", len(req.Conditions))
	for _, c := range req.Conditions {
		writeLenPrefixed(d, c.Field)
		writeLenPrefixed(d, c.Text)
	}
	_, _ = fmt.Fprintf(d, "%d;", topN)
	writeLenPrefixed(d, req.Filter)
	return fmt.Sprintf("rec:%x:%x", catalogHash, d.Sum64())
}

func writeLenPrefixed(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(strconv.Itoa(len(s)))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(s)
}

func (e *Engine) cached(ctx context.Context, key string) (*Response, bool) {
	if e.store == nil {
		return nil, false
	}
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			e.log.Warn().Err(err).Str("store", e.store.Name()).Msg("cache read failed")
		}
		metrics.RecordCache(e.store.Name(), false)
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		metrics.RecordCache(e.store.Name(), false)
		return nil, false
	}
	metrics.RecordCache(e.store.Name(), true)
	resp.Cached = true
	return &resp, true
}

func (e *Engine) storeCached(ctx context.Context, key string, resp *Response) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		e.log.Warn().Err(err).Msg("encode cache entry")
		return
	}
	if err := e.store.Set(ctx, key, data, int(e.cfg.CacheTTL/time.Second)); err != nil {
		e.log.Warn().Err(err).Str("store", e.store.Name()).Msg("cache write failed")
	}
}
