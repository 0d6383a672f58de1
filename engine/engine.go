// Package engine 持有当前快照并对外提供推荐。
//
// 快照以 atomic.Pointer 发布：查询路径无锁，只读取一次指针；
// 重新加载时构建新快照再原子替换，仍在进行中的查询继续使用旧快照。
// 相同目录内容（按哈希）不会重复构建，并发加载同一目录由 singleflight 合并。
package engine

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/logging"
	"github.com/rushteam/moviekit/metrics"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/snapshot"
)

var (
	// ErrNotReady 表示尚未加载任何快照。
	ErrNotReady = core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "engine: no snapshot loaded")

	// ErrNoLoader 表示 Reload 之前从未调用过 Load。
	ErrNoLoader = core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "engine: no catalog loader configured")
)

// Config 是引擎参数。
type Config struct {
	MaxFeatures int
	StopWords   string
	TopN        int

	// CandidateLimit 限制召回输出的候选数，0 表示整个目录
	CandidateLimit int

	// CacheTTL 是结果缓存的过期时间，0 表示不过期；未设置 Store 时不缓存
	CacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = core.Defaults.DefaultMaxFeatures()
	}
	if c.StopWords == "" {
		c.StopWords = core.Defaults.DefaultStopWords()
	}
	if c.TopN <= 0 {
		c.TopN = core.Defaults.DefaultTopN()
	}
	return c
}

// Option 引擎选项
type Option func(*Engine)

// WithStore 设置结果缓存。
func WithStore(s core.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithPipeline 使用自定义 Pipeline 代替内置的 召回 → 过滤 → 截断。
// 请求携带的过滤表达式会插入到最后一个召回节点之后。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithLoader 设置 Reload 使用的目录加载器。
func WithLoader(l catalog.Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// Engine 是推荐引擎，可被并发使用。
type Engine struct {
	cfg      Config
	store    core.Store
	pipeline *pipeline.Pipeline
	log      zerolog.Logger

	current atomic.Pointer[snapshot.Snapshot]
	version atomic.Uint64
	group   singleflight.Group

	loaderMu sync.Mutex
	loader   catalog.Loader
}

// New 创建引擎；此时还没有快照，需要调用 Load。
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg.withDefaults(),
		log: logging.With("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config 返回生效的配置。
func (e *Engine) Config() Config { return e.cfg }

// Store 返回结果缓存，未设置时为 nil。
func (e *Engine) Store() core.Store { return e.store }

// Current 返回当前快照，尚未加载时为 nil。
func (e *Engine) Current() *snapshot.Snapshot { return e.current.Load() }

// Ready 判断是否已有快照。
func (e *Engine) Ready() bool { return e.current.Load() != nil }

// Load 通过 loader 加载目录并发布快照，loader 会被记住供 Reload 使用。
func (e *Engine) Load(ctx context.Context, loader catalog.Loader) (*snapshot.Snapshot, error) {
	e.loaderMu.Lock()
	e.loader = loader
	e.loaderMu.Unlock()

	start := time.Now()
	cat, err := loader.Load(ctx)
	if err != nil {
		metrics.RecordSnapshot("error", time.Since(start))
		e.log.Error().Err(err).Msg("catalog load failed")
		return nil, err
	}
	return e.LoadCatalog(ctx, cat)
}

// Reload 用最近一次的 loader 重新加载。
func (e *Engine) Reload(ctx context.Context) (*snapshot.Snapshot, error) {
	e.loaderMu.Lock()
	loader := e.loader
	e.loaderMu.Unlock()
	if loader == nil {
		return nil, ErrNoLoader
	}
	return e.Load(ctx, loader)
}

// LoadCatalog 为目录构建并发布快照，返回当前生效的快照。
// 目录哈希与当前快照相同时直接返回当前快照。
// 版本号在构建成功后才分配，失败的构建不占用版本号。
// 并发加载不同目录时，版本号更大的快照生效；落后的调用方拿到的是胜出的快照，
// 可以用返回值的 CatalogHash 与 cat.Hash() 比较来判断自己的目录是否被取代。
func (e *Engine) LoadCatalog(ctx context.Context, cat *catalog.Catalog) (*snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	hash := cat.Hash()
	if cur := e.current.Load(); cur != nil && cur.CatalogHash == hash {
		metrics.RecordSnapshot("reused", time.Since(start))
		e.log.Debug().Uint64("version", cur.Version).Msg("catalog unchanged, snapshot reused")
		return cur, nil
	}

	v, err, shared := e.group.Do(strconv.FormatUint(hash, 16), func() (interface{}, error) {
		snap, err := snapshot.Build(cat, snapshot.Options{
			MaxFeatures: e.cfg.MaxFeatures,
			StopWords:   e.cfg.StopWords,
		})
		if err != nil {
			return nil, err
		}
		// 尚未发布，此时写入版本号不存在并发读
		snap.Version = e.version.Add(1)
		return e.publish(snap), nil
	})
	if err != nil {
		metrics.RecordSnapshot("error", time.Since(start))
		e.log.Error().Err(err).Int("movies", cat.Len()).Msg("snapshot build failed")
		return nil, err
	}
	snap := v.(*snapshot.Snapshot)
	if !shared {
		metrics.RecordSnapshot("built", time.Since(start))
	}
	if snap.CatalogHash != hash {
		e.log.Warn().
			Uint64("version", snap.Version).
			Msg("catalog superseded by a newer snapshot")
	}
	return snap, nil
}

// publish 发布快照；版本号更大的快照不会被较早开始的构建覆盖。
func (e *Engine) publish(snap *snapshot.Snapshot) *snapshot.Snapshot {
	for {
		old := e.current.Load()
		if old != nil && old.Version > snap.Version {
			return old
		}
		if e.current.CompareAndSwap(old, snap) {
			break
		}
	}
	metrics.SetServing(snap.Version, snap.Len(), snap.Index.Dims())
	e.log.Info().
		Str("snapshot_id", snap.ID.String()).
		Uint64("version", snap.Version).
		Int("movies", snap.Len()).
		Int("terms", snap.Index.Dims()).
		Msg("snapshot published")
	return snap
}

// Close 释放结果缓存。
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}
