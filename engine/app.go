package engine

import (
	"fmt"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/store"

	// 注册内置 Node，供配置驱动的 Pipeline 使用
	_ "github.com/rushteam/moviekit/config/builders"
)

// FromAppConfig 按应用配置创建引擎：打开结果缓存、加载自定义 Pipeline、设置目录加载器。
// 返回的引擎尚未加载快照。
func FromAppConfig(cfg *config.AppConfig) (*Engine, error) {
	opts := []Option{WithLoader(catalog.FileLoader{Path: cfg.Catalog.Path})}

	if cfg.Cache.Enabled {
		s, err := store.Open(cfg.Cache.Store)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		config.SetDefaultStore(s)
		opts = append(opts, WithStore(s))
	}

	if cfg.Pipeline.Path != "" {
		p, err := LoadPipeline(cfg.Pipeline.Path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPipeline(p))
	}

	return New(Config{
		MaxFeatures:    cfg.Recommend.MaxFeatures,
		StopWords:      cfg.Recommend.StopWords,
		TopN:           cfg.Recommend.TopN,
		CandidateLimit: cfg.Recommend.CandidateLimit,
		CacheTTL:       cfg.Cache.TTL,
	}, opts...), nil
}

// LoadPipeline 从 YAML 或 JSON（按扩展名）文件构建 Pipeline，节点类型必须已注册。
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	pc, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	if err := config.ValidatePipelineConfig(pc); err != nil {
		return nil, err
	}
	p, err := pc.BuildPipeline(config.DefaultFactory())
	if err != nil {
		return nil, fmt.Errorf("build pipeline %s: %w", path, err)
	}
	return p, nil
}

// Loader 返回 Reload 使用的加载器，未设置时为 nil。
func (e *Engine) Loader() catalog.Loader {
	e.loaderMu.Lock()
	defer e.loaderMu.Unlock()
	return e.loader
}
