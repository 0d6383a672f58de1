package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
)

// 配置驱动的 Pipeline 需要 import _ "github.com/rushteam/moviekit/config/builders"，
// 由其 init 注册 recall.multi_condition、filter、rerank.topn、rerank.diversity。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

// registry 是进程级的 Node 注册表与共享存储。
type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
	store    core.Store
}

var defaultRegistry = &registry{builders: make(map[string]NodeBuilder)}

// Register 注册一种 Node 的构建逻辑，通常在 init 中调用。空类型名或 nil 构建器被忽略。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.builders[typeName] = builder
}

// DefaultFactory 返回当前注册表的快照，之后的 Register 不影响已返回的 factory。
func DefaultFactory() *pipeline.NodeFactory {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultRegistry.builders {
		f.Register(typeName, builder)
	}
	return f
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	return DefaultFactory().Types()
}

// ValidatePipelineConfig 一次性列出配置中全部未注册的 Node 类型，错误信息附带已支持列表。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	f := DefaultFactory()
	var unknown []string
	for _, t := range cfg.Types() {
		if t != "" && !f.Has(t) {
			unknown = append(unknown, fmt.Sprintf("%q", t))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
		fmt.Sprintf("unsupported node type %s (supported: %v)", strings.Join(unknown, ", "), f.Types()))
}

// SetDefaultStore 设置配置驱动的 Node 共享的存储，例如黑名单过滤器从中读取标题列表。
func SetDefaultStore(s core.Store) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.store = s
}

// DefaultStore 返回共享存储，未设置时为 nil。
func DefaultStore() core.Store {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	return defaultRegistry.store
}
