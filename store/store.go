// Package store 是 core.Store 的实现：内存、Redis、Badger。
//
// 接口定义在 core 包；引擎用它缓存推荐结果，黑名单过滤器用它读取标题列表。
//
//	var s core.Store = store.NewMemoryStore()
package store

import (
	"fmt"
	"strings"

	"github.com/rushteam/moviekit/core"
)

// ErrNotFound 是 core.ErrStoreNotFound 的别名。
var ErrNotFound = core.ErrStoreNotFound

// Config 描述要打开的存储后端。
type Config struct {
	// Backend: memory / redis / badger
	Backend string `koanf:"backend" validate:"oneof=memory redis badger"`

	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`

	// BadgerDir 为空时以内存模式打开
	BadgerDir string `koanf:"badger_dir"`
}

// Open 按配置打开存储。
func Open(cfg Config) (core.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case "badger":
		return NewBadgerStore(cfg.BadgerDir)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("store: unknown backend %q", cfg.Backend))
	}
}

func ttlSeconds(ttl []int) int {
	if len(ttl) > 0 && ttl[0] > 0 {
		return ttl[0]
	}
	return 0
}
