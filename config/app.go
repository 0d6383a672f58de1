package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/store"
)

// EnvPrefix 是环境变量前缀：MOVIEKIT_RECOMMEND_TOP_N -> recommend.top_n。
const EnvPrefix = "MOVIEKIT_"

// ConfigPathEnvVar 可指定配置文件路径。
const ConfigPathEnvVar = "MOVIEKIT_CONFIG"

// DefaultConfigPaths 按顺序查找配置文件，使用第一个存在的。
var DefaultConfigPaths = []string{
	"moviekit.yaml",
	"moviekit.yml",
	"/etc/moviekit/moviekit.yaml",
}

// AppConfig 是服务的完整配置。
// 优先级：环境变量 > 配置文件 > 默认值。
type AppConfig struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig 是目录来源。
type CatalogConfig struct {
	// Path 是 .csv / .xlsx / .json 文件
	Path string `koanf:"path" validate:"required"`
}

// RecommendConfig 是推荐参数。
type RecommendConfig struct {
	MaxFeatures int    `koanf:"max_features" validate:"gte=1"`
	TopN        int    `koanf:"top_n" validate:"gte=1,lte=100"`
	StopWords   string `koanf:"stop_words" validate:"oneof=english none"`
	// CandidateLimit 限制召回输出的候选数，0 表示整个目录
	CandidateLimit int `koanf:"candidate_limit" validate:"gte=0"`
}

// PipelineConfig 指定自定义 Pipeline 的 YAML 文件；为空时使用内置 Pipeline。
type PipelineConfig struct {
	Path string `koanf:"path" validate:"omitempty,file"`
}

// CacheConfig 是推荐结果缓存。
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl" validate:"gte=0"`
	Store   store.Config  `koanf:"store"`
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"` // 每个 IP 每窗口的请求数，0 表示不限
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	// AdminToken 非空时，重新加载接口需要 Bearer Token
	AdminToken string `koanf:"admin_token"`
}

// LoggingConfig 对应 logging.Config。
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DefaultAppConfig 返回默认配置。
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Catalog: CatalogConfig{Path: "Movies_IMDb.xlsx"},
		Recommend: RecommendConfig{
			MaxFeatures: core.Defaults.DefaultMaxFeatures(),
			TopN:        core.Defaults.DefaultTopN(),
			StopWords:   core.Defaults.DefaultStopWords(),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
			Store:   store.Config{Backend: "memory"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

var validate = validator.New()

// Validate 校验配置。
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load 按 默认值 → 配置文件 → 环境变量 的顺序加载配置并校验。
// path 为空时依次尝试 MOVIEKIT_CONFIG 与 DefaultConfigPaths，找不到文件不是错误。
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultAppConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// 环境变量中的配置段，较长的在前：cache_store 要先于 cache 匹配。
var envSections = []string{"cache_store", "catalog", "recommend", "pipeline", "cache", "server", "logging"}

// envKey 把 MOVIEKIT_CACHE_STORE_REDIS_ADDR 转换为 cache.store.redis_addr。
// 不属于任何配置段的变量（例如 MOVIEKIT_CONFIG）被忽略。
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, section := range envSections {
		if strings.HasPrefix(key, section+"_") {
			return strings.ReplaceAll(section, "_", ".") + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return ""
}

var sliceFields = []string{"server.cors_origins"}

// splitSliceFields 把环境变量给出的逗号分隔字符串转换为列表。
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
