package core

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐条数
	DefaultTopN() int

	// DefaultMaxFeatures 返回默认的词表上限
	DefaultMaxFeatures() int

	// DefaultStopWords 返回默认的停用词表名称
	DefaultStopWords() string
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 5
}

func (c *DefaultRecommendConfig) DefaultMaxFeatures() int {
	return 5000
}

func (c *DefaultRecommendConfig) DefaultStopWords() string {
	return "english"
}

// Defaults 是包级共享的默认配置。
var Defaults RecommendConfig = &DefaultRecommendConfig{}
