// Package builders 注册内置 Node 的配置构建器。
// 使用配置驱动的 Pipeline 时以空白导入触发注册：
//
//	import _ "github.com/rushteam/moviekit/config/builders"
package builders

import (
	"fmt"

	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/pkg/conv"
	"github.com/rushteam/moviekit/recall"
	"github.com/rushteam/moviekit/rerank"
)

func init() {
	config.Register("recall.multi_condition", BuildMultiConditionNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildMultiConditionNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &recall.MultiCondition{Limit: int(conv.ConfigGetInt64(cfg, "limit", 0))}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		Key:       conv.ConfigGet(cfg, "key", ""),
		MaxPerKey: int(conv.ConfigGetInt64(cfg, "max_per_key", 1)),
	}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		f, err := BuildFilter(filterMap)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildFilter 按 type 构建单个过滤器：blacklist / expr / year / mpaa / genre。
func BuildFilter(filterMap map[string]interface{}) (filter.Filter, error) {
	filterType := conv.ConfigGet(filterMap, "type", "")
	switch filterType {
	case "blacklist":
		titles := conv.SliceAnyToString(filterMap["titles"])
		key := conv.ConfigGet(filterMap, "key", "")
		var adapter *filter.StoreAdapter
		if key != "" {
			s := config.DefaultStore()
			if s == nil {
				return nil, fmt.Errorf("blacklist filter with key %q needs a store (config.SetDefaultStore)", key)
			}
			adapter = filter.NewStoreAdapter(s)
		}
		return filter.NewBlacklistFilter(titles, adapter, key), nil
	case "expr":
		return filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
	case "year":
		return &filter.YearFilter{Years: conv.SliceAnyToString(filterMap["years"])}, nil
	case "mpaa":
		return &filter.MPAAFilter{Ratings: conv.SliceAnyToString(filterMap["ratings"])}, nil
	case "genre":
		return &filter.GenreFilter{Genres: conv.SliceAnyToString(filterMap["genres"])}, nil
	default:
		return nil, fmt.Errorf("unknown filter type: %s (supported: blacklist, expr, year, mpaa, genre)", filterType)
	}
}
