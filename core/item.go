package core

import "github.com/rushteam/moviekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：目录位置、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID       string
	Index    int // 在目录中的位置（快照构建时的顺序）
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// MetaString 读取 string 类型的元信息，不存在时返回空串。
func (it *Item) MetaString(key string) string {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// Recommendation 转换为对外的推荐结果。
func (it *Item) Recommendation() Recommendation {
	return Recommendation{
		Title: it.MetaString(MetaTitle),
		Score: it.Score,
		Index: it.Index,
	}
}

// 召回节点写入 Item.Meta 的 key。
const (
	MetaTitle    = "title"
	MetaGenres   = "genres" // []string
	MetaStars    = "stars"  // []string
	MetaDirector = "director"
	MetaYear     = "year" // int
	MetaRating   = "rating"
	MetaVotes    = "votes" // int64
	MetaMPAA     = "mpaa"
	MetaDuration = "duration"
)
