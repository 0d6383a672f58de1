// Package analytics 是目录的统计视图：概览与深度洞察。
//
// 全部是对 []catalog.MovieRecord 的纯函数；先用 ViewFilter 选出视图，再聚合。
// 部分指标（类型数、导演数、明星数、Top 明星、Top 类型、类型平均评分）
// 按整个目录计算，不受视图过滤影响。
//
// 取值为 0 或空串的字段视为未知，不参与对应的平均与分组。
// 所有 Top-K 按值降序，同值按 Key 升序。
package analytics

import (
	"sort"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/filter"
	"github.com/rushteam/moviekit/pkg/tokenize"
)

// UnknownStar 是数据源中代表缺失明星的占位值，不计入 Top 明星。
const UnknownStar = "Unknown"

// ViewFilter 是视图过滤条件：年份、分级、类型，各自为空或包含 "All" 时不限制。
// 类型满足任一即可。
type ViewFilter struct {
	Years  filter.Selection `json:"years"`
	MPAA   filter.Selection `json:"mpaa"`
	Genres filter.Selection `json:"genres"`
}

// Match 判断记录是否在视图内。
func (f ViewFilter) Match(m catalog.MovieRecord) bool {
	return f.Years.ContainsYear(m.Year) &&
		f.MPAA.Contains(m.MPAA) &&
		f.Genres.ContainsAny(m.Genres)
}

// Apply 返回视图内的记录，保持目录顺序。
func (f ViewFilter) Apply(records []catalog.MovieRecord) []catalog.MovieRecord {
	out := make([]catalog.MovieRecord, 0, len(records))
	for _, m := range records {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Count 是一个键的计数（或票数合计）。
type Count struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Value 是一个键的均值。
type Value struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// YearCount 是每年的电影数。
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// YearValue 是每年的均值。
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// FilterOptions 是视图过滤可选项，均已排序。
type FilterOptions struct {
	Years  []int    `json:"years"`
	MPAA   []string `json:"mpaa"`
	Genres []string `json:"genres"`
}

// Options 列出目录中出现过的年份、分级、类型。
func Options(all []catalog.MovieRecord) FilterOptions {
	years := make(map[int]struct{})
	mpaa := make(map[string]struct{})
	genres := make(map[string]struct{})
	for _, m := range all {
		if m.Year != 0 {
			years[m.Year] = struct{}{}
		}
		if m.MPAA != "" {
			mpaa[m.MPAA] = struct{}{}
		}
		for _, g := range m.Genres {
			genres[g] = struct{}{}
		}
	}
	opts := FilterOptions{
		Years:  make([]int, 0, len(years)),
		MPAA:   sortedKeys(mpaa),
		Genres: sortedKeys(genres),
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)
	return opts
}

// TopCounts 按计数降序、Key 升序取前 k 个；k <= 0 返回全部。
func TopCounts(counts map[string]int64, k int) []Count {
	out := make([]Count, 0, len(counts))
	for key, c := range counts {
		out = append(out, Count{Key: key, Count: c})
	}
	sortCounts(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func sortCounts(out []Count) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
}

// TopValues 按值降序、Key 升序取前 k 个；k <= 0 返回全部。
func TopValues(values map[string]float64, k int) []Value {
	out := make([]Value, 0, len(values))
	for key, v := range values {
		out = append(out, Value{Key: key, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// WordFrequencies 统计文本中的词频（去停用词），即词云数据。
func WordFrequencies(texts []string, k int) []Count {
	tok := tokenize.Default()
	counts := make(map[string]int64)
	for _, text := range texts {
		for term, c := range tok.Counts(text) {
			counts[term] += int64(c)
		}
	}
	return TopCounts(counts, k)
}

// mean 累加器
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func means(groups map[string]*mean) map[string]float64 {
	out := make(map[string]float64, len(groups))
	for k, g := range groups {
		out[k] = g.value()
	}
	return out
}

func addTo(groups map[string]*mean, key string, v float64) {
	g, ok := groups[key]
	if !ok {
		g = &mean{}
		groups[key] = g
	}
	g.add(v)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
