package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rushteam/moviekit/pkg/conv"
)

// MovieRecord 是目录中的一条已归一化的电影记录。
// 字段永不为 nil：缺失的标量为空串，缺失的列表为空切片。
type MovieRecord struct {
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Stars       []string `json:"stars"`
	Director    string   `json:"director"`
	PlotSummary string   `json:"plot_summary"`

	// 以下字段只用于分析视图，不参与推荐打分；0 表示未知
	Year            int     `json:"year"`
	DurationMinutes float64 `json:"duration_minutes"`
	Votes           int64   `json:"votes"`
	Rating          float64 `json:"rating"`
	MPAA            string  `json:"mpaa"`
}

// CombinedText 返回用于建索引的合并文本：
// Title、Genres、Stars、Director、PlotSummary 依次以单个空格连接。
// 每次调用都从源字段重新计算，因此永远与源字段一致。
func (m MovieRecord) CombinedText() string {
	return strings.Join([]string{
		m.Title,
		strings.Join(m.Genres, " "),
		strings.Join(m.Stars, " "),
		m.Director,
		m.PlotSummary,
	}, " ")
}

// FieldText 返回单个语义字段拍平后的文本。
func (m MovieRecord) FieldText(field string) string {
	switch field {
	case "Title":
		return m.Title
	case "Genres":
		return strings.Join(m.Genres, " ")
	case "Stars":
		return strings.Join(m.Stars, " ")
	case "Director":
		return m.Director
	case "Plot_Summary":
		return m.PlotSummary
	default:
		return ""
	}
}

// RawMovie 是加载器交给归一化器的原始行。
// 各字段可能为 nil、字符串、数字或已经切分好的列表。
type RawMovie struct {
	Title       any
	Genres      any
	Stars       any
	Director    any
	PlotSummary any
	Duration    any
	Votes       any
	Rating      any
	Year        any
	MPAA        any
}

// Normalize 把原始行归一化为 MovieRecord，尽力而为，永不失败。
func Normalize(raw RawMovie) MovieRecord {
	return MovieRecord{
		Title:           scalar(raw.Title),
		Genres:          dedup(SplitList(raw.Genres)),
		Stars:           SplitList(raw.Stars),
		Director:        scalar(raw.Director),
		PlotSummary:     scalar(raw.PlotSummary),
		Year:            int(leadingNumber(raw.Year)),
		DurationMinutes: leadingNumber(raw.Duration),
		Votes:           int64(leadingNumber(raw.Votes)),
		Rating:          leadingNumber(raw.Rating),
		MPAA:            scalar(raw.MPAA),
	}
}

// SplitList 把列表字段统一成 []string：
// 字符串按逗号切分；列表逐个元素处理；每个元素去除首尾空白，丢弃空元素。
func SplitList(v any) []string {
	var parts []string
	switch val := v.(type) {
	case nil:
		return []string{}
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		parts = conv.SliceAnyToString(val)
	default:
		s, ok := conv.ToString(val)
		if !ok {
			return []string{}
		}
		parts = []string{s}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		// 已切分的列表元素里仍可能带逗号
		for _, sub := range strings.Split(p, ",") {
			if s := strings.TrimSpace(sub); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// dedup 去重，保留首次出现的顺序。
func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func scalar(v any) string {
	s, ok := conv.ToString(v)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// leadingNumber 解析形如 "142 min"、"1,234"、"(2008)"、"8.1" 的数值，失败返回 0。
func leadingNumber(v any) float64 {
	s, ok := v.(string)
	if !ok {
		f, _ := conv.ToFloat64(v)
		return f
	}
	s = strings.ReplaceAll(s, ",", "")
	start := strings.IndexFunc(s, func(r rune) bool { return unicode.IsDigit(r) || r == '.' })
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && (unicode.IsDigit(rune(s[end])) || s[end] == '.') {
		end++
	}
	f, err := strconv.ParseFloat(s[start:end], 64)
	if err != nil {
		return 0
	}
	return f
}
