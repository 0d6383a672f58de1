// Package catalog 是电影目录：归一化后的 MovieRecord 有序集合及其加载器。
//
// 目录在构建后只读；任何变更都需要重新构建一个新的 Catalog，
// 由 engine 据此重建向量空间快照。
package catalog

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Catalog 是只读的电影目录，迭代顺序即加载顺序。
type Catalog struct {
	records []MovieRecord
	hash    uint64
}

// NewCatalog 基于已归一化的记录创建目录（记录切片会被复制）。
func NewCatalog(records []MovieRecord) *Catalog {
	cp := make([]MovieRecord, len(records))
	copy(cp, records)
	return &Catalog{records: cp, hash: contentHash(cp)}
}

// FromRaw 逐行归一化后创建目录。
func FromRaw(rows []RawMovie) *Catalog {
	records := make([]MovieRecord, len(rows))
	for i, r := range rows {
		records[i] = Normalize(r)
	}
	return NewCatalog(records)
}

// Len 返回记录数。
func (c *Catalog) Len() int { return len(c.records) }

// At 返回第 i 条记录。
func (c *Catalog) At(i int) MovieRecord { return c.records[i] }

// Records 返回全部记录的副本。
func (c *Catalog) Records() []MovieRecord {
	out := make([]MovieRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Titles 按目录顺序返回全部标题。
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Title
	}
	return out
}

// Documents 按目录顺序返回每条记录的合并文本。
func (c *Catalog) Documents() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.CombinedText()
	}
	return out
}

// Hash 返回目录内容哈希，作为快照缓存的身份。
func (c *Catalog) Hash() uint64 { return c.hash }

// contentHash 对全部字段（含分析字段）做 xxhash，字段与记录之间用不可见分隔符隔开。
func contentHash(records []MovieRecord) uint64 {
	d := xxhash.New()
	for _, r := range records {
		_, _ = d.WriteString(r.Title)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strings.Join(r.Genres, "\x1e"))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strings.Join(r.Stars, "\x1e"))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(r.Director)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(r.PlotSummary)
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strconv.Itoa(r.Year))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strconv.FormatFloat(r.DurationMinutes, 'g', -1, 64))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strconv.FormatInt(r.Votes, 10))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(strconv.FormatFloat(r.Rating, 'g', -1, 64))
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(r.MPAA)
		_, _ = d.WriteString("\x1d")
	}
	return d.Sum64()
}
