package vector

import (
	"math"
	"sort"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/tokenize"
)

// Index 是词表模型与文档矩阵的组合，构建后不可变，可被并发查询共享。
//
//   - 词表：按语料总词频取前 MaxFeatures 个词（同频按字典序），列号按字典序分配
//   - IDF：ln((1+N)/(1+df)) + 1，构建与查询投影使用同一组权重
//   - 文档行：tf × idf，tf 为原始计数；行范数在构建时缓存
type Index struct {
	tokenizer  *tokenize.Tokenizer
	vocabulary map[string]int
	terms      []string
	idf        []float64
	rows       []Vector
	norms      []float64
}

// Options 是构建参数。
type Options struct {
	// MaxFeatures 词表上限，<= 0 时使用默认值 5000
	MaxFeatures int

	// Tokenizer 分词器，nil 时使用英文停用词分词器
	Tokenizer *tokenize.Tokenizer
}

// Option 构建选项
type Option func(*Options)

// WithMaxFeatures 设置词表上限。
func WithMaxFeatures(n int) Option {
	return func(o *Options) { o.MaxFeatures = n }
}

// WithTokenizer 设置分词器。
func WithTokenizer(t *tokenize.Tokenizer) Option {
	return func(o *Options) { o.Tokenizer = t }
}

// ErrEmptyCorpus 表示没有任何文档可供构建。
var ErrEmptyCorpus = core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput, "vector: empty corpus")

// Build 从按目录顺序排列的文档构建向量空间。
// 文档存在但分词后一个词也没有时，得到空词表（所有打分为 0），不视为错误。
func Build(docs []string, opts ...Option) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = core.Defaults.DefaultMaxFeatures()
	}
	if o.Tokenizer == nil {
		o.Tokenizer = tokenize.Default()
	}

	// 1. 统计每篇文档词频、语料总词频、文档频次
	docCounts := make([]map[string]int, len(docs))
	corpusTF := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range docs {
		counts := o.Tokenizer.Counts(doc)
		docCounts[i] = counts
		for term, c := range counts {
			corpusTF[term] += c
			docFreq[term]++
		}
	}

	// 2. 选词：总词频降序，同频字典序
	candidates := make([]string, 0, len(corpusTF))
	for term := range corpusTF {
		candidates = append(candidates, term)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := corpusTF[candidates[i]], corpusTF[candidates[j]]
		if ti != tj {
			return ti > tj
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > o.MaxFeatures {
		candidates = candidates[:o.MaxFeatures]
	}
	sort.Strings(candidates)

	// 3. 列号与 IDF
	n := float64(len(docs))
	idx := &Index{
		tokenizer:  o.Tokenizer,
		vocabulary: make(map[string]int, len(candidates)),
		terms:      candidates,
		idf:        make([]float64, len(candidates)),
		rows:       make([]Vector, len(docs)),
		norms:      make([]float64, len(docs)),
	}
	for col, term := range candidates {
		idx.vocabulary[term] = col
		idx.idf[col] = SmoothIDF(n, float64(docFreq[term]))
	}

	// 4. 文档矩阵
	for i, counts := range docCounts {
		row := idx.weigh(counts)
		idx.rows[i] = row
		idx.norms[i] = row.Norm()
	}
	return idx, nil
}

// SmoothIDF 是平滑 IDF：ln((1+n)/(1+df)) + 1。
func SmoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

// weigh 把词频映射为词表空间中的 tf×idf 稀疏行，词表外的词被忽略。
func (idx *Index) weigh(counts map[string]int) Vector {
	cols := make([]int, 0, len(counts))
	tf := make(map[int]int, len(counts))
	for term, c := range counts {
		col, ok := idx.vocabulary[term]
		if !ok {
			continue
		}
		cols = append(cols, col)
		tf[col] = c
	}
	sort.Ints(cols)
	v := Vector{Indices: cols, Values: make([]float64, len(cols))}
	for k, col := range cols {
		v.Values[k] = float64(tf[col]) * idx.idf[col]
	}
	return v
}

// Project 把任意文本投影到构建时的列空间。
// 空文本或全部为词表外词时返回零向量。
func (idx *Index) Project(text string) Vector {
	return idx.weigh(idx.tokenizer.Counts(text))
}

// Score 计算查询向量与每一行文档的余弦相似度，长度等于文档数。
// 纯函数，无副作用；零向量查询得到全 0。
func (idx *Index) Score(query Vector) []float64 {
	scores := make([]float64, len(idx.rows))
	qn := query.Norm()
	if qn == 0 {
		return scores
	}
	for i, row := range idx.rows {
		scores[i] = cosineWithNorms(query, row, qn, idx.norms[i])
	}
	return scores
}

// Docs 返回文档数。
func (idx *Index) Docs() int { return len(idx.rows) }

// Dims 返回词表大小（列数）。
func (idx *Index) Dims() int { return len(idx.terms) }

// Row 返回第 i 篇文档的行向量。
func (idx *Index) Row(i int) Vector { return idx.rows[i] }

// Terms 按列号返回词表（副本）。
func (idx *Index) Terms() []string {
	out := make([]string, len(idx.terms))
	copy(out, idx.terms)
	return out
}

// Column 返回词的列号。
func (idx *Index) Column(term string) (int, bool) {
	col, ok := idx.vocabulary[term]
	return col, ok
}

// IDF 返回词的 IDF 权重。
func (idx *Index) IDF(term string) (float64, bool) {
	col, ok := idx.vocabulary[term]
	if !ok {
		return 0, false
	}
	return idx.idf[col], true
}

// Tokenizer 返回构建时使用的分词器。
func (idx *Index) Tokenizer() *tokenize.Tokenizer { return idx.tokenizer }
