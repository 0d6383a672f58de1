// Package vector 实现有界词表的 TF-IDF 向量空间与余弦相似度打分。
//
// Index 由目录的合并文本一次性构建，之后只读；查询文本通过 Project 投影到同一列空间，
// 再由 Score 与全部文档行逐一计算余弦相似度。
package vector

import "math"

// Vector 是稀疏行向量：Indices 严格递增，与 Values 一一对应。
// 零向量的 Indices 为空。
type Vector struct {
	Indices []int
	Values  []float64
}

// Len 返回非零元素个数。
func (v Vector) Len() int { return len(v.Indices) }

// IsZero 判断是否为零向量。
func (v Vector) IsZero() bool { return v.Norm() == 0 }

// Norm 返回 L2 范数。
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot 计算两个稀疏向量的点积（按索引归并）。
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// Dense 展开为长度为 dims 的稠密切片。
func (v Vector) Dense(dims int) []float64 {
	out := make([]float64, dims)
	for k, idx := range v.Indices {
		if idx < dims {
			out[idx] = v.Values[k]
		}
	}
	return out
}

// Cosine 计算余弦相似度；任一向量范数为 0 时返回 0，不会产生 NaN。
func Cosine(a, b Vector) float64 {
	return cosineWithNorms(a, b, a.Norm(), b.Norm())
}

func cosineWithNorms(a, b Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return Dot(a, b) / (normA * normB)
}
