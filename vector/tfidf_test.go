package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/moviekit/pkg/tokenize"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{
			name: "half overlap",
			a:    Vector{Indices: []int{0, 2}, Values: []float64{1, 1}},
			b:    Vector{Indices: []int{1, 2}, Values: []float64{1, 1}},
			want: 0.5,
		},
		{
			name: "identical",
			a:    Vector{Indices: []int{3}, Values: []float64{2}},
			b:    Vector{Indices: []int{3}, Values: []float64{5}},
			want: 1,
		},
		{
			name: "zero vector",
			a:    Vector{},
			b:    Vector{Indices: []int{1}, Values: []float64{1}},
			want: 0,
		},
		{
			name: "both zero",
			a:    Vector{},
			b:    Vector{},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestBuild_IDFAndWeights(t *testing.T) {
	idx, err := Build([]string{"apple banana", "apple orange"}, WithTokenizer(tokenize.New(tokenize.StopWordSet{}, 0)))
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "banana", "orange"}, idx.Terms())
	assert.Equal(t, 2, idx.Docs())

	apple, ok := idx.IDF("apple")
	require.True(t, ok)
	assert.InDelta(t, 1.0, apple, 1e-12) // ln(3/3)+1

	banana, _ := idx.IDF("banana")
	assert.InDelta(t, math.Log(3.0/2.0)+1, banana, 1e-12)

	row := idx.Row(0)
	assert.Equal(t, []int{0, 1}, row.Indices)
	assert.InDelta(t, banana, row.Values[1], 1e-12)
}

func TestBuild_MaxFeatures(t *testing.T) {
	docs := []string{"crime crime crime drama", "crime drama zeta", "alpha"}
	idx, err := Build(docs, WithMaxFeatures(2))
	require.NoError(t, err)

	// crime=4, drama=2, alpha=1, zeta=1
	assert.Equal(t, []string{"crime", "drama"}, idx.Terms())

	idx, err = Build(docs, WithMaxFeatures(3))
	require.NoError(t, err)
	// 同频时按字典序：alpha 先于 zeta
	assert.Equal(t, []string{"alpha", "crime", "drama"}, idx.Terms())
}

func TestBuild_EmptyCorpus(t *testing.T) {
	_, err := Build(nil)
	assert.True(t, errors.Is(err, ErrEmptyCorpus))

	idx, err := Build([]string{"the and", ""})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Dims())
	assert.Equal(t, []float64{0, 0}, idx.Score(idx.Project("anything")))
}

func TestProject(t *testing.T) {
	idx, err := Build([]string{"Heist thriller crime", "Space opera", "Crime drama"})
	require.NoError(t, err)

	q := idx.Project("CRIME, crime!")
	col, ok := idx.Column("crime")
	require.True(t, ok)
	require.Equal(t, []int{col}, q.Indices)
	idf, _ := idx.IDF("crime")
	assert.InDelta(t, 2*idf, q.Values[0], 1e-12)

	assert.True(t, idx.Project("").IsZero())
	assert.True(t, idx.Project("unknown words only").IsZero())
	assert.True(t, idx.Project("the of and").IsZero())
}

func TestScore_SelfSimilarity(t *testing.T) {
	docs := []string{
		"Heat Crime Drama Al Pacino Michael Mann bank robbers",
		"Alien Horror Sci-Fi Sigourney Weaver Ridley Scott space crew",
		"Se7en Crime Mystery Brad Pitt David Fincher serial killer",
	}
	idx, err := Build(docs)
	require.NoError(t, err)

	for i, doc := range docs {
		scores := idx.Score(idx.Project(doc))
		require.Len(t, scores, len(docs))
		assert.InDelta(t, 1.0, scores[i], 1e-9)
		for j, s := range scores {
			assert.LessOrEqual(t, s, scores[i]+1e-12, "doc %d vs %d", i, j)
		}
	}
}

func TestScore_ZeroQuery(t *testing.T) {
	idx, err := Build([]string{"crime", "drama"})
	require.NoError(t, err)
	scores := idx.Score(Vector{})
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestVector_Dense(t *testing.T) {
	v := Vector{Indices: []int{1, 3}, Values: []float64{2, 4}}
	assert.Equal(t, []float64{0, 2, 0, 4}, v.Dense(4))
	assert.Equal(t, 2, v.Len())
}
