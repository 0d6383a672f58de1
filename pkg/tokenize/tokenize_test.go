package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Tokens(t *testing.T) {
	tests := []struct {
		name      string
		stopWords StopWordSet
		text      string
		want      []string
	}{
		{
			name:      "lowercase and punctuation",
			stopWords: EnglishStopWords(),
			text:      "The Dark Knight, a Crime-Thriller!",
			want:      []string{"dark", "knight", "crime", "thriller"},
		},
		{
			name:      "single rune tokens dropped",
			stopWords: StopWordSet{},
			text:      "a b cd 7 42",
			want:      []string{"cd", "42"},
		},
		{
			name:      "stop words kept when disabled",
			stopWords: StopWordSet{},
			text:      "the end",
			want:      []string{"the", "end"},
		},
		{
			name:      "unicode letters",
			stopWords: EnglishStopWords(),
			text:      "Amélie Poulain",
			want:      []string{"amélie", "poulain"},
		},
		{
			name:      "empty",
			stopWords: EnglishStopWords(),
			text:      "",
			want:      nil,
		},
		{
			name:      "only stop words",
			stopWords: EnglishStopWords(),
			text:      "and the of",
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.stopWords, 0)
			assert.Equal(t, tt.want, tok.Tokens(tt.text))
		})
	}
}

func TestTokenizer_Counts(t *testing.T) {
	counts := Default().Counts("crime drama crime")
	assert.Equal(t, map[string]int{"crime": 2, "drama": 1}, counts)
}

func TestStopWords(t *testing.T) {
	set, ok := StopWords("English")
	assert.True(t, ok)
	assert.True(t, set.Contains("the"))
	assert.Len(t, set, 318)

	none, ok := StopWords("none")
	assert.True(t, ok)
	assert.False(t, none.Contains("the"))

	_, ok = StopWords("klingon")
	assert.False(t, ok)
}
