// Package tokenize 提供构建与查询共用的分词规则。
//
// 规则：转小写，按非字母/非数字字符切分，丢弃长度小于 MinLength 的词与停用词。
// 向量空间构建和查询投影必须使用同一个 Tokenizer，否则词表列无法对齐。
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinLength 是默认的最短词长（按 rune 计）。
const DefaultMinLength = 2

// Tokenizer 是无状态、并发安全的分词器。
type Tokenizer struct {
	StopWords StopWordSet
	MinLength int
}

// New 创建分词器；minLength <= 0 时使用 DefaultMinLength。
func New(stopWords StopWordSet, minLength int) *Tokenizer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Tokenizer{StopWords: stopWords, MinLength: minLength}
}

// Default 返回使用英文停用词的分词器。
func Default() *Tokenizer {
	return New(EnglishStopWords(), DefaultMinLength)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// Tokens 切分文本，保留原始出现顺序（含重复）。
func (t *Tokenizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) < t.MinLength {
			continue
		}
		if t.StopWords.Contains(field) {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// Counts 返回词频统计。
func (t *Tokenizer) Counts(text string) map[string]int {
	tokens := t.Tokens(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
