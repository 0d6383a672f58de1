package filter

import (
	"context"
	"strconv"
	"strings"

	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/conv"
)

// SelectAll 是多选框中代表“不限”的取值。
const SelectAll = "All"

// Selection 是多选条件：为空或包含 "All" 时不做限制。
type Selection []string

// All 判断是否不限制。
func (s Selection) All() bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s {
		if strings.TrimSpace(v) == SelectAll {
			return true
		}
	}
	return false
}

// Contains 判断 v 是否被选中。
func (s Selection) Contains(v string) bool {
	if s.All() {
		return true
	}
	v = strings.TrimSpace(v)
	for _, x := range s {
		if strings.TrimSpace(x) == v {
			return true
		}
	}
	return false
}

// ContainsAny 判断 vs 中是否有任一值被选中。
func (s Selection) ContainsAny(vs []string) bool {
	if s.All() {
		return true
	}
	for _, v := range vs {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

// ContainsYear 判断年份是否被选中。
func (s Selection) ContainsYear(year int) bool {
	return s.Contains(strconv.Itoa(year))
}

// YearFilter 只保留选中年份的电影。
type YearFilter struct {
	Years Selection
}

func (f *YearFilter) Name() string { return "filter.year" }

func (f *YearFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	year, _ := conv.ToInt(item.Meta[core.MetaYear])
	return !f.Years.ContainsYear(year), nil
}

// MPAAFilter 只保留选中分级的电影。
type MPAAFilter struct {
	Ratings Selection
}

func (f *MPAAFilter) Name() string { return "filter.mpaa" }

func (f *MPAAFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	return !f.Ratings.Contains(item.MetaString(core.MetaMPAA)), nil
}

// GenreFilter 保留至少有一个类型被选中的电影。
type GenreFilter struct {
	Genres Selection
}

func (f *GenreFilter) Name() string { return "filter.genre" }

func (f *GenreFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	return !f.Genres.ContainsAny(conv.SliceAnyToString(item.Meta[core.MetaGenres])), nil
}
