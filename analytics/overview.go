package analytics

import (
	"sort"

	"github.com/rushteam/moviekit/catalog"
)

// 词云默认保留的词数
const wordCloudSize = 100

// OverviewReport 是概览页的全部指标。
type OverviewReport struct {
	TotalMovies     int     `json:"total_movies"`
	UniqueGenres    int     `json:"unique_genres"`
	UniqueMPAA      int     `json:"unique_mpaa"`
	UniqueDirectors int     `json:"unique_directors"`
	UniqueStars     int     `json:"unique_stars"`
	AvgDuration     float64 `json:"avg_duration"`
	AvgRating       float64 `json:"avg_rating"`

	MoviesPerYear    []YearCount `json:"movies_per_year"`
	AvgRatingPerYear []YearValue `json:"avg_rating_per_year"`

	TopStars  []Count `json:"top_stars"`
	TopGenres []Count `json:"top_genres"`

	DirectorWords []Count `json:"director_words"`
	PlotWords     []Count `json:"plot_words"`
}

// Overview 计算概览指标。
func Overview(all []catalog.MovieRecord, view ViewFilter) OverviewReport {
	filtered := view.Apply(all)
	r := OverviewReport{TotalMovies: len(filtered)}

	// 整个目录
	genres := make(map[string]struct{})
	directors := make(map[string]struct{})
	stars := make(map[string]struct{})
	starCounts := make(map[string]int64)
	genreCounts := make(map[string]int64)
	for _, m := range all {
		for _, g := range m.Genres {
			genres[g] = struct{}{}
			genreCounts[g]++
		}
		if m.Director != "" {
			directors[m.Director] = struct{}{}
		}
		for _, s := range m.Stars {
			stars[s] = struct{}{}
			if s != UnknownStar {
				starCounts[s]++
			}
		}
	}
	r.UniqueGenres = len(genres)
	r.UniqueDirectors = len(directors)
	r.UniqueStars = len(stars)
	r.TopStars = TopCounts(starCounts, 5)
	r.TopGenres = TopCounts(genreCounts, 5)

	// 视图内
	mpaa := make(map[string]struct{})
	var duration, rating mean
	perYear := make(map[int]int)
	ratingPerYear := make(map[int]*mean)
	directorTexts := make([]string, 0, len(filtered))
	plotTexts := make([]string, 0, len(filtered))
	for _, m := range filtered {
		if m.MPAA != "" {
			mpaa[m.MPAA] = struct{}{}
		}
		if m.DurationMinutes > 0 {
			duration.add(m.DurationMinutes)
		}
		if m.Rating > 0 {
			rating.add(m.Rating)
		}
		if m.Year != 0 {
			perYear[m.Year]++
			if m.Rating > 0 {
				g, ok := ratingPerYear[m.Year]
				if !ok {
					g = &mean{}
					ratingPerYear[m.Year] = g
				}
				g.add(m.Rating)
			}
		}
		if m.Director != "" {
			directorTexts = append(directorTexts, m.Director)
		}
		if m.PlotSummary != "" {
			plotTexts = append(plotTexts, m.PlotSummary)
		}
	}
	r.UniqueMPAA = len(mpaa)
	r.AvgDuration = duration.value()
	r.AvgRating = rating.value()

	r.MoviesPerYear = make([]YearCount, 0, len(perYear))
	for y, c := range perYear {
		r.MoviesPerYear = append(r.MoviesPerYear, YearCount{Year: y, Count: c})
	}
	sort.Slice(r.MoviesPerYear, func(i, j int) bool { return r.MoviesPerYear[i].Year < r.MoviesPerYear[j].Year })

	r.AvgRatingPerYear = make([]YearValue, 0, len(ratingPerYear))
	for y, g := range ratingPerYear {
		r.AvgRatingPerYear = append(r.AvgRatingPerYear, YearValue{Year: y, Value: g.value()})
	}
	sort.Slice(r.AvgRatingPerYear, func(i, j int) bool { return r.AvgRatingPerYear[i].Year < r.AvgRatingPerYear[j].Year })

	r.DirectorWords = WordFrequencies(directorTexts, wordCloudSize)
	r.PlotWords = WordFrequencies(plotTexts, wordCloudSize)
	return r
}
