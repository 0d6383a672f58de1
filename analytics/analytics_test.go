package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/filter"
)

func movies() []catalog.MovieRecord {
	return []catalog.MovieRecord{
		{Title: "Heat", Genres: []string{"Crime", "Drama"}, Stars: []string{"Al Pacino", "Robert De Niro"}, Director: "Michael Mann", PlotSummary: "Bank robbers feel the heat.", Year: 1995, DurationMinutes: 170, Votes: 600, Rating: 8.3, MPAA: "R"},
		{Title: "Toy Story", Genres: []string{"Animation", "Comedy"}, Stars: []string{"Tom Hanks"}, Director: "John Lasseter", PlotSummary: "Toys come alive.", Year: 1995, DurationMinutes: 81, Votes: 900, Rating: 8.3, MPAA: "G"},
		{Title: "The Godfather", Genres: []string{"Crime", "Drama"}, Stars: []string{"Marlon Brando", "Al Pacino"}, Director: "Francis Ford Coppola", PlotSummary: "Crime family.", Year: 1972, DurationMinutes: 175, Votes: 1800, Rating: 9.2, MPAA: "R"},
		{Title: "Collateral", Genres: []string{"Crime", "Thriller"}, Stars: []string{"Tom Cruise", "Unknown"}, Director: "Michael Mann", PlotSummary: "A cab driver and a killer.", Year: 2004, DurationMinutes: 120, Votes: 400, Rating: 7.5, MPAA: "R"},
		{Title: "Mystery", Genres: []string{}, Stars: []string{}},
	}
}

func TestViewFilter(t *testing.T) {
	all := movies()
	tests := []struct {
		name string
		view ViewFilter
		want []string
	}{
		{"empty selects everything", ViewFilter{}, []string{"Heat", "Toy Story", "The Godfather", "Collateral", "Mystery"}},
		{"all selects everything", ViewFilter{Years: filter.Selection{"All", "1995"}}, []string{"Heat", "Toy Story", "The Godfather", "Collateral", "Mystery"}},
		{"year", ViewFilter{Years: filter.Selection{"1995"}}, []string{"Heat", "Toy Story"}},
		{"mpaa", ViewFilter{MPAA: filter.Selection{"R"}}, []string{"Heat", "The Godfather", "Collateral"}},
		{"any genre", ViewFilter{Genres: filter.Selection{"Thriller", "Animation"}}, []string{"Toy Story", "Collateral"}},
		{"combined", ViewFilter{Years: filter.Selection{"1995", "2004"}, MPAA: filter.Selection{"R"}}, []string{"Heat", "Collateral"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.view.Apply(all)
			titles := make([]string, len(got))
			for i, m := range got {
				titles[i] = m.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestOptions(t *testing.T) {
	opts := Options(movies())
	assert.Equal(t, []int{1972, 1995, 2004}, opts.Years)
	assert.Equal(t, []string{"G", "R"}, opts.MPAA)
	assert.Equal(t, []string{"Animation", "Comedy", "Crime", "Drama", "Thriller"}, opts.Genres)
}

func TestTopCounts_Ties(t *testing.T) {
	got := TopCounts(map[string]int64{"b": 2, "a": 2, "c": 3, "d": 1}, 3)
	assert.Equal(t, []Count{{"c", 3}, {"a", 2}, {"b", 2}}, got)
	assert.Len(t, TopCounts(map[string]int64{"a": 1}, 0), 1)
}

func TestOverview(t *testing.T) {
	r := Overview(movies(), ViewFilter{MPAA: filter.Selection{"R"}})

	assert.Equal(t, 3, r.TotalMovies)
	// 整个目录
	assert.Equal(t, 5, r.UniqueGenres)
	assert.Equal(t, 3, r.UniqueDirectors)
	assert.Equal(t, 6, r.UniqueStars) // 含 "Unknown"
	assert.Equal(t, Count{Key: "Al Pacino", Count: 2}, r.TopStars[0])
	for _, c := range r.TopStars {
		assert.NotEqual(t, UnknownStar, c.Key)
	}
	assert.Equal(t, []Count{{"Crime", 3}, {"Drama", 2}, {"Animation", 1}, {"Comedy", 1}, {"Thriller", 1}}, r.TopGenres)

	// 视图内
	assert.Equal(t, 1, r.UniqueMPAA)
	assert.InDelta(t, (170.0+175+120)/3, r.AvgDuration, 1e-9)
	assert.InDelta(t, (8.3+9.2+7.5)/3, r.AvgRating, 1e-9)
	assert.Equal(t, []YearCount{{1972, 1}, {1995, 1}, {2004, 1}}, r.MoviesPerYear)
	require.Len(t, r.AvgRatingPerYear, 3)
	assert.InDelta(t, 9.2, r.AvgRatingPerYear[0].Value, 1e-9)

	require.NotEmpty(t, r.DirectorWords)
	assert.Equal(t, Count{Key: "mann", Count: 2}, r.DirectorWords[0])
	for _, w := range r.PlotWords {
		assert.NotEqual(t, "the", w.Key)
	}
}

func TestOverview_EmptyView(t *testing.T) {
	r := Overview(movies(), ViewFilter{Years: filter.Selection{"1800"}})
	assert.Equal(t, 0, r.TotalMovies)
	assert.Equal(t, 0.0, r.AvgDuration)
	assert.Empty(t, r.MoviesPerYear)
	assert.Equal(t, 5, r.UniqueGenres)
}

func TestInsights(t *testing.T) {
	r := Insights(movies(), ViewFilter{})

	assert.Equal(t, []Count{{"R", 3}, {"G", 1}}, r.TopMPAA)
	require.Len(t, r.AvgDurationByMPAA, 2)
	assert.Equal(t, "R", r.AvgDurationByMPAA[0].Key)
	assert.InDelta(t, (170.0+175+120)/3, r.AvgDurationByMPAA[0].Value, 1e-9)

	// Animation 与 Comedy 同为 8.3，按 Key 升序
	keys := make([]string, len(r.TopGenresByRating))
	for i, v := range r.TopGenresByRating {
		keys[i] = v.Key
	}
	assert.Equal(t, []string{"Drama", "Crime", "Animation", "Comedy", "Thriller"}, keys)

	assert.Equal(t, []Count{{BucketShort, 1}, {BucketMedium, 1}, {BucketLong, 2}}, r.DurationBuckets)
	assert.Equal(t, Count{Key: "Francis Ford Coppola", Count: 1800}, r.TopDirectorsByVotes[0])
	assert.Equal(t, Count{Key: "Michael Mann", Count: 1000}, r.TopDirectorsByVotes[1])
	assert.Equal(t, "The Godfather", r.TopTitlesByVotes[0].Key)
	assert.Len(t, r.TopTitlesByVotes, 5)
}
