package analytics

import "github.com/rushteam/moviekit/catalog"

// 时长分段
const (
	BucketShort  = "<90"
	BucketMedium = "90-120"
	BucketLong   = ">120"
)

// InsightsReport 是深度洞察页的全部指标。
type InsightsReport struct {
	TopMPAA             []Count `json:"top_mpaa"`
	AvgDurationByMPAA   []Value `json:"avg_duration_by_mpaa"`
	TopGenresByRating   []Value `json:"top_genres_by_rating"`
	DurationBuckets     []Count `json:"duration_buckets"`
	TopDirectorsByVotes []Count `json:"top_directors_by_votes"`
	TopTitlesByVotes    []Count `json:"top_titles_by_votes"`
}

// Insights 计算深度洞察。类型平均评分按整个目录计算，其余按视图。
func Insights(all []catalog.MovieRecord, view ViewFilter) InsightsReport {
	filtered := view.Apply(all)

	genreRating := make(map[string]*mean)
	for _, m := range all {
		if m.Rating <= 0 {
			continue
		}
		for _, g := range m.Genres {
			addTo(genreRating, g, m.Rating)
		}
	}

	mpaaCounts := make(map[string]int64)
	mpaaDuration := make(map[string]*mean)
	directorVotes := make(map[string]int64)
	var short, medium, long int64
	titles := make([]Count, 0, len(filtered))
	for _, m := range filtered {
		if m.MPAA != "" {
			mpaaCounts[m.MPAA]++
			if m.DurationMinutes > 0 {
				addTo(mpaaDuration, m.MPAA, m.DurationMinutes)
			}
		}
		switch d := m.DurationMinutes; {
		case d <= 0:
		case d < 90:
			short++
		case d <= 120:
			medium++
		default:
			long++
		}
		if m.Director != "" {
			directorVotes[m.Director] += m.Votes
		}
		titles = append(titles, Count{Key: m.Title, Count: m.Votes})
	}

	return InsightsReport{
		TopMPAA:           TopCounts(mpaaCounts, 5),
		AvgDurationByMPAA: TopValues(means(mpaaDuration), 0),
		TopGenresByRating: TopValues(means(genreRating), 10),
		DurationBuckets: []Count{
			{Key: BucketShort, Count: short},
			{Key: BucketMedium, Count: medium},
			{Key: BucketLong, Count: long},
		},
		TopDirectorsByVotes: TopCounts(directorVotes, 10),
		TopTitlesByVotes:    topTitles(titles, 10),
	}
}

// topTitles 按票数取前 k；标题可能重复，所以不能先聚合成 map。
func topTitles(titles []Count, k int) []Count {
	sortCounts(titles)
	if len(titles) > k {
		titles = titles[:k]
	}
	return titles
}
