package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rushteam/moviekit/core"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  RawMovie
		want MovieRecord
	}{
		{
			name: "comma separated lists",
			raw: RawMovie{
				Title:       " Heat ",
				Genres:      "Crime, Drama,Crime, ,Thriller",
				Stars:       "Al Pacino, Robert De Niro",
				Director:    "Michael Mann",
				PlotSummary: "A group of professional bank robbers.",
				Duration:    "170 min",
				Votes:       "1,234",
				Rating:      "8.3",
				Year:        "1995",
				MPAA:        "R",
			},
			want: MovieRecord{
				Title:           "Heat",
				Genres:          []string{"Crime", "Drama", "Thriller"},
				Stars:           []string{"Al Pacino", "Robert De Niro"},
				Director:        "Michael Mann",
				PlotSummary:     "A group of professional bank robbers.",
				Year:            1995,
				DurationMinutes: 170,
				Votes:           1234,
				Rating:          8.3,
				MPAA:            "R",
			},
		},
		{
			name: "already split lists",
			raw: RawMovie{
				Title:  "Alien",
				Genres: []any{"Horror", " Sci-Fi ", "Horror"},
				Stars:  []string{"Sigourney Weaver", ""},
			},
			want: MovieRecord{
				Title:  "Alien",
				Genres: []string{"Horror", "Sci-Fi"},
				Stars:  []string{"Sigourney Weaver"},
			},
		},
		{
			name: "all missing",
			raw:  RawMovie{},
			want: MovieRecord{Genres: []string{}, Stars: []string{}},
		},
		{
			name: "numeric title",
			raw:  RawMovie{Title: float64(1917), Year: float64(2019), Votes: "n/a"},
			want: MovieRecord{Title: "1917", Genres: []string{}, Stars: []string{}, Year: 2019},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestMovieRecord_CombinedText(t *testing.T) {
	m := MovieRecord{
		Title:       "Heat",
		Genres:      []string{"Crime", "Drama"},
		Stars:       []string{"Al Pacino"},
		Director:    "Michael Mann",
		PlotSummary: "Robbers.",
	}
	assert.Equal(t, "Heat Crime Drama Al Pacino Michael Mann Robbers.", m.CombinedText())

	// 派生字段随源字段变化
	m.Title = "Heat 2"
	assert.True(t, strings.HasPrefix(m.CombinedText(), "Heat 2 "))

	empty := Normalize(RawMovie{})
	assert.Equal(t, "    ", empty.CombinedText())
}

func TestMovieRecord_FieldText(t *testing.T) {
	m := MovieRecord{Genres: []string{"Crime", "Drama"}, PlotSummary: "plot"}
	assert.Equal(t, "Crime Drama", m.FieldText("Genres"))
	assert.Equal(t, "plot", m.FieldText("Plot_Summary"))
	assert.Equal(t, "", m.FieldText("Nope"))
}

func TestCatalog_Hash(t *testing.T) {
	a := FromRaw([]RawMovie{{Title: "A", Genres: "Crime"}, {Title: "B"}})
	b := FromRaw([]RawMovie{{Title: "A", Genres: "Crime"}, {Title: "B"}})
	c := FromRaw([]RawMovie{{Title: "B"}, {Title: "A", Genres: "Crime"}})

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Equal(t, []string{"A", "B"}, a.Titles())
	assert.Equal(t, 2, a.Len())
}

const sampleCSV = `Title,Genres,Stars,Director,Duration_In_Minutes,Votes,IMDb_Rating,Plot_Summary,Year,MPAA
Heat,"Crime, Drama","Al Pacino, Robert De Niro",Michael Mann,170 min,"650,000",8.3,Bank robbers.,1995,R
Short Row,Comedy
`

func TestReadCSV(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	heat := cat.At(0)
	assert.Equal(t, "Heat", heat.Title)
	assert.Equal(t, []string{"Crime", "Drama"}, heat.Genres)
	assert.Equal(t, int64(650000), heat.Votes)
	assert.Equal(t, 170.0, heat.DurationMinutes)

	short := cat.At(1)
	assert.Equal(t, []string{"Comedy"}, short.Genres)
	assert.Equal(t, []string{}, short.Stars)
	assert.Equal(t, "", short.Director)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Title,Year\nHeat,1995\n"))
	require.Error(t, err)
	assert.True(t, core.IsDataLoad(err))
	assert.True(t, errors.Is(err, core.ErrDataLoad))
	assert.Contains(t, err.Error(), "Plot_Summary")
}

func TestReadJSON(t *testing.T) {
	data := `[
		{"Title": "Alien", "Genres": ["Horror", "Sci-Fi"], "Stars": "Sigourney Weaver", "Director": "Ridley Scott", "Plot Summary": "In space.", "Year": 1979},
		{"Title": "Heat", "Genres": "Crime", "Stars": null, "Director": null, "Plot_Summary": "Robbers."}
	]`
	cat, err := ReadJSON(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"Horror", "Sci-Fi"}, cat.At(0).Genres)
	assert.Equal(t, 1979, cat.At(0).Year)
	assert.Equal(t, "In space.", cat.At(0).PlotSummary)
	assert.Equal(t, []string{}, cat.At(1).Stars)

	_, err = ReadJSON(strings.NewReader(`{"not": "an array"}`))
	assert.True(t, core.IsDataLoad(err))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Title", "Genres", "Stars", "Director", "Plot_Summary", "Year"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Heat", "Crime, Drama", "Al Pacino", "Michael Mann", "Robbers.", 1995}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	cat, err := ReadXLSX(buf)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "Heat", cat.At(0).Title)
	assert.Equal(t, []string{"Crime", "Drama"}, cat.At(0).Genres)
	assert.Equal(t, 1995, cat.At(0).Year)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("movies.parquet")
	assert.True(t, core.IsDataLoad(err))
}
