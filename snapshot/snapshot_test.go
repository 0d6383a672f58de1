package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/core"
)

func testCatalog() *catalog.Catalog {
	return catalog.FromRaw([]catalog.RawMovie{
		{Title: "Heat", Genres: "Crime, Drama", Stars: "Al Pacino", Director: "Michael Mann", PlotSummary: "Bank robbers."},
		{Title: "Alien", Genres: "Horror", Stars: "Sigourney Weaver", Director: "Ridley Scott", PlotSummary: "Space crew."},
	})
}

func TestBuild(t *testing.T) {
	cat := testCatalog()
	s, err := Build(cat, Options{Version: 3})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), s.Version)
	assert.Equal(t, cat.Hash(), s.CatalogHash)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Index.Docs())
	assert.NotEqual(t, [16]byte{}, [16]byte(s.ID))
	assert.False(t, s.BuiltAt.IsZero())

	other, err := Build(cat, Options{Version: 4})
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestBuild_StopWords(t *testing.T) {
	cat := catalog.FromRaw([]catalog.RawMovie{{Title: "The Thing", Genres: "Horror"}})

	s, err := Build(cat, Options{})
	require.NoError(t, err)
	_, ok := s.Index.Column("the")
	assert.False(t, ok)

	s, err = Build(cat, Options{StopWords: "none"})
	require.NoError(t, err)
	_, ok = s.Index.Column("the")
	assert.True(t, ok)

	_, err = Build(cat, Options{StopWords: "klingon"})
	assert.True(t, core.IsInvalidInput(err))
}

func TestBuild_EmptyCatalog(t *testing.T) {
	_, err := Build(catalog.NewCatalog(nil), Options{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s, err := Build(testCatalog(), Options{})
	require.NoError(t, err)
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
