package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/config"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pipeline"
	"github.com/rushteam/moviekit/recall"
	"github.com/rushteam/moviekit/rerank"
	"github.com/rushteam/moviekit/snapshot"
	"github.com/rushteam/moviekit/store"
)

func sampleCatalog() *catalog.Catalog {
	return catalog.FromRaw([]catalog.RawMovie{
		{Title: "Heat", Genres: "Crime, Drama, Thriller", Stars: "Al Pacino, Robert De Niro", Director: "Michael Mann", PlotSummary: "A group of professional bank robbers start to feel the heat from police.", Year: 1995},
		{Title: "Alien", Genres: "Horror, Sci-Fi", Stars: "Sigourney Weaver, Tom Skerritt", Director: "Ridley Scott", PlotSummary: "The crew of a commercial spacecraft encounters a deadly lifeform.", Year: 1979},
		{Title: "The Godfather", Genres: "Crime, Drama", Stars: "Marlon Brando, Al Pacino", Director: "Francis Ford Coppola", PlotSummary: "The aging patriarch of an organized crime dynasty transfers control to his son.", Year: 1972},
		{Title: "Blade Runner", Genres: "Action, Drama, Sci-Fi", Stars: "Harrison Ford, Rutger Hauer", Director: "Ridley Scott", PlotSummary: "A blade runner must pursue and terminate four replicants.", Year: 1982},
		{Title: "Collateral", Genres: "Crime, Drama, Thriller", Stars: "Tom Cruise, Jamie Foxx", Director: "Michael Mann", PlotSummary: "A cab driver finds himself the hostage of an engaging contract killer.", Year: 2004},
		{Title: "Gladiator", Genres: "Action, Adventure, Drama", Stars: "Russell Crowe, Joaquin Phoenix", Director: "Ridley Scott", PlotSummary: "A former Roman General sets out to exact vengeance.", Year: 2000},
	})
}

func titles(items []core.Recommendation) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func loadedEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(Config{}, opts...)
	_, err := e.LoadCatalog(context.Background(), sampleCatalog())
	require.NoError(t, err)
	return e
}

func TestEngine_NotReady(t *testing.T) {
	e := New(Config{})
	assert.False(t, e.Ready())
	assert.Nil(t, e.Current())

	_, err := e.Recommend(context.Background(), Request{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}}})
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.True(t, core.IsUnavailable(err))

	_, err = e.Reload(context.Background())
	assert.True(t, errors.Is(err, ErrNoLoader))
}

func TestEngine_Defaults(t *testing.T) {
	cfg := New(Config{}).Config()
	assert.Equal(t, 5000, cfg.MaxFeatures)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, "english", cfg.StopWords)
}

func TestEngine_LoadMemoized(t *testing.T) {
	e := New(Config{})
	ctx := context.Background()

	first, err := e.LoadCatalog(ctx, sampleCatalog())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)

	again, err := e.LoadCatalog(ctx, sampleCatalog())
	require.NoError(t, err)
	assert.Same(t, first, again)

	changed := catalog.FromRaw([]catalog.RawMovie{{Title: "Heat", Genres: "Crime"}})
	second, err := e.LoadCatalog(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)
	assert.Same(t, second, e.Current())

	// 旧快照对持有者仍然可用
	assert.Equal(t, 6, first.Len())
	assert.Equal(t, "Heat", first.Catalog.At(0).Title)
}

func TestEngine_LoadConcurrent(t *testing.T) {
	e := New(Config{})
	cat := sampleCatalog()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.LoadCatalog(context.Background(), cat)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NotNil(t, e.Current())
	assert.Equal(t, cat.Hash(), e.Current().CatalogHash)
}

func TestEngine_LoadAndReload(t *testing.T) {
	var calls atomic.Int32
	loader := catalog.LoaderFunc(func(context.Context) (*catalog.Catalog, error) {
		calls.Add(1)
		return sampleCatalog(), nil
	})

	e := New(Config{})
	snap, err := e.Load(context.Background(), loader)
	require.NoError(t, err)

	reloaded, err := e.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, reloaded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEngine_LoadError(t *testing.T) {
	e := New(Config{})
	boom := core.NewDataLoadError("catalog: broken", nil)
	_, err := e.Load(context.Background(), catalog.LoaderFunc(func(context.Context) (*catalog.Catalog, error) {
		return nil, boom
	}))
	assert.True(t, core.IsDataLoad(err))
	assert.False(t, e.Ready())

	_, err = e.LoadCatalog(context.Background(), catalog.NewCatalog(nil))
	assert.True(t, core.IsInvalidInput(err))
}

func TestEngine_Recommend(t *testing.T) {
	e := loadedEngine(t)
	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}},
		TopN:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.SnapshotVersion)
	assert.Equal(t, 1, resp.Applied)
	assert.Empty(t, resp.Warnings)
	// Heat 之外的分数都为 0，按目录顺序补齐
	assert.Equal(t, []string{"Heat", "Alien", "The Godfather"}, titles(resp.Items))
	assert.Greater(t, resp.Items[0].Score, 0.0)
	assert.Equal(t, 0.0, resp.Items[1].Score)
	assert.False(t, resp.Cached)
}

func TestEngine_RecommendDefaultTopN(t *testing.T) {
	e := loadedEngine(t)
	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Genres", Text: "Crime"}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 5)
}

func TestEngine_RecommendNoConditions(t *testing.T) {
	e := loadedEngine(t)
	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Budget", Text: "big"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Applied)
	assert.Equal(t, []core.UnrecognizedFieldWarning{{Field: "Budget"}}, resp.Warnings)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestEngine_RecommendFilter(t *testing.T) {
	e := loadedEngine(t)
	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Director", Text: "Michael Mann"}},
		TopN:       2,
		Filter:     `movie.director != "Michael Mann"`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "The Godfather"}, titles(resp.Items))

	_, err = e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}},
		Filter:     `movie.year >`,
	})
	assert.True(t, core.IsInvalidInput(err))
}

func TestEngine_RecommendCached(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	e := loadedEngine(t, WithStore(s))
	req := Request{Conditions: []core.QueryCondition{{Field: "Stars", Text: "Al Pacino"}}, TopN: 2}

	first, err := e.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, s.Len())

	second, err := e.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Applied, second.Applied)

	// 不同请求不共享缓存
	req.TopN = 3
	third, err := e.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Len(t, third.Items, 3)
}

func TestCacheKey(t *testing.T) {
	req := Request{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}}}
	a := cacheKey(1, req, 5)
	assert.Equal(t, a, cacheKey(1, req, 5))
	assert.NotEqual(t, a, cacheKey(2, req, 5))
	assert.NotEqual(t, a, cacheKey(1, req, 6))

	req.Filter = "score > 0.1"
	assert.NotEqual(t, a, cacheKey(1, req, 5))

	// 字段与文本的边界不会混淆，文本里含控制字符也一样
	distinct := []Request{
		{Conditions: []core.QueryCondition{{Field: "Title", Text: "ab"}}},
		{Conditions: []core.QueryCondition{{Field: "Titlea", Text: "b"}}},
		{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat\x1eDirector\x1fRidley Scott"}}},
		{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}, {Field: "Director", Text: "Ridley Scott"}}},
		{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat:5;"}}},
		{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}}, Filter: "5;"},
		{Conditions: []core.QueryCondition{{Field: "Title", Text: ""}}},
		{},
	}
	seen := make(map[string]int)
	for i, r := range distinct {
		k := cacheKey(1, r, 5)
		if j, ok := seen[k]; ok {
			t.Fatalf("requests %d and %d share key %s", j, i, k)
		}
		seen[k] = i
	}
}

func TestEngine_CachedControlCharacters(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	e := loadedEngine(t, WithStore(s))
	ctx := context.Background()

	single, err := e.Recommend(ctx, Request{Conditions: []core.QueryCondition{
		{Field: "Title", Text: "Heat\x1eDirector\x1fRidley Scott"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, single.Applied)

	two, err := e.Recommend(ctx, Request{Conditions: []core.QueryCondition{
		{Field: "Title", Text: "Heat"},
		{Field: "Director", Text: "Ridley Scott"},
	}})
	require.NoError(t, err)
	assert.False(t, two.Cached)
	assert.Equal(t, 2, two.Applied)
	assert.Equal(t, 2, s.Len())
}

func TestEngine_CachedVersionFollowsSnapshot(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	e := New(Config{}, WithStore(s))
	ctx := context.Background()
	a := sampleCatalog()
	b := catalog.FromRaw([]catalog.RawMovie{{Title: "Heat", Genres: "Crime"}})
	req := Request{Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}}}

	_, err := e.LoadCatalog(ctx, a)
	require.NoError(t, err)
	first, err := e.Recommend(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.SnapshotVersion)

	_, err = e.LoadCatalog(ctx, b)
	require.NoError(t, err)
	cur, err := e.LoadCatalog(ctx, a)
	require.NoError(t, err)
	require.Equal(t, uint64(3), cur.Version)

	again, err := e.Recommend(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, uint64(3), again.SnapshotVersion)
	assert.Equal(t, titles(first.Items), titles(again.Items))
}

func TestEngine_FailedBuildKeepsVersion(t *testing.T) {
	e := New(Config{})
	ctx := context.Background()

	_, err := e.LoadCatalog(ctx, catalog.NewCatalog(nil))
	require.Error(t, err)

	snap, err := e.LoadCatalog(ctx, sampleCatalog())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
}

func TestEngine_PublishKeepsNewer(t *testing.T) {
	e := New(Config{})
	older, err := snapshot.Build(sampleCatalog(), snapshot.Options{Version: 1})
	require.NoError(t, err)
	newer, err := snapshot.Build(catalog.FromRaw([]catalog.RawMovie{{Title: "Heat", Genres: "Crime"}}), snapshot.Options{Version: 2})
	require.NoError(t, err)

	assert.Same(t, newer, e.publish(newer))
	// 较早开始的构建拿到胜出的快照，可按 CatalogHash 判断自己被取代
	got := e.publish(older)
	assert.Same(t, newer, got)
	assert.NotEqual(t, older.CatalogHash, got.CatalogHash)
	assert.Same(t, newer, e.Current())
}

func TestEngine_CustomPipeline(t *testing.T) {
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.MultiCondition{},
		&rerank.Diversity{Key: core.MetaDirector, MaxPerKey: 1},
		&rerank.TopNNode{},
	}}
	e := loadedEngine(t, WithPipeline(p))

	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Director", Text: "Ridley Scott"}},
		TopN:       3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)

	scott := 0
	for _, title := range titles(resp.Items) {
		switch title {
		case "Alien", "Blade Runner", "Gladiator":
			scott++
		}
	}
	assert.Equal(t, 1, scott)
	assert.Contains(t, []string{"Alien", "Blade Runner", "Gladiator"}, resp.Items[0].Title)

	// 请求过滤插在召回之后
	resp, err = e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Director", Text: "Ridley Scott"}},
		TopN:       3,
		Filter:     `movie.year >= 1990`,
	})
	require.NoError(t, err)
	for _, it := range resp.Items {
		assert.NotContains(t, []string{"Alien", "Blade Runner", "The Godfather"}, it.Title)
	}
}

func TestFromAppConfig(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Title,Genres,Stars,Director,Plot_Summary,Year,MPAA\n"+
			"Heat,\"Crime, Drama\",Al Pacino,Michael Mann,Bank robbers.,1995,R\n"+
			"Toy Story,\"Animation, Comedy\",Tom Hanks,John Lasseter,Toys come alive.,1995,G\n"), 0o644))
	pipelinePath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(pipelinePath, []byte(`
pipeline:
  name: family
  nodes:
    - type: recall.multi_condition
    - type: filter
      config:
        filters:
          - type: mpaa
            ratings: ["G"]
    - type: rerank.topn
`), 0o644))

	cfg := config.DefaultAppConfig()
	cfg.Catalog.Path = csvPath
	cfg.Pipeline.Path = pipelinePath

	e, err := FromAppConfig(cfg)
	require.NoError(t, err)
	defer e.Close()
	require.NotNil(t, e.Store())
	assert.Same(t, e.Store(), config.DefaultStore())

	_, err = e.Reload(context.Background())
	require.NoError(t, err)

	resp, err := e.Recommend(context.Background(), Request{
		Conditions: []core.QueryCondition{{Field: "Title", Text: "Heat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toy Story"}, titles(resp.Items))
}

func TestLoadPipeline_UnknownNode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  nodes:\n    - type: rank.lr\n"), 0o644))
	_, err := LoadPipeline(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank.lr")
}

func TestLoadPipeline_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	body := `{"pipeline": {"name": "json", "nodes": [{"type": "recall.multi_condition"}, {"type": "rerank.topn", "config": {"n": 2}}]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	p, err := LoadPipeline(path)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, "recall.multi_condition", p.Nodes[0].Name())
}
