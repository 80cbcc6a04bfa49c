package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/meikuraledutech/depgraph"
	"github.com/meikuraledutech/depgraph/archive"
	"github.com/meikuraledutech/depgraph/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const formDoc = `{
	"f1": "Text",
	"f2": "Number",
	"d1": {"Dialog": {"children": ["f1", "f2"], "script": ["f1"]}}
}`

func newAnalyzer(t *testing.T, withArchive bool) (*Analyzer, *memory.Store) {
	t.Helper()
	store := memory.New()
	opts := Options{Store: store, CacheSize: 8}
	if withArchive {
		opts.Archive = archive.NewMemory()
	}
	a, err := New(opts)
	require.NoError(t, err)
	return a, store
}

func TestAnalyze_DerivesAndStores(t *testing.T) {
	ctx := context.Background()
	a, store := newAnalyzer(t, false)

	g, err := a.Analyze(ctx, Request{GraphID: "form", Document: []byte(formDoc)})
	require.NoError(t, err)

	assert.Equal(t, "form", g.ID)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, []depgraph.Edge{
		{Source: "f1", Target: "d1"},
		{Source: "f2", Target: "d1"},
	}, g.Edges)

	stored, err := store.GetGraph(ctx, "form")
	require.NoError(t, err)
	assert.Equal(t, g, stored)
}

func TestAnalyze_GeneratesID(t *testing.T) {
	a, _ := newAnalyzer(t, false)

	g, err := a.Analyze(context.Background(), Request{Document: []byte(formDoc)})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
}

func TestAnalyze_UndecodableDocumentYieldsEmptyGraph(t *testing.T) {
	ctx := context.Background()
	a, store := newAnalyzer(t, false)

	g, err := a.Analyze(ctx, Request{GraphID: "broken", Document: []byte(`<hd:component>`)})
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.ID, "an unstored graph has no id")

	stored, err := store.GetGraph(ctx, "broken")
	require.NoError(t, err)
	assert.Nil(t, stored, "nothing should be stored for an undecodable document")
}

func TestAnalyze_MalformedInputPropagates(t *testing.T) {
	a, _ := newAnalyzer(t, false)

	_, err := a.Analyze(context.Background(), Request{Document: []byte(`{"x": {"Table": []}}`)})
	require.Error(t, err)

	var malformed *depgraph.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "x", malformed.ID)
}

func TestAnalyze_ConfigurationErrorStoresNothing(t *testing.T) {
	ctx := context.Background()
	a, store := newAnalyzer(t, false)

	_, err := a.Analyze(ctx, Request{GraphID: "g", Document: []byte(formDoc), Palette: &depgraph.Palette{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, depgraph.ErrConfiguration)

	stored, err := store.GetGraph(ctx, "g")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	a, _ := newAnalyzer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, Request{Document: []byte(formDoc)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_DerivationDiscardedWhenContextEnds(t *testing.T) {
	a, store := newAnalyzer(t, true)

	started := make(chan struct{})
	release := make(chan struct{})
	a.deriveFn = func(defs depgraph.Definitions, p depgraph.Palette) ([]depgraph.Node, []depgraph.Edge, error) {
		close(started)
		<-release
		return depgraph.Derive(defs, p)
	}
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := a.Analyze(ctx, Request{GraphID: "slow", Document: []byte(formDoc)})
	require.ErrorIs(t, err, context.Canceled)

	stored, err := store.GetGraph(context.Background(), "slow")
	require.NoError(t, err)
	assert.Nil(t, stored, "a discarded derivation must not be stored")
	_, err = a.archive.Get(context.Background(), "slow")
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestAnalyze_EmptyDocumentIsAGraph(t *testing.T) {
	ctx := context.Background()
	a, _ := newAnalyzer(t, false)

	g, err := a.Analyze(ctx, Request{GraphID: "empty", Document: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, "empty", g.ID)
	assert.Empty(t, g.Nodes)

	stored, err := a.Graph(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", stored.ID)
	assert.Empty(t, stored.Nodes)
	assert.Empty(t, stored.Edges)
}

type failingArchive struct{ *archive.Memory }

func (failingArchive) Put(context.Context, string, []byte) error {
	return errors.New("bucket unavailable")
}

func TestAnalyze_ArchiveFailureLeavesNothingStored(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	a, err := New(Options{Store: store, Archive: failingArchive{archive.NewMemory()}})
	require.NoError(t, err)

	_, err = a.Analyze(ctx, Request{GraphID: "form", Document: []byte(formDoc)})
	require.Error(t, err)

	stored, err := store.GetGraph(ctx, "form")
	require.NoError(t, err)
	assert.Nil(t, stored, "a graph whose document could not be archived is rolled back")
}

func TestAnalyze_CachesByContent(t *testing.T) {
	ctx := context.Background()
	a, _ := newAnalyzer(t, false)

	first, err := a.Analyze(ctx, Request{GraphID: "a", Document: []byte(formDoc)})
	require.NoError(t, err)
	second, err := a.Analyze(ctx, Request{GraphID: "b", Document: []byte(`{"d1":{"Dialog":{"children":["f1","f2"],"script":["f1"]}},"f2":"Number","f1":"Text"}`)})
	require.NoError(t, err)

	assert.Equal(t, 1, a.cache.Len(), "equivalent documents should share one cache entry")
	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.NotEqual(t, first.ID, second.ID)

	custom := depgraph.DefaultColors()
	custom[depgraph.KindText] = "black"
	p, err := depgraph.NewPalette(custom)
	require.NoError(t, err)
	_, err = a.Analyze(ctx, Request{Document: []byte(formDoc), Palette: &p})
	require.NoError(t, err)
	assert.Equal(t, 2, a.cache.Len(), "a different palette is a different derivation")
}

func TestAnalyze_Concurrent(t *testing.T) {
	a, _ := newAnalyzer(t, false)

	var g errgroup.Group
	results := make([]*depgraph.Graph, 16)
	for i := range results {
		g.Go(func() error {
			res, err := a.Analyze(context.Background(), Request{Document: []byte(formDoc)})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, res := range results[1:] {
		assert.Equal(t, results[0].Nodes, res.Nodes)
		assert.Equal(t, results[0].Edges, res.Edges)
	}
}

func TestRederive(t *testing.T) {
	ctx := context.Background()
	a, _ := newAnalyzer(t, true)

	_, err := a.Analyze(ctx, Request{GraphID: "form", Document: []byte(formDoc)})
	require.NoError(t, err)

	custom := depgraph.DefaultColors()
	custom[depgraph.KindDialog] = "#000000"
	p, err := depgraph.NewPalette(custom)
	require.NoError(t, err)

	g, err := a.Rederive(ctx, "form", &p)
	require.NoError(t, err)
	for _, n := range g.Nodes {
		if n.ID == "d1" {
			assert.Equal(t, "#000000", n.Color)
		}
	}

	_, err = a.Rederive(ctx, "missing", nil)
	assert.ErrorIs(t, err, depgraph.ErrGraphNotFound)

	require.NoError(t, a.Delete(ctx, "form"))
	_, err = a.Graph(ctx, "form")
	assert.ErrorIs(t, err, depgraph.ErrGraphNotFound)
	_, err = a.Rederive(ctx, "form", nil)
	assert.ErrorIs(t, err, depgraph.ErrGraphNotFound)
}

func TestRederive_WithoutArchive(t *testing.T) {
	a, _ := newAnalyzer(t, false)
	_, err := a.Rederive(context.Background(), "form", nil)
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
