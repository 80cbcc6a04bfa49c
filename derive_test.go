package depgraph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, kind Kind) Node {
	return Node{
		ID:            id,
		Kind:          kind,
		Color:         DefaultColors()[kind],
		Shape:         ShapeOf(kind),
		LabelPosition: LabelBottom,
	}
}

func TestDerive_DialogScenario(t *testing.T) {
	defs := Definitions{
		"f1": SimpleTag(KindText),
		"f2": SimpleTag(KindNumber),
		"d1": Dialog{Children: []string{"f1", "f2"}, Script: []string{"f1"}},
	}

	nodes, edges, err := Derive(defs, DefaultPalette())
	require.NoError(t, err)

	wantNodes := []Node{node("d1", KindDialog), node("f1", KindText), node("f2", KindNumber)}
	if diff := cmp.Diff(wantNodes, nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []Edge{{Source: "f1", Target: "d1"}, {Source: "f2", Target: "d1"}}
	if diff := cmp.Diff(wantEdges, edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_DialogUnionHasNoDuplicates(t *testing.T) {
	defs := Definitions{
		"A":    SimpleTag(KindText),
		"B":    SimpleTag(KindDate),
		"C":    SimpleTag(KindTrueFalse),
		"self": Dialog{Children: []string{"A", "B", "B"}, Script: []string{"B", "C"}},
	}

	_, edges, err := Derive(defs, DefaultPalette())
	require.NoError(t, err)

	assert.Equal(t, []Edge{
		{Source: "A", Target: "self"},
		{Source: "B", Target: "self"},
		{Source: "C", Target: "self"},
	}, edges)
}

func TestDerive_ComputationRefs(t *testing.T) {
	tests := []struct {
		name string
		defs Definitions
		want []Edge
	}{
		{
			name: "dangling ref is dropped",
			defs: Definitions{"c1": Computation{Refs: []string{"X"}}},
			want: []Edge{},
		},
		{
			name: "self reference is a self loop",
			defs: Definitions{"c1": Computation{Refs: []string{"c1"}}},
			want: []Edge{{Source: "c1", Target: "c1"}},
		},
		{
			name: "duplicate refs collapse",
			defs: Definitions{
				"n":  SimpleTag(KindNumber),
				"c1": Computation{Refs: []string{"n", "n", "ghost", "n"}},
			},
			want: []Edge{{Source: "n", Target: "c1"}},
		},
		{
			name: "computation feeding a dialog",
			defs: Definitions{
				"c1": Computation{Refs: []string{"m"}},
				"d1": Dialog{Children: []string{"m"}, Script: []string{"c1", "missing"}},
				"m":  SimpleTag(KindMultipleChoice),
			},
			want: []Edge{
				{Source: "m", Target: "c1"},
				{Source: "m", Target: "d1"},
				{Source: "c1", Target: "d1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, edges, err := Derive(tt.defs, DefaultPalette())
			require.NoError(t, err)
			assert.Equal(t, tt.want, edges)
		})
	}
}

func TestDerive_Properties(t *testing.T) {
	defs := Definitions{
		"t":  SimpleTag(KindText),
		"i":  SimpleTag(KindImage),
		"d":  Dialog{Children: []string{"t", "i", "zz"}, Script: []string{"c", "t"}},
		"c":  Computation{Refs: []string{"t", "c", "nope"}},
		"d2": Dialog{Children: []string{"d"}},
	}

	nodes, edges, err := Derive(defs, DefaultPalette())
	require.NoError(t, err)

	require.Len(t, nodes, len(defs))
	known := make(map[string]bool)
	for _, n := range nodes {
		_, ok := defs[n.ID]
		assert.True(t, ok, "node %q has no definition", n.ID)
		assert.Equal(t, LabelBottom, n.LabelPosition)
		known[n.ID] = true
	}

	seen := make(map[Edge]bool)
	for _, e := range edges {
		assert.True(t, known[e.Source], "dangling source in %v", e)
		assert.True(t, known[e.Target], "dangling target in %v", e)
		assert.False(t, seen[e], "duplicate edge %v", e)
		seen[e] = true
	}

	nodes2, edges2, err := Derive(defs, DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, nodes, nodes2, "derivation must be deterministic")
	assert.Equal(t, edges, edges2, "derivation must be deterministic")
}

func TestDerive_EmptyInput(t *testing.T) {
	nodes, edges, err := Derive(Definitions{}, DefaultPalette())
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestDerive_MissingColorAborts(t *testing.T) {
	colors := DefaultColors()
	delete(colors, KindComputation)
	_, err := NewPalette(colors)
	require.Error(t, err)

	// A palette that slipped past construction fails at use.
	p := Palette{colors: colors}
	defs := Definitions{
		"f1": SimpleTag(KindText),
		"zc": Computation{Refs: []string{"f1"}},
	}

	nodes, edges, err := Derive(defs, p)
	require.Error(t, err)
	assert.Nil(t, nodes, "no partial output")
	assert.Nil(t, edges, "no partial output")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, KindComputation, cfgErr.Kind)
	assert.Contains(t, err.Error(), "Computation")
}

func TestDerive_MalformedAborts(t *testing.T) {
	defs := Definitions{
		"ok":  SimpleTag(KindText),
		"bad": SimpleTag("Signature"),
	}

	_, _, err := Derive(defs, DefaultPalette())
	require.Error(t, err)

	var malformed *MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "bad", malformed.ID)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestDeriveGraph(t *testing.T) {
	g, err := DeriveGraph("g1", Definitions{"f": SimpleTag(KindDate)}, DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, []Node{node("f", KindDate)}, g.Nodes)
	assert.Equal(t, []Edge{}, g.Edges)
}
