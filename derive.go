package depgraph

// Derive classifies every definition and resolves the references between
// them. Nodes are ordered by id. Any classification error aborts the whole
// derivation and no partial result is returned.
//
// Derive is a pure function of its inputs; it does no I/O and keeps no state.
func Derive(defs Definitions, p Palette) ([]Node, []Edge, error) {
	ids := defs.IDs()
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, err := Classify(id, defs[id], p)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}

	return nodes, Resolve(nodes, defs), nil
}

// DeriveGraph is Derive wrapped in a Graph with the given id.
func DeriveGraph(id string, defs Definitions, p Palette) (*Graph, error) {
	nodes, edges, err := Derive(defs, p)
	if err != nil {
		return nil, err
	}
	return &Graph{ID: id, Nodes: nodes, Edges: edges}, nil
}
