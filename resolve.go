package depgraph

// refSet is a set of component ids that remembers insertion order, so
// iteration is deterministic.
type refSet struct {
	seen  map[string]struct{}
	order []string
}

func newRefSet(lists ...[]string) *refSet {
	s := &refSet{seen: make(map[string]struct{})}
	for _, list := range lists {
		for _, id := range list {
			s.add(id)
		}
	}
	return s
}

// add inserts id and reports whether it was new.
func (s *refSet) add(id string) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *refSet) has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *refSet) ids() []string { return s.order }

// Resolve derives the edge set from classified nodes and their raw
// definitions.
//
// Each Dialog contributes one edge per distinct id in the union of its
// children and script; each Computation one edge per distinct ref. Edges
// whose source or target is not a node are dropped. Edges are grouped by
// target in node order.
func Resolve(nodes []Node, defs Definitions) []Edge {
	known := newRefSet()
	for _, n := range nodes {
		known.add(n.ID)
	}

	edges := []Edge{}
	for _, n := range nodes {
		for _, src := range references(n, defs[n.ID]).ids() {
			if !known.has(src) {
				continue
			}
			edges = append(edges, Edge{Source: src, Target: n.ID})
		}
	}
	return edges
}

// references returns the distinct ids a node's definition points at. Simple
// kinds reference nothing.
func references(n Node, def Definition) *refSet {
	switch n.Kind {
	case KindDialog:
		if d, ok := def.(Dialog); ok {
			return newRefSet(d.Children, d.Script)
		}
	case KindComputation:
		if c, ok := def.(Computation); ok {
			return newRefSet(c.Refs)
		}
	}
	return newRefSet()
}
