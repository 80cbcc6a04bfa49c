// Package memory implements depgraph.Store in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/depgraph"
)

var _ depgraph.Store = (*Store)(nil)

// Store keeps graphs in a map guarded by a RWMutex. Graphs are copied on
// the way in and on the way out.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*depgraph.Graph
}

func New() *Store {
	return &Store{graphs: make(map[string]*depgraph.Graph)}
}

func (s *Store) CreateSchema(context.Context) error { return nil }

// DropSchema forgets every graph.
func (s *Store) DropSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs = make(map[string]*depgraph.Graph)
	return nil
}

func (s *Store) SaveGraph(_ context.Context, g *depgraph.Graph) (*depgraph.Graph, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = clone(g)
	return g, nil
}

// GetGraph returns nil, nil if the graph doesn't exist.
func (s *Store) GetGraph(_ context.Context, graphID string) (*depgraph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, nil
	}
	return clone(g), nil
}

func (s *Store) DeleteGraph(_ context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, graphID)
	return nil
}

// GetNode returns nil, nil if the node doesn't exist.
func (s *Store) GetNode(_ context.Context, graphID, nodeID string) (*depgraph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.node(graphID, nodeID)
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *Store) ListNodes(_ context.Context, graphID string) ([]depgraph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := []depgraph.Node{}
	if g, ok := s.graphs[graphID]; ok {
		nodes = append(nodes, g.Nodes...)
	}
	return nodes, nil
}

func (s *Store) ListEdges(_ context.Context, graphID string) ([]depgraph.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := []depgraph.Edge{}
	if g, ok := s.graphs[graphID]; ok {
		edges = append(edges, g.Edges...)
	}
	return edges, nil
}

func (s *Store) Dependencies(_ context.Context, graphID, nodeID string) ([]depgraph.Node, error) {
	return s.neighbours(graphID, nodeID, func(e depgraph.Edge) (string, bool) {
		return e.Source, e.Target == nodeID
	})
}

func (s *Store) Dependents(_ context.Context, graphID, nodeID string) ([]depgraph.Node, error) {
	return s.neighbours(graphID, nodeID, func(e depgraph.Edge) (string, bool) {
		return e.Target, e.Source == nodeID
	})
}

func (s *Store) neighbours(graphID, nodeID string, pick func(depgraph.Edge) (string, bool)) ([]depgraph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.node(graphID, nodeID); !ok {
		return nil, depgraph.ErrNodeNotFound
	}

	nodes := []depgraph.Node{}
	for _, e := range s.graphs[graphID].Edges {
		id, ok := pick(e)
		if !ok {
			continue
		}
		if n, ok := s.node(graphID, id); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// node must be called with s.mu held.
func (s *Store) node(graphID, nodeID string) (depgraph.Node, bool) {
	g, ok := s.graphs[graphID]
	if !ok {
		return depgraph.Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == nodeID {
			return n, true
		}
	}
	return depgraph.Node{}, false
}

func clone(g *depgraph.Graph) *depgraph.Graph {
	return &depgraph.Graph{
		ID:    g.ID,
		Nodes: append([]depgraph.Node{}, g.Nodes...),
		Edges: append([]depgraph.Edge{}, g.Edges...),
	}
}
