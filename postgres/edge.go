package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/depgraph"
)

// ListEdges returns all edges for a graphID in derivation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, graphID string) ([]depgraph.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT source, target FROM depgraph_edges WHERE graph_id = $1 ORDER BY ord`, graphID)
	if err != nil {
		return nil, fmt.Errorf("depgraph: list edges: %w", err)
	}
	defer rows.Close()

	edges := []depgraph.Edge{}
	for rows.Next() {
		var e depgraph.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("depgraph: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("depgraph: rows edges: %w", err)
	}

	return edges, nil
}
