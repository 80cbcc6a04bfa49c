package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/depgraph"
)

const nodeColumns = `n.id, n.kind, n.color, n.shape, n.label_position`

// GetNode fetches a single node of a graph.
// Returns nil, nil if not found.
func (s *PGStore) GetNode(ctx context.Context, graphID, nodeID string) (*depgraph.Node, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM depgraph_nodes n WHERE n.graph_id = $1 AND n.id = $2`,
		graphID, nodeID,
	)
	n, err := scanNode(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("depgraph: get node: %w", err)
	}
	return &n, nil
}

// ListNodes returns all nodes for a graphID in derivation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, graphID string) ([]depgraph.Node, error) {
	return s.queryNodes(ctx, "list nodes",
		`SELECT `+nodeColumns+` FROM depgraph_nodes n WHERE n.graph_id = $1 ORDER BY n.ord`,
		graphID,
	)
}

// Dependencies returns the nodes nodeID references, i.e. the sources of
// its incoming edges. Returns depgraph.ErrNodeNotFound for an unknown node.
func (s *PGStore) Dependencies(ctx context.Context, graphID, nodeID string) ([]depgraph.Node, error) {
	if err := s.requireNode(ctx, graphID, nodeID); err != nil {
		return nil, err
	}
	return s.queryNodes(ctx, "list dependencies",
		`SELECT `+nodeColumns+`
		   FROM depgraph_edges e
		   JOIN depgraph_nodes n ON n.graph_id = e.graph_id AND n.id = e.source
		  WHERE e.graph_id = $1 AND e.target = $2
		  ORDER BY e.ord`,
		graphID, nodeID,
	)
}

// Dependents returns the nodes that reference nodeID, i.e. the targets of
// its outgoing edges. Returns depgraph.ErrNodeNotFound for an unknown node.
func (s *PGStore) Dependents(ctx context.Context, graphID, nodeID string) ([]depgraph.Node, error) {
	if err := s.requireNode(ctx, graphID, nodeID); err != nil {
		return nil, err
	}
	return s.queryNodes(ctx, "list dependents",
		`SELECT `+nodeColumns+`
		   FROM depgraph_edges e
		   JOIN depgraph_nodes n ON n.graph_id = e.graph_id AND n.id = e.target
		  WHERE e.graph_id = $1 AND e.source = $2
		  ORDER BY e.ord`,
		graphID, nodeID,
	)
}

func (s *PGStore) requireNode(ctx context.Context, graphID, nodeID string) error {
	n, err := s.GetNode(ctx, graphID, nodeID)
	if err != nil {
		return err
	}
	if n == nil {
		return depgraph.ErrNodeNotFound
	}
	return nil
}

func (s *PGStore) queryNodes(ctx context.Context, op, sql string, args ...any) ([]depgraph.Node, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("depgraph: %s: %w", op, err)
	}
	defer rows.Close()

	nodes := []depgraph.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("depgraph: scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("depgraph: rows nodes: %w", err)
	}

	return nodes, nil
}

func scanNode(row pgx.Row) (depgraph.Node, error) {
	var (
		n           depgraph.Node
		kind, shape string
	)
	if err := row.Scan(&n.ID, &kind, &n.Color, &shape, &n.LabelPosition); err != nil {
		return depgraph.Node{}, err
	}
	n.Kind = depgraph.Kind(kind)
	n.Shape = depgraph.Shape(shape)
	return n, nil
}
