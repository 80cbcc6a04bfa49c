package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/depgraph"
)

// SaveGraph saves a full graph (nodes + edges) in one transaction.
// A graph without an ID gets an auto-generated UUID.
// Any graph already stored under the same ID is replaced.
// Returns the graph with its ID filled in.
func (s *PGStore) SaveGraph(ctx context.Context, g *depgraph.Graph) (*depgraph.Graph, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("depgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: drop whatever is stored under this ID.
	if _, err := tx.Exec(ctx, `DELETE FROM depgraph_edges WHERE graph_id = $1`, g.ID); err != nil {
		return nil, fmt.Errorf("depgraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM depgraph_nodes WHERE graph_id = $1`, g.ID); err != nil {
		return nil, fmt.Errorf("depgraph: delete nodes: %w", err)
	}

	// A graph exists even when it has no nodes.
	if _, err := tx.Exec(ctx, `INSERT INTO depgraph_graphs (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, g.ID); err != nil {
		return nil, fmt.Errorf("depgraph: insert graph: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"depgraph_nodes"},
		[]string{"graph_id", "id", "kind", "color", "shape", "label_position", "ord"},
		pgx.CopyFromSlice(len(g.Nodes), func(i int) ([]any, error) {
			n := g.Nodes[i]
			return []any{g.ID, n.ID, string(n.Kind), n.Color, string(n.Shape), n.LabelPosition, i}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("depgraph: copy nodes: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"depgraph_edges"},
		[]string{"graph_id", "source", "target", "ord"},
		pgx.CopyFromSlice(len(g.Edges), func(i int) ([]any, error) {
			e := g.Edges[i]
			return []any{g.ID, e.Source, e.Target, i}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("depgraph: copy edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("depgraph: commit: %w", err)
	}

	return g, nil
}

// GetGraph retrieves a full graph (nodes + edges) by its ID.
// Returns nil, nil if the graph was never saved.
func (s *PGStore) GetGraph(ctx context.Context, graphID string) (*depgraph.Graph, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM depgraph_graphs WHERE id = $1)`, graphID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("depgraph: get graph: %w", err)
	}
	if !exists {
		return nil, nil
	}

	nodes, err := s.ListNodes(ctx, graphID)
	if err != nil {
		return nil, err
	}

	edges, err := s.ListEdges(ctx, graphID)
	if err != nil {
		return nil, err
	}

	return &depgraph.Graph{ID: graphID, Nodes: nodes, Edges: edges}, nil
}

// DeleteGraph removes all nodes and edges for a graphID.
// No error if the graphID doesn't exist.
func (s *PGStore) DeleteGraph(ctx context.Context, graphID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("depgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM depgraph_edges WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("depgraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM depgraph_nodes WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("depgraph: delete nodes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM depgraph_graphs WHERE id = $1`, graphID); err != nil {
		return fmt.Errorf("depgraph: delete graph: %w", err)
	}

	return tx.Commit(ctx)
}
