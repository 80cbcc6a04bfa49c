package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS depgraph_graphs (
    id         TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS depgraph_nodes (
    graph_id       TEXT NOT NULL,
    id             TEXT NOT NULL,
    kind           TEXT NOT NULL,
    color          TEXT NOT NULL,
    shape          TEXT NOT NULL,
    label_position TEXT NOT NULL DEFAULT 'bottom',
    ord            INTEGER NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (graph_id, id)
);

CREATE TABLE IF NOT EXISTS depgraph_edges (
    graph_id   TEXT NOT NULL,
    source     TEXT NOT NULL,
    target     TEXT NOT NULL,
    ord        INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (graph_id, source, target),
    FOREIGN KEY (graph_id, source) REFERENCES depgraph_nodes(graph_id, id) ON DELETE CASCADE,
    FOREIGN KEY (graph_id, target) REFERENCES depgraph_nodes(graph_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_depgraph_edges_target ON depgraph_edges(graph_id, target);
`

// CreateSchema creates the depgraph_graphs, depgraph_nodes and depgraph_edges tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the depgraph_edges, depgraph_nodes and depgraph_graphs tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS depgraph_edges, depgraph_nodes, depgraph_graphs CASCADE;`)
	return err
}
