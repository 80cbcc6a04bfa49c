package depgraph

import (
	"context"
	"errors"
)

var (
	ErrGraphNotFound = errors.New("depgraph: graph not found")
	ErrNodeNotFound  = errors.New("depgraph: node not found")
)

// Store defines the contract for persisting and retrieving derived graphs.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Graph (bulk operations)
	SaveGraph(ctx context.Context, g *Graph) (*Graph, error)
	GetGraph(ctx context.Context, graphID string) (*Graph, error)
	DeleteGraph(ctx context.Context, graphID string) error

	// Nodes
	GetNode(ctx context.Context, graphID, nodeID string) (*Node, error)
	ListNodes(ctx context.Context, graphID string) ([]Node, error)

	// Edges
	ListEdges(ctx context.Context, graphID string) ([]Edge, error)
	Dependencies(ctx context.Context, graphID, nodeID string) ([]Node, error)
	Dependents(ctx context.Context, graphID, nodeID string) ([]Node, error)
}
