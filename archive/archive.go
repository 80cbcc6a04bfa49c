// Package archive keeps the raw definition documents graphs were derived
// from, so a graph can be derived again with another palette.
package archive

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when no document is archived for a graph.
var ErrNotFound = errors.New("archive: document not found")

const documentName = "definitions.json"

func objectKey(graphID string) string {
	return strings.TrimSpace(graphID) + "/" + documentName
}

// Memory is an in-process archive. It is used when no bucket is configured.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, graphID string, doc []byte) error {
	if strings.TrimSpace(graphID) == "" {
		return errors.New("archive: graph id is required")
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[objectKey(graphID)] = cp
	return nil
}

func (m *Memory) Get(_ context.Context, graphID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[objectKey(graphID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (m *Memory) Delete(_ context.Context, graphID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, objectKey(graphID))
	return nil
}
