// Package analyzer runs graph derivations on behalf of callers that must
// not block: it decodes uploaded documents, derives their graphs off the
// calling goroutine, caches results by content, and persists them.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meikuraledutech/depgraph"
	"github.com/meikuraledutech/depgraph/archive"
	"github.com/meikuraledutech/depgraph/ctxlog"
	"golang.org/x/sync/singleflight"
)

// ErrNoArchive is returned by Rederive when documents are not archived.
var ErrNoArchive = errors.New("analyzer: no document archive configured")

// Decoder turns a raw document into component definitions. It stands in
// for the external document parser.
type Decoder interface {
	Decode(doc []byte) (depgraph.Definitions, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(doc []byte) (depgraph.Definitions, error)

func (f DecoderFunc) Decode(doc []byte) (depgraph.Definitions, error) { return f(doc) }

// JSONDecoder reads the parser's JSON output (id -> definition).
var JSONDecoder Decoder = DecoderFunc(func(doc []byte) (depgraph.Definitions, error) {
	var defs depgraph.Definitions
	if err := json.Unmarshal(doc, &defs); err != nil {
		return nil, err
	}
	if defs == nil {
		defs = depgraph.Definitions{}
	}
	return defs, nil
})

// Archive keeps raw documents keyed by graph id.
type Archive interface {
	Put(ctx context.Context, graphID string, doc []byte) error
	Get(ctx context.Context, graphID string) ([]byte, error)
	Delete(ctx context.Context, graphID string) error
}

type Options struct {
	Store   depgraph.Store
	Archive Archive // optional
	Decoder Decoder // defaults to JSONDecoder
	Palette *depgraph.Palette

	// CacheSize bounds the number of derived graphs kept in memory.
	CacheSize int
}

type Analyzer struct {
	store   depgraph.Store
	archive Archive
	decoder Decoder
	palette depgraph.Palette

	cache *lru.Cache[string, *depgraph.Graph]
	group singleflight.Group

	// deriveFn is depgraph.Derive; tests swap it to hold a derivation open.
	deriveFn func(depgraph.Definitions, depgraph.Palette) ([]depgraph.Node, []depgraph.Edge, error)
}

func New(opts Options) (*Analyzer, error) {
	if opts.Store == nil {
		return nil, errors.New("analyzer: store is required")
	}
	decoder := opts.Decoder
	if decoder == nil {
		decoder = JSONDecoder
	}
	palette := depgraph.DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *depgraph.Graph](size)
	if err != nil {
		return nil, fmt.Errorf("analyzer: cache: %w", err)
	}

	return &Analyzer{
		store:   opts.Store,
		archive: opts.Archive,
		decoder: decoder,
		palette: palette,
		cache:   cache,

		deriveFn: depgraph.Derive,
	}, nil
}

// Palette returns the palette used when a request does not bring its own.
func (a *Analyzer) Palette() depgraph.Palette { return a.palette }

type Request struct {
	// GraphID names the stored graph; a UUID is generated when empty.
	GraphID  string
	Document []byte

	// Palette overrides the analyzer's palette for this request.
	Palette *depgraph.Palette
}

// Analyze derives, archives and stores the graph of req.Document.
//
// A document the decoder cannot read yields an empty graph with no ID and
// no error; nothing is stored in that case. *depgraph.MalformedInputError and
// *depgraph.ConfigurationError are returned unchanged. If ctx ends before
// the derivation finishes, its result is discarded and ctx.Err() returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*depgraph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	defs, err := a.decoder.Decode(req.Document)
	if err != nil {
		if errors.Is(err, depgraph.ErrMalformedInput) {
			return nil, err
		}
		logger.Warn("document could not be decoded, no graph available", "graph_id", req.GraphID, "error", err)
		return &depgraph.Graph{Nodes: []depgraph.Node{}, Edges: []depgraph.Edge{}}, nil
	}

	palette := a.palette
	if req.Palette != nil {
		palette = *req.Palette
	}

	derived, err := a.derive(ctx, defs, palette)
	if err != nil {
		return nil, err
	}

	g := &depgraph.Graph{
		ID:    req.GraphID,
		Nodes: append([]depgraph.Node{}, derived.Nodes...),
		Edges: append([]depgraph.Edge{}, derived.Edges...),
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	saved, err := a.store.SaveGraph(ctx, g)
	if err != nil {
		return nil, err
	}

	if a.archive != nil {
		if err := a.archive.Put(ctx, saved.ID, req.Document); err != nil {
			if delErr := a.store.DeleteGraph(ctx, saved.ID); delErr != nil {
				logger.Error("stored graph left without its document", "graph_id", saved.ID, "error", delErr)
			}
			return nil, fmt.Errorf("analyzer: archive document: %w", err)
		}
	}

	logger.Info("graph derived", "graph_id", saved.ID, "nodes", len(saved.Nodes), "edges", len(saved.Edges))
	return saved, nil
}

// derive returns the shared, cached graph for defs under palette. Callers
// must not modify it.
func (a *Analyzer) derive(ctx context.Context, defs depgraph.Definitions, palette depgraph.Palette) (*depgraph.Graph, error) {
	key, err := cacheKey(defs, palette)
	if err != nil {
		return nil, err
	}
	if g, ok := a.cache.Get(key); ok {
		ctxlog.FromContext(ctx).Debug("derived graph served from cache", "key", key)
		return g, nil
	}

	ch := a.group.DoChan(key, func() (any, error) {
		nodes, edges, err := a.deriveFn(defs, palette)
		if err != nil {
			return nil, err
		}
		g := &depgraph.Graph{Nodes: nodes, Edges: edges}
		a.cache.Add(key, g)
		return g, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*depgraph.Graph), nil
	}
}

// cacheKey hashes the canonical encoding of the derivation inputs.
func cacheKey(defs depgraph.Definitions, palette depgraph.Palette) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(defs); err != nil {
		return "", fmt.Errorf("analyzer: encode definitions: %w", err)
	}
	if err := enc.Encode(palette); err != nil {
		return "", fmt.Errorf("analyzer: encode palette: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Graph loads a stored graph or returns depgraph.ErrGraphNotFound.
func (a *Analyzer) Graph(ctx context.Context, graphID string) (*depgraph.Graph, error) {
	g, err := a.store.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, depgraph.ErrGraphNotFound
	}
	return g, nil
}

// Rederive derives a stored graph again from its archived document, using
// palette (or the analyzer's palette when nil), and replaces it.
func (a *Analyzer) Rederive(ctx context.Context, graphID string, palette *depgraph.Palette) (*depgraph.Graph, error) {
	if a.archive == nil {
		return nil, ErrNoArchive
	}
	doc, err := a.archive.Get(ctx, graphID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return nil, depgraph.ErrGraphNotFound
		}
		return nil, err
	}
	return a.Analyze(ctx, Request{GraphID: graphID, Document: doc, Palette: palette})
}

// Delete removes a graph and its archived document.
func (a *Analyzer) Delete(ctx context.Context, graphID string) error {
	if err := a.store.DeleteGraph(ctx, graphID); err != nil {
		return err
	}
	if a.archive != nil {
		return a.archive.Delete(ctx, graphID)
	}
	return nil
}
