package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/depgraph"
	"github.com/meikuraledutech/depgraph/analyzer"
	"github.com/meikuraledutech/depgraph/ctxlog"
)

type rederiveRequest struct {
	Palette map[depgraph.Kind]string `json:"palette"`
}

func newApp(a *analyzer.Analyzer, store depgraph.Store, logger *slog.Logger) *fiber.App {
	// Params and query values outlive the handler in the in-memory store.
	app := fiber.New(fiber.Config{Immutable: true})

	ctxOf := func(c fiber.Ctx) context.Context {
		return ctxlog.WithLogger(c.Context(), logger.With("method", c.Method(), "path", c.Path()))
	}

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(ctxOf(c)); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(ctxOf(c)); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Palette ───────────────────────────────────────────────────────
	app.Get("/palette", func(c fiber.Ctx) error {
		return c.JSON(a.Palette())
	})

	// ── Graphs ────────────────────────────────────────────────────────
	app.Post("/graphs", func(c fiber.Ctx) error {
		g, err := a.Analyze(ctxOf(c), analyzer.Request{
			GraphID:  c.Query("id"),
			Document: append([]byte(nil), c.Body()...),
		})
		if err != nil {
			return writeError(c, err)
		}
		if g.ID == "" {
			// Undecodable document: no graph available, nothing stored.
			return c.JSON(g)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	app.Post("/graphs/:id/rederive", func(c fiber.Ctx) error {
		var req rederiveRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
			}
		}

		var palette *depgraph.Palette
		if req.Palette != nil {
			p, err := depgraph.NewPalette(req.Palette)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":          err.Error(),
					"required_kinds": depgraph.Kinds(),
				})
			}
			palette = &p
		}

		g, err := a.Rederive(ctxOf(c), c.Params("id"), palette)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Get("/graphs/:id", func(c fiber.Ctx) error {
		g, err := a.Graph(ctxOf(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Delete("/graphs/:id", func(c fiber.Ctx) error {
		if err := a.Delete(ctxOf(c), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Get("/graphs/:id/nodes", func(c fiber.Ctx) error {
		nodes, err := store.ListNodes(ctxOf(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(nodes)
	})

	app.Get("/graphs/:id/nodes/:node", func(c fiber.Ctx) error {
		n, err := store.GetNode(ctxOf(c), c.Params("id"), c.Params("node"))
		if err != nil {
			return writeError(c, err)
		}
		if n == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(n)
	})

	app.Get("/graphs/:id/nodes/:node/dependencies", func(c fiber.Ctx) error {
		nodes, err := store.Dependencies(ctxOf(c), c.Params("id"), c.Params("node"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(nodes)
	})

	app.Get("/graphs/:id/nodes/:node/dependents", func(c fiber.Ctx) error {
		nodes, err := store.Dependents(ctxOf(c), c.Params("id"), c.Params("node"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(nodes)
	})

	// ── Edges ─────────────────────────────────────────────────────────
	app.Get("/graphs/:id/edges", func(c fiber.Ctx) error {
		edges, err := store.ListEdges(ctxOf(c), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(edges)
	})

	return app
}

func writeError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, depgraph.ErrMalformedInput):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, depgraph.ErrGraphNotFound), errors.Is(err, depgraph.ErrNodeNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, analyzer.ErrNoArchive):
		status = fiber.StatusNotImplemented
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
