package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/depgraph"
	"github.com/meikuraledutech/depgraph/analyzer"
	"github.com/meikuraledutech/depgraph/archive"
	"github.com/meikuraledutech/depgraph/config"
	"github.com/meikuraledutech/depgraph/memory"
	"github.com/meikuraledutech/depgraph/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "config", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	palette, err := config.LoadPalette(cfg.PaletteFile)
	if err != nil {
		fatal(logger, "palette", err)
	}

	ctx := context.Background()

	var store depgraph.Store
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, graphs are kept in memory")
		store = memory.New()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "connect", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	var docs analyzer.Archive
	if cfg.Archive.Enabled() {
		s3, err := archive.NewS3(archive.S3Config(cfg.Archive))
		if err != nil {
			fatal(logger, "archive", err)
		}
		docs = s3
	} else {
		logger.Warn("ARCHIVE_S3_ENDPOINT is not set, documents are kept in memory")
		docs = archive.NewMemory()
	}

	a, err := analyzer.New(analyzer.Options{
		Store:     store,
		Archive:   docs,
		Palette:   &palette,
		CacheSize: cfg.CacheSize,
	})
	if err != nil {
		fatal(logger, "analyzer", err)
	}

	app := newApp(a, store, logger)
	if err := app.Listen(cfg.Port); err != nil {
		fatal(logger, "listen", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
