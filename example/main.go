package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/meikuraledutech/depgraph"
	"github.com/meikuraledutech/depgraph/analyzer"
	"github.com/meikuraledutech/depgraph/archive"
	"github.com/meikuraledutech/depgraph/config"
	"github.com/meikuraledutech/depgraph/ctxlog"
	"github.com/meikuraledutech/depgraph/memory"
)

// sampleDocument is what the document parser emits for a small interview.
const sampleDocument = `{
	"Client name":      "Text",
	"Client age":       "Number",
	"Date of birth":    "Date",
	"Is married":       "TrueFalse",
	"Marital status":   "MultipleChoice",
	"Age computation":  {"Computation": ["Date of birth", "Age computation"]},
	"Client dialog":    {"Dialog": {"children": ["Client name", "Date of birth", "Is married"],
	                                "script": ["Is married", "Spouse dialog", "Age computation"]}}
}`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	doc := []byte(sampleDocument)
	if len(os.Args) > 1 {
		b, err := os.ReadFile(os.Args[1])
		if err != nil {
			fatal(logger, "read document", err)
		}
		doc = b
	}

	palette, err := config.LoadPalette(os.Getenv("PALETTE_FILE"))
	if err != nil {
		fatal(logger, "palette", err)
	}

	a, err := analyzer.New(analyzer.Options{
		Store:   memory.New(),
		Archive: archive.NewMemory(),
		Palette: &palette,
	})
	if err != nil {
		fatal(logger, "analyzer", err)
	}

	// ── Derive ────────────────────────────────────────────────────────
	g, err := a.Analyze(ctx, analyzer.Request{GraphID: "interview", Document: doc})
	if err != nil {
		fatal(logger, "analyze", err)
	}
	fmt.Println("graph derived:")
	printJSON(g)

	// ── Same document, different palette ─────────────────────────────
	colors := depgraph.DefaultColors()
	colors[depgraph.KindDialog] = "#2f4b7c"
	alt, err := depgraph.NewPalette(colors)
	if err != nil {
		fatal(logger, "palette", err)
	}
	g, err = a.Rederive(ctx, "interview", &alt)
	if err != nil {
		fatal(logger, "rederive", err)
	}
	fmt.Println("\ngraph re-derived with another palette:")
	printJSON(g.Nodes)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
