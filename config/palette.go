package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/meikuraledutech/depgraph"
	"github.com/zclconf/go-cty/cty"
)

// hclPaletteFile is the top-level structure of a palette file:
//
//	kind "Text" { color = "#ffa600" }
//	kind "Dialog" { color = defaults.Dialog }
type hclPaletteFile struct {
	Kinds []*hclKind `hcl:"kind,block"`
}

type hclKind struct {
	Name  string `hcl:"name,label"`
	Color string `hcl:"color"`
}

// LoadPalette reads a palette from an HCL file. An empty path yields the
// built-in palette.
func LoadPalette(path string) (depgraph.Palette, error) {
	if path == "" {
		return depgraph.DefaultPalette(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return depgraph.Palette{}, fmt.Errorf("config: read palette: %w", err)
	}
	return ParsePalette(src, path)
}

// ParsePalette decodes palette source. The file must declare every kind
// exactly once; the built-in colors are reachable as defaults.<Kind>.
func ParsePalette(src []byte, filename string) (depgraph.Palette, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return depgraph.Palette{}, fmt.Errorf("config: failed to parse palette %s: %w", filename, diags)
	}

	var parsed hclPaletteFile
	diags = gohcl.DecodeBody(file.Body, paletteEvalContext(), &parsed)
	if diags.HasErrors() {
		return depgraph.Palette{}, fmt.Errorf("config: failed to decode palette %s: %w", filename, diags)
	}

	colors := make(map[depgraph.Kind]string, len(parsed.Kinds))
	for _, k := range parsed.Kinds {
		kind := depgraph.Kind(k.Name)
		if _, dup := colors[kind]; dup {
			return depgraph.Palette{}, &depgraph.ConfigurationError{Kind: kind, Msg: "declared twice"}
		}
		colors[kind] = k.Color
	}

	return depgraph.NewPalette(colors)
}

func paletteEvalContext() *hcl.EvalContext {
	defaults := make(map[string]cty.Value)
	for k, c := range depgraph.DefaultColors() {
		defaults[string(k)] = cty.StringVal(c)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(defaults),
		},
	}
}
