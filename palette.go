package depgraph

import (
	"encoding/json"
	"sort"
	"strings"
)

// Palette assigns a display color to every kind. A Palette built with
// NewPalette is total over Kinds().
type Palette struct {
	colors map[Kind]string
}

// NewPalette validates colors and returns a palette. Every kind in Kinds(),
// Image included, needs a non-empty color; unknown kinds are rejected as well.
func NewPalette(colors map[Kind]string) (Palette, error) {
	extra := make([]Kind, 0)
	for k := range colors {
		if !k.Valid() {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
		return Palette{}, &ConfigurationError{Kind: extra[0], Msg: "unknown kind"}
	}

	out := make(map[Kind]string, len(allKinds))
	for _, k := range allKinds {
		c := strings.TrimSpace(colors[k])
		if c == "" {
			return Palette{}, &ConfigurationError{Kind: k}
		}
		out[k] = c
	}
	return Palette{colors: out}, nil
}

// DefaultPalette returns the built-in colors.
func DefaultPalette() Palette {
	return Palette{colors: DefaultColors()}
}

// DefaultColors returns a fresh copy of the built-in kind colors.
func DefaultColors() map[Kind]string {
	return map[Kind]string{
		KindText:           "#ffa600",
		KindNumber:         "#374c80",
		KindDate:           "#ef5675",
		KindTrueFalse:      "#bc5090",
		KindMultipleChoice: "#7a5195",
		KindImage:          "purple",
		KindDialog:         "#ff764a",
		KindComputation:    "#003f5c",
	}
}

// Color returns the color for k, or a *ConfigurationError naming k when the
// palette has none. The zero Palette has no colors at all.
func (p Palette) Color(k Kind) (string, error) {
	c, ok := p.colors[k]
	if !ok || c == "" {
		return "", &ConfigurationError{Kind: k}
	}
	return c, nil
}

// Colors returns a copy of the kind to color table.
func (p Palette) Colors() map[Kind]string {
	out := make(map[Kind]string, len(p.colors))
	for k, c := range p.colors {
		out[k] = c
	}
	return out
}

func (p Palette) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Colors())
}
