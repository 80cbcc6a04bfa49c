// Package depgraph derives a directed dependency graph from the parsed
// components of a form/dialog definition document.
//
// Every component becomes one Node. Every reference a Dialog or Computation
// makes to another component becomes one Edge pointing from the dependency to
// the dependent. References to ids that are not part of the document are
// dropped.
package depgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind is the display kind of a component.
type Kind string

const (
	KindText           Kind = "Text"
	KindNumber         Kind = "Number"
	KindDate           Kind = "Date"
	KindTrueFalse      Kind = "TrueFalse"
	KindMultipleChoice Kind = "MultipleChoice"
	KindImage          Kind = "Image"
	KindDialog         Kind = "Dialog"
	KindComputation    Kind = "Computation"
)

var allKinds = []Kind{
	KindText,
	KindNumber,
	KindDate,
	KindTrueFalse,
	KindMultipleChoice,
	KindImage,
	KindDialog,
	KindComputation,
}

// Kinds returns every recognized kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Simple reports whether k is a primitive field kind, i.e. one that cannot
// reference other components.
func (k Kind) Simple() bool {
	return k.Valid() && k != KindDialog && k != KindComputation
}

// Shape is the symbol a node is drawn with.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
)

// ShapeOf returns the symbol for a kind. Shapes are fixed per kind and are
// not part of the caller supplied palette.
func ShapeOf(k Kind) Shape {
	switch k {
	case KindDialog:
		return ShapeSquare
	case KindComputation:
		return ShapeTriangle
	default:
		return ShapeCircle
	}
}

// LabelBottom is the label position of every node.
const LabelBottom = "bottom"

// Definition is the raw parsed form of one component. It is one of
// SimpleTag, Dialog or Computation.
type Definition interface {
	isDefinition()
}

// SimpleTag is a primitive field such as Text or Number.
type SimpleTag Kind

// Dialog groups child fields and may attach a script referencing others.
type Dialog struct {
	Children []string `json:"children"`
	Script   []string `json:"script"`
}

// Computation is a formula value referencing other components.
type Computation struct {
	Refs []string `json:"refs"`
}

func (SimpleTag) isDefinition()   {}
func (Dialog) isDefinition()      {}
func (Computation) isDefinition() {}

// MarshalJSON encodes the tag as a bare string, e.g. "Text".
func (t SimpleTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// MarshalJSON encodes {"Dialog":{"children":[...],"script":[...]}}.
func (d Dialog) MarshalJSON() ([]byte, error) {
	type body struct {
		Children []string `json:"children"`
		Script   []string `json:"script"`
	}
	return json.Marshal(map[string]body{
		string(KindDialog): {Children: nonNil(d.Children), Script: nonNil(d.Script)},
	})
}

// MarshalJSON encodes {"Computation":[...]}.
func (c Computation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		string(KindComputation): nonNil(c.Refs),
	})
}

// Definitions maps component ids to their raw definitions. It is produced
// by the document decoder and is read-only to the derivation.
type Definitions map[string]Definition

// IDs returns the component ids in ascending order.
func (defs Definitions) IDs() []string {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnmarshalJSON decodes the decoder's wire form. Each value must be a simple
// kind name, a {"Dialog":{...}} object or a {"Computation":...} object;
// anything else is a *MalformedInputError naming the offending id.
func (defs *Definitions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Definitions, len(raw))
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		def, err := decodeDefinition(id, raw[id])
		if err != nil {
			return err
		}
		out[id] = def
	}
	*defs = out
	return nil
}

func decodeDefinition(id string, raw json.RawMessage) (Definition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, malformed(id, "empty definition")
	}

	switch raw[0] {
	case '"':
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, malformed(id, err.Error())
		}
		if !Kind(tag).Simple() {
			return nil, malformed(id, fmt.Sprintf("%q is not a simple kind", tag))
		}
		return SimpleTag(tag), nil

	case '{':
		var variant map[string]json.RawMessage
		if err := json.Unmarshal(raw, &variant); err != nil {
			return nil, malformed(id, err.Error())
		}
		if len(variant) != 1 {
			return nil, malformed(id, fmt.Sprintf("expected exactly one variant key, got %d", len(variant)))
		}
		if body, ok := variant[string(KindDialog)]; ok {
			var d Dialog
			if err := json.Unmarshal(body, &d); err != nil {
				return nil, malformed(id, "dialog: "+err.Error())
			}
			return d, nil
		}
		if body, ok := variant[string(KindComputation)]; ok {
			return decodeComputation(id, body)
		}
		for key := range variant {
			return nil, malformed(id, fmt.Sprintf("unknown variant %q", key))
		}
	}

	return nil, malformed(id, "expected a kind name or a Dialog/Computation object")
}

// decodeComputation accepts both the bare list form and {"refs":[...]}.
func decodeComputation(id string, body json.RawMessage) (Definition, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var refs []string
		if err := json.Unmarshal(body, &refs); err != nil {
			return nil, malformed(id, "computation: "+err.Error())
		}
		return Computation{Refs: refs}, nil
	}

	var c Computation
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, malformed(id, "computation: "+err.Error())
	}
	return c, nil
}

// Node is the display form of one component.
type Node struct {
	ID            string `json:"id"`
	Kind          Kind   `json:"kind"`
	Color         string `json:"color"`
	Shape         Shape  `json:"shape"`
	LabelPosition string `json:"labelPosition"`
}

// Edge means Source is referenced by Target (dependency -> dependent).
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is one derivation result. ID is assigned when the graph is saved.
type Graph struct {
	ID    string `json:"id,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
