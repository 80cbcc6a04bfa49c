package depgraph

import "fmt"

// Classify turns one raw definition into its display node.
//
// Simple tags keep their own kind, Dialogs and Computations get theirs. The
// color comes from p; a missing entry fails with *ConfigurationError. A
// definition that is none of the three variants, or a tag outside the simple
// kinds, fails with *MalformedInputError.
func Classify(id string, def Definition, p Palette) (Node, error) {
	var kind Kind
	switch d := def.(type) {
	case SimpleTag:
		kind = Kind(d)
		if !kind.Simple() {
			return Node{}, malformed(id, fmt.Sprintf("%q is not a simple kind", string(d)))
		}
	case Dialog:
		kind = KindDialog
	case Computation:
		kind = KindComputation
	default:
		return Node{}, malformed(id, fmt.Sprintf("unsupported definition %T", def))
	}

	color, err := p.Color(kind)
	if err != nil {
		return Node{}, err
	}

	return Node{
		ID:            id,
		Kind:          kind,
		Color:         color,
		Shape:         ShapeOf(kind),
		LabelPosition: LabelBottom,
	}, nil
}
