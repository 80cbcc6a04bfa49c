package depgraph

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration  = errors.New("depgraph: configuration error")
	ErrMalformedInput = errors.New("depgraph: malformed input")
)

// ConfigurationError reports a palette that has no usable color for Kind.
type ConfigurationError struct {
	Kind Kind
	Msg  string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: no color for kind %q", ErrConfiguration, e.Kind)
	}
	return fmt.Sprintf("%s: kind %q: %s", ErrConfiguration, e.Kind, e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// MalformedInputError reports a raw definition that matches none of the
// recognized shapes.
type MalformedInputError struct {
	ID     string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: component %q", ErrMalformedInput, e.ID)
	}
	return fmt.Sprintf("%s: component %q: %s", ErrMalformedInput, e.ID, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

func malformed(id, reason string) error {
	return &MalformedInputError{ID: id, Reason: reason}
}
