// Package engineerr defines the engine's error taxonomy. The engine
// never logs; every failure it detects is returned by value as an
// *EngineError, which the host translates into a job-status error
// (fatal kinds) or a warning string (soft-degrade paths, which do not
// use this package at all — they append directly to meta.warnings).
package engineerr

import "fmt"

// Kind is one of the engine's three fatal error categories (spec §6/§7).
type Kind string

const (
	// TooLarge means the graph cap (220k nodes / 360k edges) was
	// exceeded during ingest.
	TooLarge Kind = "too_large"
	// InvalidInput means the bounding box or an element was malformed
	// beyond what silent-skip can absorb.
	InvalidInput Kind = "invalid_input"
	// Internal means a pipeline invariant was violated.
	Internal Kind = "internal"
)

// EngineError is the engine's sole error type. It carries a stable Kind
// and a human-readable message.
type EngineError struct {
	Kind    Kind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an EngineError of the given kind.
func New(kind Kind, message string) *EngineError {
	return &EngineError{Kind: kind, Message: message}
}

// Newf constructs an EngineError with a formatted message.
func Newf(kind Kind, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is supports errors.Is comparisons against a Kind sentinel constructed
// via New(kind, "").
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
