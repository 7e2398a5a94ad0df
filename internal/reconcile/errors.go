package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine-level failures. Row-level problems are never
// errors; they end up in Result.Findings.
var (
	// ErrInvalidInput indicates that a catalog was missing altogether.
	ErrInvalidInput = errors.New("invalid input catalog")

	// ErrEmptyInput indicates that both catalogs were empty.
	ErrEmptyInput = errors.New("both catalogs are empty")
)

// EngineError reports a comparison that could not run at all.
type EngineError struct {
	Op      string
	Catalog string
	Err     error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Catalog != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Catalog, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *EngineError) Unwrap() error {
	return e.Err
}
