package schema

import (
	"fmt"
	"strings"
)

// ResolutionErrorKind classifies the failure modes of schema resolution.
type ResolutionErrorKind string

const (
	// KindMissingFragment indicates a referenced fragment file does not exist
	// or could not be read.
	KindMissingFragment ResolutionErrorKind = "missing_fragment"

	// KindCyclicReference indicates a fragment transitively references itself.
	KindCyclicReference ResolutionErrorKind = "cyclic_reference"

	// KindMalformedFragment indicates a fragment could not be parsed or does
	// not describe an object schema.
	KindMalformedFragment ResolutionErrorKind = "malformed_fragment"
)

// ResolutionError represents a failure to resolve a root schema document.
// Resolution errors are always fatal to the resolution call; a partially
// resolved schema is never returned alongside one.
type ResolutionError struct {
	// Kind classifies the failure.
	Kind ResolutionErrorKind

	// Ref is the reference string of the document that caused the failure.
	Ref string

	// Cycle contains the reference chain for cyclic reference errors.
	Cycle []string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Kind == KindCyclicReference && len(e.Cycle) > 0 {
		return fmt.Sprintf("schema resolution failed for %q: circular reference: %s", e.Ref, strings.Join(e.Cycle, " -> "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("schema resolution failed for %q: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema resolution failed for %q: %s", e.Ref, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}
