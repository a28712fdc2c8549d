package validator

import (
	"fmt"
	"strings"
)

// Violation is one validation failure: a JSON-Pointer path from the
// document root, a human-readable message, and the kind of value the
// schema expected at that path.
type Violation struct {
	Pointer  string
	Message  string
	Expected string
}

// String renders the violation for display.
func (v Violation) String() string {
	pointer := v.Pointer
	if pointer == "" {
		pointer = "/"
	}
	return fmt.Sprintf("%s: %s", pointer, v.Message)
}

// Result is the ordered list of violations produced by one validation
// pass. An empty result means the configuration is valid. Results are pure
// values; callers discard them after use.
type Result struct {
	Violations []Violation
}

// Valid reports whether the result contains no violations.
func (r *Result) Valid() bool {
	return len(r.Violations) == 0
}

// String renders every violation, one per line.
func (r *Result) String() string {
	if r.Valid() {
		return "valid"
	}
	lines := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// add appends a violation to the result.
func (r *Result) add(pointer, message, expected string) {
	r.Violations = append(r.Violations, Violation{
		Pointer:  pointer,
		Message:  message,
		Expected: expected,
	})
}

// childPointer extends a JSON-Pointer path with one token, escaping the
// characters the pointer syntax reserves.
func childPointer(pointer, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return pointer + "/" + token
}
