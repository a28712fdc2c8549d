// Package validator checks website configuration values against a resolved
// schema, producing a structured list of violations.
//
// Validation is a pure read: the input is never mutated, and every problem
// is collected into one Result rather than failing fast, so a caller can
// report all violations at once. Violations carry JSON-Pointer-style paths
// from the document root.
//
// Violations are data, not errors: only an empty Result permits a
// configuration write to proceed, but a non-empty Result is returned to
// the caller for display, never raised.
package validator
