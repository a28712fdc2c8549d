package paths

import "fmt"

// PathErrorKind classifies path policy rejections.
type PathErrorKind string

const (
	// KindTraversal indicates a path that contains parent-directory
	// traversal or would resolve outside the project root.
	KindTraversal PathErrorKind = "traversal"

	// KindAbsoluteRejected indicates a caller supplied an absolute path
	// where a project-relative path is required.
	KindAbsoluteRejected PathErrorKind = "absolute_rejected"

	// KindPrefixDuplication indicates a content path that still duplicates
	// the content-root segment after the single-occurrence repair.
	KindPrefixDuplication PathErrorKind = "prefix_duplication"
)

// PathError represents a path policy rejection. A PathError always occurs
// before any filesystem mutation.
type PathError struct {
	// Kind classifies the rejection.
	Kind PathErrorKind

	// Path is the offending input path.
	Path string

	// Message describes the rejection.
	Message string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("path policy rejected %q: %s", e.Path, e.Message)
}
