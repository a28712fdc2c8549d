package ops

import "fmt"

// OperationErrorKind classifies operation failures.
type OperationErrorKind string

const (
	// KindStagingFailed indicates staging or verification failed. The
	// live project state is untouched and the operation may be retried.
	KindStagingFailed OperationErrorKind = "staging_failed"

	// KindCommitFailed indicates the commit step failed. When
	// StateUnknown is also set, restoring the pre-commit snapshot failed
	// too and the project requires manual inspection.
	KindCommitFailed OperationErrorKind = "commit_failed"

	// KindAlreadyInProgress indicates another operation holds the lock
	// for the same identity. Nothing was changed; callers may retry.
	KindAlreadyInProgress OperationErrorKind = "already_in_progress"
)

// OperationError represents a failed structural operation.
type OperationError struct {
	// Kind classifies the failure.
	Kind OperationErrorKind

	// Op is the operation that failed.
	Op Kind

	// Identity is the website identity the operation targeted.
	Identity string

	// Message describes the failure.
	Message string

	// StateUnknown is set only when a failed commit could not be rolled
	// back; this is the sole case that may leave inconsistent state.
	StateUnknown bool

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s of website %q failed: %s", e.Op, e.Identity, e.Message)
	if e.StateUnknown {
		msg += " (state may be inconsistent, manual inspection required)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure left state untouched and the
// operation may simply be retried.
func (e *OperationError) Retryable() bool {
	return e.Kind != KindCommitFailed
}
