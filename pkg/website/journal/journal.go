package journal

import (
	"context"
	"time"
)

// EntryState is the lifecycle state of a journal entry.
type EntryState string

const (
	// StatePending marks an operation that has begun but not finished.
	StatePending EntryState = "pending"

	// StateCommitted marks an operation whose commit completed.
	StateCommitted EntryState = "committed"

	// StateRolledBack marks an operation that was rolled back cleanly.
	StateRolledBack EntryState = "rolled_back"
)

// Entry is one journaled operation.
type Entry struct {
	// ID is the unique operation identifier.
	ID string

	// Operation is the operation kind (create, rename, duplicate, delete,
	// write_config).
	Operation string

	// Identity is the primary website identity the operation targets.
	Identity string

	// TargetIdentity is the destination identity for rename and duplicate
	// operations; empty otherwise.
	TargetIdentity string

	// StagingPath is the staging location used by the operation; empty for
	// operations that stage nothing.
	StagingPath string

	// State is the entry's lifecycle state.
	State EntryState

	// StartedAt is when the operation began.
	StartedAt time.Time

	// FinishedAt is when the operation committed or rolled back; zero
	// while pending.
	FinishedAt time.Time
}

// Journal records operation lifecycles. Implementations must be safe for
// concurrent use.
type Journal interface {
	// Begin records a new pending entry.
	Begin(ctx context.Context, entry *Entry) error

	// MarkCommitted transitions a pending entry to committed.
	MarkCommitted(ctx context.Context, id string) error

	// MarkRolledBack transitions a pending entry to rolled back.
	MarkRolledBack(ctx context.Context, id string) error

	// Pending returns all entries still pending, oldest first.
	Pending(ctx context.Context) ([]*Entry, error)

	// Close releases journal resources.
	Close() error
}
