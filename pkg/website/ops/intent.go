package ops

import (
	"context"
	"time"
)

// Kind identifies a structural operation.
type Kind string

const (
	KindCreate      Kind = "create"
	KindRename      Kind = "rename"
	KindDuplicate   Kind = "duplicate"
	KindDelete      Kind = "delete"
	KindWriteConfig Kind = "write_config"
)

// StageFunc populates or mutates a staged tree (or staged file, for
// configuration writes). It runs after the manager has prepared the
// staging location and, for rename/duplicate, after the source tree has
// been copied in.
type StageFunc func(ctx context.Context, stagingPath string) error

// VerifyFunc checks a staged result before commit. A non-nil error
// discards the staged tree and fails the operation with StagingFailed.
type VerifyFunc func(ctx context.Context, stagingPath string) error

// Intent is a requested structural change. An intent is created by the
// website manager and discharged entirely by the operation manager: it is
// either committed or rolled back, never partially persisted.
type Intent struct {
	// Kind is the requested operation.
	Kind Kind

	// Identity is the primary website identity: the website to create,
	// delete, or whose configuration to write, or the source of a rename
	// or duplicate.
	Identity string

	// TargetIdentity is the destination identity for rename and
	// duplicate; empty otherwise.
	TargetIdentity string

	// Stage populates or mutates the staged result. Optional for rename
	// and duplicate, required for create and configuration writes,
	// ignored for delete.
	Stage StageFunc

	// Verify checks the staged result before commit. Optional.
	Verify VerifyFunc
}

// Result describes a successfully committed operation.
type Result struct {
	// OperationID is the journaled identifier of the operation.
	OperationID string

	// Kind is the operation that was performed.
	Kind Kind

	// Identity and TargetIdentity mirror the intent.
	Identity       string
	TargetIdentity string

	// Path is the final committed location: the project root for create,
	// rename, and duplicate, or the configuration file for writes. Empty
	// for delete.
	Path string

	// TrashPath is where the previous tree was preserved, for delete and
	// rename. Empty otherwise.
	TrashPath string

	// Duration is the total time the operation held its lock.
	Duration time.Duration
}
