package ops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"loomhq/atelier/pkg/website/journal"
	"loomhq/atelier/pkg/website/paths"
	"loomhq/atelier/pkg/website/trash"
)

// OperationMetrics receives operation observations. Implementations must
// be safe for concurrent use. A nil OperationMetrics disables reporting.
type OperationMetrics interface {
	OperationStarted(kind string)
	OperationFinished(kind string, outcome string, duration time.Duration)
}

// Manager executes structural website operations as commit-or-rollback
// transactions, serialized per website identity.
type Manager struct {
	policy  *paths.Policy
	trash   *trash.Store
	journal journal.Journal
	metrics OperationMetrics
	locks   *identityLocks
	logger  *slog.Logger
}

// NewManager creates an operation manager. The journal may be nil, in
// which case operations are journaled in memory only; metrics may be nil.
func NewManager(policy *paths.Policy, trashStore *trash.Store, jnl journal.Journal, metrics OperationMetrics) (*Manager, error) {
	if policy == nil {
		return nil, fmt.Errorf("path policy is required")
	}
	if trashStore == nil {
		return nil, fmt.Errorf("trash store is required")
	}
	if jnl == nil {
		jnl = journal.NewMemoryJournal()
	}

	if err := os.MkdirAll(policy.StagingRoot(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &Manager{
		policy:  policy,
		trash:   trashStore,
		journal: jnl,
		metrics: metrics,
		locks:   newIdentityLocks(),
		logger:  slog.Default().With("component", "website.ops"),
	}, nil
}

// Perform executes the intent to either commit or rollback. A second
// intent for an identity that is already in flight fails fast with
// AlreadyInProgress. Once staging has begun the operation cannot be
// cancelled externally.
func (m *Manager) Perform(ctx context.Context, intent *Intent) (*Result, error) {
	if intent == nil {
		return nil, fmt.Errorf("intent is required")
	}
	if err := m.policy.CheckIdentity(intent.Identity); err != nil {
		return nil, err
	}
	switch intent.Kind {
	case KindRename, KindDuplicate:
		if err := m.policy.CheckIdentity(intent.TargetIdentity); err != nil {
			return nil, err
		}
	case KindCreate, KindDelete, KindWriteConfig:
	default:
		return nil, fmt.Errorf("unknown operation kind %q", intent.Kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !m.locks.tryAcquire(intent.Identity, intent.TargetIdentity) {
		return nil, &OperationError{
			Kind:     KindAlreadyInProgress,
			Op:       intent.Kind,
			Identity: intent.Identity,
			Message:  "another operation for this website is in flight",
		}
	}
	defer m.locks.release(intent.Identity, intent.TargetIdentity)

	if m.metrics != nil {
		m.metrics.OperationStarted(string(intent.Kind))
	}
	start := time.Now()

	var result *Result
	var err error
	switch intent.Kind {
	case KindCreate:
		result, err = m.performCreate(ctx, intent)
	case KindRename:
		result, err = m.performCopyCommit(ctx, intent, true)
	case KindDuplicate:
		result, err = m.performCopyCommit(ctx, intent, false)
	case KindDelete:
		result, err = m.performDelete(ctx, intent)
	case KindWriteConfig:
		result, err = m.performWriteConfig(ctx, intent)
	}

	duration := time.Since(start)
	outcome := "committed"
	if err != nil {
		outcome = "failed"
	}
	if m.metrics != nil {
		m.metrics.OperationFinished(string(intent.Kind), outcome, duration)
	}

	if err != nil {
		m.logger.Warn("operation failed",
			"op", string(intent.Kind),
			"identity", intent.Identity,
			"error", err,
		)
		return nil, err
	}

	result.Duration = duration
	m.logger.Info("operation committed",
		"op", string(intent.Kind),
		"identity", intent.Identity,
		"target", intent.TargetIdentity,
		"duration_ms", duration.Milliseconds(),
	)
	return result, nil
}

// performCreate stages a brand-new project tree and commits it with one
// rename.
func (m *Manager) performCreate(ctx context.Context, intent *Intent) (*Result, error) {
	finalPath, err := m.policy.CanonicalRoot(intent.Identity)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(finalPath); err == nil {
		return nil, m.stagingFailed(intent, "website already exists", nil)
	}

	opID := uuid.NewString()
	stagingPath := m.policy.StagingPath(intent.Identity, opID)
	if err := m.begin(ctx, opID, intent, stagingPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(stagingPath, 0o755); err != nil {
		m.rollback(ctx, opID, stagingPath)
		return nil, m.stagingFailed(intent, "failed to create staging directory", err)
	}

	if intent.Stage != nil {
		if err := intent.Stage(ctx, stagingPath); err != nil {
			m.rollback(ctx, opID, stagingPath)
			return nil, m.stagingFailed(intent, "staging failed", err)
		}
	}
	if intent.Verify != nil {
		if err := intent.Verify(ctx, stagingPath); err != nil {
			m.rollback(ctx, opID, stagingPath)
			return nil, m.stagingFailed(intent, "staged result failed verification", err)
		}
	}

	if err := os.Rename(stagingPath, finalPath); err != nil {
		m.rollback(ctx, opID, stagingPath)
		// The final location was never written, so live state is intact.
		return nil, &OperationError{
			Kind:     KindCommitFailed,
			Op:       intent.Kind,
			Identity: intent.Identity,
			Message:  "commit rename failed",
			Cause:    err,
		}
	}

	m.commit(ctx, opID)
	return &Result{
		OperationID: opID,
		Kind:        intent.Kind,
		Identity:    intent.Identity,
		Path:        finalPath,
	}, nil
}

// performCopyCommit implements rename and duplicate: the full result tree
// is staged as a copy of the source, then committed under the target
// identity. For rename the source tree is moved to the trash as the
// pre-commit snapshot.
func (m *Manager) performCopyCommit(ctx context.Context, intent *Intent, removeSource bool) (*Result, error) {
	srcPath, err := m.policy.CanonicalRoot(intent.Identity)
	if err != nil {
		return nil, err
	}
	dstPath, err := m.policy.CanonicalRoot(intent.TargetIdentity)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(srcPath); err != nil {
		return nil, m.stagingFailed(intent, "source website does not exist", err)
	}
	if _, err := os.Stat(dstPath); err == nil {
		return nil, m.stagingFailed(intent, "target website already exists", nil)
	}

	opID := uuid.NewString()
	stagingPath := m.policy.StagingPath(intent.TargetIdentity, opID)
	if err := m.begin(ctx, opID, intent, stagingPath); err != nil {
		return nil, err
	}

	if err := copyTree(ctx, srcPath, stagingPath); err != nil {
		m.rollback(ctx, opID, stagingPath)
		return nil, m.stagingFailed(intent, "failed to stage source tree", err)
	}

	if intent.Stage != nil {
		if err := intent.Stage(ctx, stagingPath); err != nil {
			m.rollback(ctx, opID, stagingPath)
			return nil, m.stagingFailed(intent, "staging failed", err)
		}
	}
	if intent.Verify != nil {
		if err := intent.Verify(ctx, stagingPath); err != nil {
			m.rollback(ctx, opID, stagingPath)
			return nil, m.stagingFailed(intent, "staged result failed verification", err)
		}
	}

	var trashPath string
	if removeSource {
		trashPath, err = m.trash.Discard(srcPath, intent.Identity)
		if err != nil {
			m.rollback(ctx, opID, stagingPath)
			// The snapshot move failed atomically; the source is intact.
			return nil, &OperationError{
				Kind:     KindCommitFailed,
				Op:       intent.Kind,
				Identity: intent.Identity,
				Message:  "failed to snapshot source tree",
				Cause:    err,
			}
		}
	}

	if err := os.Rename(stagingPath, dstPath); err != nil {
		if removeSource {
			if restoreErr := m.trash.Restore(trashPath, srcPath); restoreErr != nil {
				m.rollback(ctx, opID, stagingPath)
				return nil, &OperationError{
					Kind:         KindCommitFailed,
					Op:           intent.Kind,
					Identity:     intent.Identity,
					Message:      "commit rename failed and the source could not be restored",
					StateUnknown: true,
					Cause:        multierr.Combine(err, restoreErr),
				}
			}
		}
		m.rollback(ctx, opID, stagingPath)
		return nil, &OperationError{
			Kind:     KindCommitFailed,
			Op:       intent.Kind,
			Identity: intent.Identity,
			Message:  "commit rename failed",
			Cause:    err,
		}
	}

	m.commit(ctx, opID)
	return &Result{
		OperationID:    opID,
		Kind:           intent.Kind,
		Identity:       intent.Identity,
		TargetIdentity: intent.TargetIdentity,
		Path:           dstPath,
		TrashPath:      trashPath,
	}, nil
}

// performDelete moves the live tree into the trash. Permanent removal is
// deferred to trash retention, which keeps the operation rollback-capable
// until the retention window expires.
func (m *Manager) performDelete(ctx context.Context, intent *Intent) (*Result, error) {
	livePath, err := m.policy.CanonicalRoot(intent.Identity)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(livePath); err != nil {
		return nil, m.stagingFailed(intent, "website does not exist", err)
	}

	opID := uuid.NewString()
	if err := m.begin(ctx, opID, intent, ""); err != nil {
		return nil, err
	}

	trashPath, err := m.trash.Discard(livePath, intent.Identity)
	if err != nil {
		m.rollback(ctx, opID, "")
		return nil, m.stagingFailed(intent, "failed to move website to trash", err)
	}

	m.commit(ctx, opID)
	return &Result{
		OperationID: opID,
		Kind:        intent.Kind,
		Identity:    intent.Identity,
		TrashPath:   trashPath,
	}, nil
}

// performWriteConfig is the single-file variant of the protocol: the new
// configuration file is staged, verified, and committed over the live
// file with one rename.
func (m *Manager) performWriteConfig(ctx context.Context, intent *Intent) (*Result, error) {
	root, err := m.policy.CanonicalRoot(intent.Identity)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, m.stagingFailed(intent, "website does not exist", err)
	}
	if intent.Stage == nil {
		return nil, m.stagingFailed(intent, "configuration write requires a staging function", nil)
	}

	opID := uuid.NewString()
	stagingFile := m.policy.StagingPath(intent.Identity, "config-"+opID)
	if err := m.begin(ctx, opID, intent, stagingFile); err != nil {
		return nil, err
	}

	if err := intent.Stage(ctx, stagingFile); err != nil {
		m.rollback(ctx, opID, stagingFile)
		return nil, m.stagingFailed(intent, "staging failed", err)
	}
	if intent.Verify != nil {
		if err := intent.Verify(ctx, stagingFile); err != nil {
			m.rollback(ctx, opID, stagingFile)
			return nil, m.stagingFailed(intent, "staged configuration failed verification", err)
		}
	}

	configPath := m.policy.ConfigFile(root)
	if err := os.Rename(stagingFile, configPath); err != nil {
		m.rollback(ctx, opID, stagingFile)
		// Rename is atomic: the previous configuration file is intact.
		return nil, &OperationError{
			Kind:     KindCommitFailed,
			Op:       intent.Kind,
			Identity: intent.Identity,
			Message:  "commit rename failed",
			Cause:    err,
		}
	}

	m.commit(ctx, opID)
	return &Result{
		OperationID: opID,
		Kind:        intent.Kind,
		Identity:    intent.Identity,
		Path:        configPath,
	}, nil
}

// Recover discards staging left behind by interrupted runs and marks
// their journal entries rolled back. It must run before the manager
// accepts operations.
func (m *Manager) Recover(ctx context.Context) error {
	pending, err := m.journal.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending journal entries: %w", err)
	}

	for _, entry := range pending {
		if entry.StagingPath != "" && strings.HasPrefix(entry.StagingPath, m.policy.StagingRoot()+string(os.PathSeparator)) {
			if err := os.RemoveAll(entry.StagingPath); err != nil {
				m.logger.Warn("failed to discard abandoned staging",
					"path", entry.StagingPath,
					"error", err,
				)
			}
		}
		if err := m.journal.MarkRolledBack(ctx, entry.ID); err != nil {
			m.logger.Warn("failed to roll back journal entry",
				"id", entry.ID,
				"error", err,
			)
		}
		m.logger.Info("recovered interrupted operation",
			"id", entry.ID,
			"op", entry.Operation,
			"identity", entry.Identity,
		)
	}

	// Anything else in the staging root is an orphan from a run without a
	// usable journal.
	entries, err := os.ReadDir(m.policy.StagingRoot())
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(m.policy.StagingRoot(), entry.Name())
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("failed to discard orphaned staging",
				"path", path,
				"error", err,
			)
		}
	}
	return nil
}

// begin journals a new pending operation.
func (m *Manager) begin(ctx context.Context, opID string, intent *Intent, stagingPath string) error {
	if err := os.MkdirAll(m.policy.StagingRoot(), 0o755); err != nil {
		return m.stagingFailed(intent, "failed to create staging root", err)
	}
	err := m.journal.Begin(ctx, &journal.Entry{
		ID:             opID,
		Operation:      string(intent.Kind),
		Identity:       intent.Identity,
		TargetIdentity: intent.TargetIdentity,
		StagingPath:    stagingPath,
		StartedAt:      time.Now(),
	})
	if err != nil {
		return m.stagingFailed(intent, "failed to journal operation", err)
	}
	return nil
}

// rollback discards a staging location and marks the journal entry rolled
// back. Journal failures are logged, not surfaced: the filesystem state
// is already consistent.
func (m *Manager) rollback(ctx context.Context, opID, stagingPath string) {
	if stagingPath != "" {
		if err := os.RemoveAll(stagingPath); err != nil {
			m.logger.Warn("failed to discard staging",
				"path", stagingPath,
				"error", err,
			)
		}
	}
	if err := m.journal.MarkRolledBack(ctx, opID); err != nil {
		m.logger.Warn("failed to mark journal entry rolled back",
			"id", opID,
			"error", err,
		)
	}
}

// commit marks the journal entry committed. A journal failure after a
// successful commit is logged, not surfaced.
func (m *Manager) commit(ctx context.Context, opID string) {
	if err := m.journal.MarkCommitted(ctx, opID); err != nil {
		m.logger.Warn("failed to mark journal entry committed",
			"id", opID,
			"error", err,
		)
	}
}

func (m *Manager) stagingFailed(intent *Intent, message string, cause error) error {
	return &OperationError{
		Kind:     KindStagingFailed,
		Op:       intent.Kind,
		Identity: intent.Identity,
		Message:  message,
		Cause:    cause,
	}
}
