package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig contains configuration for the SQLite journal backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite journal configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/journal.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS operations (
	id              TEXT PRIMARY KEY,
	operation       TEXT NOT NULL,
	identity        TEXT NOT NULL,
	target_identity TEXT NOT NULL DEFAULT '',
	staging_path    TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL,
	started_at      INTEGER NOT NULL,
	finished_at     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_operations_state ON operations(state);
`

// SQLiteJournal implements the Journal interface using SQLite.
type SQLiteJournal struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteJournal creates a new SQLite journal backend. It initializes
// the database schema and enables WAL mode if configured.
func NewSQLiteJournal(config *SQLiteConfig) (*SQLiteJournal, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	j := &SQLiteJournal{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "website.journal.sqlite"),
	}

	if config.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout.Milliseconds())); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if config.WALMode {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return j, nil
}

// Begin records a new pending entry.
func (j *SQLiteJournal) Begin(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("journal entry must have an ID")
	}

	startedAt := entry.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO operations (id, operation, identity, target_identity, staging_path, state, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Operation, entry.Identity, entry.TargetIdentity,
		entry.StagingPath, string(StatePending), startedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to journal operation %q: %w", entry.ID, err)
	}
	return nil
}

// MarkCommitted transitions a pending entry to committed.
func (j *SQLiteJournal) MarkCommitted(ctx context.Context, id string) error {
	return j.finish(ctx, id, StateCommitted)
}

// MarkRolledBack transitions a pending entry to rolled back.
func (j *SQLiteJournal) MarkRolledBack(ctx context.Context, id string) error {
	return j.finish(ctx, id, StateRolledBack)
}

func (j *SQLiteJournal) finish(ctx context.Context, id string, state EntryState) error {
	result, err := j.db.ExecContext(ctx,
		`UPDATE operations SET state = ?, finished_at = ? WHERE id = ? AND state = ?`,
		string(state), time.Now().UnixNano(), id, string(StatePending),
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %q: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update journal entry %q: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("journal entry %q is not pending", id)
	}
	return nil
}

// Pending returns all entries still pending, oldest first.
func (j *SQLiteJournal) Pending(ctx context.Context) ([]*Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, operation, identity, target_identity, staging_path, state, started_at, finished_at
		 FROM operations WHERE state = ? ORDER BY started_at ASC`,
		string(StatePending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending journal entries: %w", err)
	}
	defer rows.Close()

	var pending []*Entry
	for rows.Next() {
		var entry Entry
		var state string
		var startedAt, finishedAt int64
		if err := rows.Scan(&entry.ID, &entry.Operation, &entry.Identity,
			&entry.TargetIdentity, &entry.StagingPath, &state, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.State = EntryState(state)
		entry.StartedAt = time.Unix(0, startedAt)
		if finishedAt > 0 {
			entry.FinishedAt = time.Unix(0, finishedAt)
		}
		pending = append(pending, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending journal entries: %w", err)
	}
	return pending, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
