package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryJournal is an in-memory Journal implementation for tests and for
// running without a journal file.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryJournal creates a new empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		entries: make(map[string]*Entry),
	}
}

// Begin records a new pending entry.
func (j *MemoryJournal) Begin(_ context.Context, entry *Entry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("journal entry must have an ID")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, exists := j.entries[entry.ID]; exists {
		return fmt.Errorf("journal entry %q already exists", entry.ID)
	}

	stored := *entry
	stored.State = StatePending
	if stored.StartedAt.IsZero() {
		stored.StartedAt = time.Now()
	}
	j.entries[entry.ID] = &stored
	return nil
}

// MarkCommitted transitions a pending entry to committed.
func (j *MemoryJournal) MarkCommitted(_ context.Context, id string) error {
	return j.finish(id, StateCommitted)
}

// MarkRolledBack transitions a pending entry to rolled back.
func (j *MemoryJournal) MarkRolledBack(_ context.Context, id string) error {
	return j.finish(id, StateRolledBack)
}

func (j *MemoryJournal) finish(id string, state EntryState) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, ok := j.entries[id]
	if !ok {
		return fmt.Errorf("journal entry %q not found", id)
	}
	if entry.State != StatePending {
		return fmt.Errorf("journal entry %q is %s, not pending", id, entry.State)
	}

	entry.State = state
	entry.FinishedAt = time.Now()
	return nil
}

// Pending returns all entries still pending, oldest first.
func (j *MemoryJournal) Pending(_ context.Context) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var pending []*Entry
	for _, entry := range j.entries {
		if entry.State == StatePending {
			copied := *entry
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, k int) bool {
		return pending[i].StartedAt.Before(pending[k].StartedAt)
	})
	return pending, nil
}

// Close releases journal resources. It is a no-op for the memory journal.
func (j *MemoryJournal) Close() error {
	return nil
}
