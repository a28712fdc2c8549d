package trash

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store manages the trash directory. Entries are named
// "<identity>-<uuid>" so repeated deletions of the same identity never
// collide.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a trash store rooted at the given directory, creating
// it if necessary.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("trash root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trash directory %q: %w", root, err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize trash root %q: %w", root, err)
	}

	return &Store{
		root:   absRoot,
		logger: slog.Default().With("component", "website.trash"),
	}, nil
}

// Root returns the canonical trash directory.
func (s *Store) Root() string {
	return s.root
}

// Discard moves the tree at livePath into the trash and returns the trash
// location. The move is a single rename; on failure the live tree is left
// untouched.
func (s *Store) Discard(livePath, identity string) (string, error) {
	trashPath := filepath.Join(s.root, fmt.Sprintf("%s-%s", identity, uuid.NewString()))
	if err := os.Rename(livePath, trashPath); err != nil {
		return "", fmt.Errorf("failed to move %q to trash: %w", livePath, err)
	}

	s.logger.Debug("tree moved to trash",
		"identity", identity,
		"trash_path", trashPath,
	)
	return trashPath, nil
}

// Restore moves a trash entry back to its live location.
func (s *Store) Restore(trashPath, livePath string) error {
	if err := os.Rename(trashPath, livePath); err != nil {
		return fmt.Errorf("failed to restore %q from trash: %w", livePath, err)
	}
	return nil
}

// Purge permanently removes trash entries whose last modification is older
// than the given age. It returns the number of entries removed. Removal
// continues past individual failures; the first error is reported after
// the sweep.
func (s *Store) Purge(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read trash directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var firstErr error

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("trash purged",
			"removed", removed,
			"older_than", olderThan.String(),
		)
	}
	return removed, firstErr
}
