package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
)

// ResolutionCache memoizes resolved schemas keyed by root document
// identity plus a modification fingerprint of the full fragment set.
//
// A cached entry is consulted only while its fingerprint still matches the
// on-disk fragment set; a fingerprint mismatch invalidates the entry. The
// cache is never invalidated by content alone, which avoids churn when
// files are rewritten without modification.
type ResolutionCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	fingerprint string
	resolved    *Resolved
}

// NewResolutionCache creates a new empty resolution cache.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Lookup returns the cached resolved schema for the given root ref if the
// entry exists and its fragment set is unchanged on disk.
func (c *ResolutionCache) Lookup(rootRef string) (*Resolved, bool) {
	c.mu.RLock()
	entry, ok := c.entries[rootRef]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	fingerprint, err := FingerprintFiles(entry.resolved.Fragments)
	if err != nil || fingerprint != entry.fingerprint {
		// The fragment set changed (or vanished); drop the stale entry.
		c.mu.Lock()
		if current, ok := c.entries[rootRef]; ok && current == entry {
			delete(c.entries, rootRef)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.resolved, true
}

// Store records a resolved schema under the given root ref and fingerprint.
// Storing is idempotent per fingerprint: concurrent misses computing the
// same entry overwrite each other with an identical value.
func (c *ResolutionCache) Store(rootRef, fingerprint string, resolved *Resolved) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rootRef] = &cacheEntry{
		fingerprint: fingerprint,
		resolved:    resolved,
	}
}

// Purge removes the entry for the given root ref, if present.
func (c *ResolutionCache) Purge(rootRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, rootRef)
}

// PurgeAll removes every cached entry.
func (c *ResolutionCache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len returns the number of cached entries.
func (c *ResolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// FingerprintFiles computes a modification fingerprint over the given file
// paths from each file's path, size, and modification time. Any stat
// failure fails the whole fingerprint, which callers treat as a mismatch.
func FingerprintFiles(paths []string) (string, error) {
	h := sha256.New()
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to fingerprint %q: %w", path, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", path, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
