package ops

import (
	"sort"
	"sync"
)

// identityLocks is a registry of in-flight website identities. Acquisition
// is all-or-nothing and never blocks: an identity already held causes the
// whole acquisition to fail so the caller can surface AlreadyInProgress.
type identityLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{
		held: make(map[string]struct{}),
	}
}

// tryAcquire attempts to acquire every given identity. Identities are
// deduplicated and checked under one critical section, so two concurrent
// acquisitions can never deadlock or interleave partially.
func (l *identityLocks) tryAcquire(identities ...string) bool {
	unique := dedupe(identities)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range unique {
		if _, busy := l.held[id]; busy {
			return false
		}
	}
	for _, id := range unique {
		l.held[id] = struct{}{}
	}
	return true
}

// release releases every given identity.
func (l *identityLocks) release(identities ...string) {
	unique := dedupe(identities)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range unique {
		delete(l.held, id)
	}
}

func dedupe(identities []string) []string {
	seen := make(map[string]struct{}, len(identities))
	out := make([]string, 0, len(identities))
	for _, id := range identities {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
