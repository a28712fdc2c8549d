package trash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func makeTree(t *testing.T, root string) string {
	t.Helper()
	live := filepath.Join(root, "my-site")
	if err := os.MkdirAll(filepath.Join(live, "sources"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(live, "site.json"), []byte(`{"title": "t"}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return live
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Error("NewStore(\"\") error = nil, want error")
	}
}

func TestStore_DiscardAndRestore(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	live := makeTree(t, base)

	trashPath, err := store.Discard(live, "my-site")
	if err != nil {
		t.Fatalf("Discard() error = %v, want nil", err)
	}

	if _, statErr := os.Stat(live); !os.IsNotExist(statErr) {
		t.Error("live tree still present after Discard()")
	}
	if !strings.HasPrefix(filepath.Base(trashPath), "my-site-") {
		t.Errorf("trash entry name = %q, want \"my-site-<uuid>\"", filepath.Base(trashPath))
	}
	if _, statErr := os.Stat(filepath.Join(trashPath, "site.json")); statErr != nil {
		t.Errorf("trash entry missing site.json: %v", statErr)
	}

	if err := store.Restore(trashPath, live); err != nil {
		t.Fatalf("Restore() error = %v, want nil", err)
	}
	if _, statErr := os.Stat(filepath.Join(live, "site.json")); statErr != nil {
		t.Errorf("restored tree missing site.json: %v", statErr)
	}
}

func TestStore_Discard_RepeatedIdentity(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	first, err := store.Discard(makeTree(t, base), "my-site")
	if err != nil {
		t.Fatalf("first Discard() error = %v", err)
	}
	second, err := store.Discard(makeTree(t, base), "my-site")
	if err != nil {
		t.Fatalf("second Discard() error = %v", err)
	}
	if first == second {
		t.Error("repeated Discard() of the same identity collided")
	}
}

func TestStore_Discard_MissingSource(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "trash"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Discard(filepath.Join(t.TempDir(), "ghost"), "ghost"); err == nil {
		t.Error("Discard() of missing tree error = nil, want error")
	}
}

func TestStore_Purge(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	oldEntry, err := store.Discard(makeTree(t, base), "old-site")
	if err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	freshEntry, err := store.Discard(makeTree(t, base), "fresh-site")
	if err != nil {
		t.Fatalf("Discard() error = %v", err)
	}

	// Age the first entry past the retention window.
	aged := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldEntry, aged, aged); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	removed, err := store.Purge(24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge() error = %v, want nil", err)
	}
	if removed != 1 {
		t.Errorf("Purge() removed = %d, want 1", removed)
	}
	if _, statErr := os.Stat(oldEntry); !os.IsNotExist(statErr) {
		t.Error("aged entry still present after Purge()")
	}
	if _, statErr := os.Stat(freshEntry); statErr != nil {
		t.Errorf("fresh entry removed by Purge(): %v", statErr)
	}
}

func TestStore_Purge_SkipsHiddenEntries(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	hidden := filepath.Join(store.Root(), ".keep")
	if err := os.WriteFile(hidden, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	aged := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(hidden, aged, aged); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	removed, err := store.Purge(24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("Purge() removed = %d, want 0", removed)
	}
	if _, statErr := os.Stat(hidden); statErr != nil {
		t.Errorf("hidden entry removed by Purge(): %v", statErr)
	}
}
