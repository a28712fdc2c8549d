package schema

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFragmentWatcher_PurgesCacheOnChange(t *testing.T) {
	dir := t.TempDir()
	frag := writeDoc(t, dir, "site.json", `{"type": "object"}`)

	cache := NewResolutionCache()
	fingerprint, err := FingerprintFiles([]string{frag})
	if err != nil {
		t.Fatalf("FingerprintFiles() error = %v", err)
	}
	cache.Store(frag, fingerprint, &Resolved{RootRef: frag, Fragments: []string{frag}})

	watcher, err := NewFragmentWatcher(cache, &FragmentWatcherConfig{
		Path:             dir,
		DebounceInterval: 20 * time.Millisecond,
		Extensions:       []string{".json"},
	})
	if err != nil {
		t.Fatalf("NewFragmentWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Watch(ctx)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)

	writeDoc(t, dir, "site.json", `{"type": "object", "properties": {"x": {"type": "string"}}}`)

	deadline := time.Now().Add(5 * time.Second)
	for cache.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if cache.Len() != 0 {
		t.Error("cache not purged after fragment change")
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
	if err := <-watchErr; err != nil {
		t.Errorf("Watch() error = %v, want nil", err)
	}
}

func TestFragmentWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	frag := writeDoc(t, dir, "site.json", `{"type": "object"}`)

	cache := NewResolutionCache()
	fingerprint, err := FingerprintFiles([]string{frag})
	if err != nil {
		t.Fatalf("FingerprintFiles() error = %v", err)
	}
	cache.Store(frag, fingerprint, &Resolved{RootRef: frag, Fragments: []string{frag}})

	watcher, err := NewFragmentWatcher(cache, &FragmentWatcherConfig{
		Path:             dir,
		DebounceInterval: 20 * time.Millisecond,
		Extensions:       []string{".json"},
	})
	if err != nil {
		t.Fatalf("NewFragmentWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)
	defer watcher.Stop()

	time.Sleep(200 * time.Millisecond)
	writeDoc(t, dir, "notes.txt", "unrelated")
	time.Sleep(300 * time.Millisecond)

	if cache.Len() != 1 {
		t.Error("cache purged by a non-schema file change")
	}
}

func TestFragmentWatcher_DoubleWatchRejected(t *testing.T) {
	watcher, err := NewFragmentWatcher(NewResolutionCache(), &FragmentWatcherConfig{
		Path:             t.TempDir(),
		DebounceInterval: 20 * time.Millisecond,
		Extensions:       []string{".json"},
	})
	if err != nil {
		t.Fatalf("NewFragmentWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx)
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := watcher.Watch(ctx); err == nil {
		t.Error("second Watch() error = nil, want already-running error")
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times for one burst, want 1", got)
	}
}
