package schema

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FragmentWatcherConfig contains configuration for the fragment watcher.
type FragmentWatcherConfig struct {
	// Path is the schema directory to watch.
	Path string

	// DebounceInterval is the time to wait after the last detected change
	// before purging the cache (default: 100ms).
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to watch.
	Extensions []string
}

// DefaultFragmentWatcherConfig returns the default watcher configuration.
func DefaultFragmentWatcherConfig() *FragmentWatcherConfig {
	return &FragmentWatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".json"},
	}
}

// FragmentWatcher watches the schema fragment directory and purges the
// resolution cache when fragment files change. It debounces rapid event
// bursts so an editor save or a directory sync triggers one purge, not one
// per file.
type FragmentWatcher struct {
	watcher  *fsnotify.Watcher
	cache    *ResolutionCache
	config   *FragmentWatcherConfig
	logger   *slog.Logger
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFragmentWatcher creates a new fragment watcher purging the given
// cache.
func NewFragmentWatcher(cache *ResolutionCache, config *FragmentWatcherConfig) (*FragmentWatcher, error) {
	if config == nil {
		config = DefaultFragmentWatcherConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FragmentWatcher{
		watcher:  watcher,
		cache:    cache,
		config:   config,
		logger:   slog.Default().With("component", "schema.watcher"),
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for fragment changes. This is a blocking operation
// that runs until the context is cancelled or Stop is called.
func (fw *FragmentWatcher) Watch(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	if err := fw.addDirectory(fw.config.Path); err != nil {
		return fmt.Errorf("failed to watch schema directory: %w", err)
	}

	fw.logger.Info("fragment watcher started",
		"path", fw.config.Path,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("fragment watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("fragment watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.debounce.trigger(func() {
				fw.logger.Info("schema fragments changed, purging resolution cache",
					"path", event.Name,
					"op", event.Op.String(),
				)
				fw.cache.PurgeAll()
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("fragment watcher error", "error", err)
			// Keep watching despite errors.
		}
	}
}

// Stop stops the fragment watcher.
func (fw *FragmentWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	fw.debounce.stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FragmentWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
		}
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a cache purge.
func (fw *FragmentWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// debouncer collects rapid events and runs the callback only after a quiet
// period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger schedules the callback after the debounce interval, replacing
// any pending callback.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
