package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// DefaultDebounce coalesces the burst of writes an atomic file replace produces
const DefaultDebounce = 2 * time.Second

type FsWatcher struct {
	watcher      *fsnotify.Watcher
	events       chan outbound.FileChangeEvent
	errors       chan error
	writeEvents  chan fsnotify.Event
	debounce     time.Duration
	debouncer    map[string]*time.Timer
	watchedDirs  map[string]bool
	watchedFiles map[string]bool
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	stopped      bool
	wg           sync.WaitGroup
}

// NewFSWatcher reports changes to registered files only. A zero debounce
// uses DefaultDebounce.
func NewFSWatcher(debounce time.Duration) (*FsWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsWatcher{
		watcher:      fsWatcher,
		events:       make(chan outbound.FileChangeEvent, 100),
		errors:       make(chan error, 10),
		writeEvents:  make(chan fsnotify.Event, 100),
		debounce:     debounce,
		debouncer:    make(map[string]*time.Timer),
		watchedDirs:  make(map[string]bool),
		watchedFiles: make(map[string]bool),
		ctx:          ctx,
		cancel:       cancel,
	}

	fw.wg.Add(2)
	go fw.filterEvents()
	go fw.processEvents()

	return fw, nil
}

var _ outbound.FileWatcher = (*FsWatcher)(nil)

// Watch registers a file. Its parent directory is watched so that atomic
// replaces (write temp, rename) are still seen.
func (fw *FsWatcher) Watch(ctx context.Context, path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("file watcher stopped")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if !fw.watchedDirs[dir] {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.watchedDirs[dir] = true
	}

	fw.watchedFiles[absPath] = true
	fw.running = true

	return nil
}

func (fw *FsWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	fw.running = false

	fw.cancel()
	fw.cleanupDebouncers()
	fw.mu.Unlock()

	err := fw.watcher.Close()

	fw.wg.Wait()
	close(fw.events)
	close(fw.errors)

	if err != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", err)
	}
	return nil
}

func (fw *FsWatcher) Events() <-chan outbound.FileChangeEvent {
	return fw.events
}

func (fw *FsWatcher) Errors() <-chan error {
	return fw.errors
}

func (fw *FsWatcher) IsWatching() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

// GetWatchedPaths returns the registered files
func (fw *FsWatcher) GetWatchedPaths() []string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()

	paths := make([]string, 0, len(fw.watchedFiles))
	for path := range fw.watchedFiles {
		paths = append(paths, path)
	}
	return paths
}

func (fw *FsWatcher) isWatched(name string) bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.watchedFiles[filepath.Clean(name)]
}

// filterEvents drops events for unregistered files and debounces the rest
func (fw *FsWatcher) filterEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if convertEvent(event) == nil || !fw.isWatched(event.Name) {
				continue
			}
			fw.debounceEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.ctx.Done():
				return
			}
		}
	}
}

func (fw *FsWatcher) processEvents() {
	defer fw.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event := <-fw.writeEvents:
			changeEvent := convertEvent(event)
			if changeEvent == nil {
				continue
			}
			select {
			case fw.events <- *changeEvent:
			case <-fw.ctx.Done():
				return
			}

		case <-ticker.C:
			fw.cleanupExpiredDebouncers()
		}
	}
}

// debounceEvent keeps the latest event per file and emits it once the file
// has been quiet for the debounce period
func (fw *FsWatcher) debounceEvent(event fsnotify.Event) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return
	}

	if timer, exists := fw.debouncer[event.Name]; exists {
		timer.Stop()
	}

	fw.debouncer[event.Name] = time.AfterFunc(fw.debounce, func() {
		select {
		case fw.writeEvents <- event:
		case <-fw.ctx.Done():
		}

		fw.mu.Lock()
		delete(fw.debouncer, event.Name)
		fw.mu.Unlock()
	})
}

// caller holds fw.mu
func (fw *FsWatcher) cleanupDebouncers() {
	for _, timer := range fw.debouncer {
		timer.Stop()
	}
	fw.debouncer = make(map[string]*time.Timer)
}

func (fw *FsWatcher) cleanupExpiredDebouncers() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if len(fw.debouncer) > 100 {
		fw.cleanupDebouncers()
	}
}

// convertEvent maps fsnotify operations; chmod-only events yield nil
func convertEvent(event fsnotify.Event) *outbound.FileChangeEvent {
	var eventType string

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eventType = "delete"
	case event.Has(fsnotify.Create):
		eventType = "create"
	case event.Has(fsnotify.Write):
		eventType = "modify"
	default:
		return nil
	}

	return &outbound.FileChangeEvent{
		FilePath:  event.Name,
		EventType: eventType,
	}
}
