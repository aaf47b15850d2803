package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type fakeFileWatcher struct {
	mu      sync.Mutex
	events  chan outbound.FileChangeEvent
	errors  chan error
	paths   []string
	stopped bool
}

func newFakeFileWatcher() *fakeFileWatcher {
	return &fakeFileWatcher{
		events: make(chan outbound.FileChangeEvent, 10),
		errors: make(chan error, 10),
	}
}

func (w *fakeFileWatcher) Watch(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, path)
	return nil
}

func (w *fakeFileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	return nil
}

func (w *fakeFileWatcher) Events() <-chan outbound.FileChangeEvent { return w.events }
func (w *fakeFileWatcher) Errors() <-chan error                     { return w.errors }
func (w *fakeFileWatcher) IsWatching() bool                         { return true }
func (w *fakeFileWatcher) GetWatchedPaths() []string                { return w.paths }

func TestFileWatcherService_ReloadsOnModify(t *testing.T) {
	watcher := newFakeFileWatcher()
	svc := NewFileWatcherService(watcher, nopLogger{})

	var reloads atomic.Int32
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, svc.Watch(context.Background(), path, func(ctx context.Context) error {
		reloads.Add(1)
		return nil
	}))
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Cleanup()

	assert.True(t, svc.IsWatching())
	assert.Equal(t, []string{path}, svc.GetWatchedFiles())

	watcher.events <- outbound.FileChangeEvent{FilePath: path, EventType: "modify"}
	assert.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 10*time.Millisecond)

	// a burst inside the rate-limit window is collapsed
	watcher.events <- outbound.FileChangeEvent{FilePath: path, EventType: "modify"}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestFileWatcherService_IgnoresUnknownPathsAndDeletes(t *testing.T) {
	watcher := newFakeFileWatcher()
	svc := NewFileWatcherService(watcher, nopLogger{})

	var reloads atomic.Int32
	path := filepath.Join(t.TempDir(), "store.db")
	require.NoError(t, svc.Watch(context.Background(), path, func(ctx context.Context) error {
		reloads.Add(1)
		return nil
	}))
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Cleanup()

	watcher.events <- outbound.FileChangeEvent{FilePath: "/elsewhere/other.db", EventType: "modify"}
	watcher.events <- outbound.FileChangeEvent{FilePath: path, EventType: "delete"}
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, reloads.Load())
}

func TestFileWatcherService_WatchTwiceKeepsFirst(t *testing.T) {
	watcher := newFakeFileWatcher()
	svc := NewFileWatcherService(watcher, nopLogger{})
	path := filepath.Join(t.TempDir(), "config.yaml")

	noop := func(ctx context.Context) error { return nil }
	require.NoError(t, svc.Watch(context.Background(), path, noop))
	require.NoError(t, svc.Watch(context.Background(), path, noop))

	assert.Len(t, watcher.paths, 1)
}

func TestFileWatcherService_StopStopsWatcher(t *testing.T) {
	watcher := newFakeFileWatcher()
	svc := NewFileWatcherService(watcher, nopLogger{})

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Stop())

	assert.True(t, watcher.stopped)
	assert.False(t, svc.IsWatching())
}
