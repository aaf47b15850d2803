package service

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

// ReloadFunc is run after a watched file was created or modified
type ReloadFunc func(ctx context.Context) error

const (
	reloadTimeout   = 30 * time.Second
	minReloadPeriod = time.Second
)

type fileWatcherService struct {
	watcher  outbound.FileWatcher
	logger   outbound.Logger
	handlers map[string]ReloadFunc // absolute path -> reload hook
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
}

func NewFileWatcherService(
	watcher outbound.FileWatcher,
	logger outbound.Logger,
) *fileWatcherService {
	ctx, cancel := context.WithCancel(context.Background())

	return &fileWatcherService{
		watcher:  watcher,
		logger:   logger,
		handlers: make(map[string]ReloadFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// begins processing watcher events
func (s *fileWatcherService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("File watcher service already running")
		return nil
	}

	go s.processEvents()

	s.running = true
	s.logger.Info("File watcher service started")
	return nil
}

func (s *fileWatcherService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	if err := s.watcher.Stop(); err != nil {
		s.logger.Error("Error stopping file watcher", "error", err)
		return err
	}

	s.running = false
	s.logger.Info("File watcher service stopped")
	return nil
}

// Watch registers onChange for filePath. Registering the same path twice keeps the first hook.
func (s *fileWatcherService) Watch(ctx context.Context, filePath string, onChange ReloadFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		s.logger.Error("Failed to get absolute path", "path", filePath, "error", err)
		return err
	}

	if _, ok := s.handlers[absPath]; ok {
		s.logger.Debug("Already watching file", "path", absPath)
		return nil
	}

	if err := s.watcher.Watch(ctx, absPath); err != nil {
		s.logger.Error("Failed to watch file", "path", absPath, "error", err)
		return err
	}

	s.handlers[absPath] = onChange
	s.logger.Info("Watching file", "path", absPath)
	return nil
}

func (s *fileWatcherService) IsWatching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running && s.watcher.IsWatching()
}

func (s *fileWatcherService) GetWatchedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]string, 0, len(s.handlers))
	for file := range s.handlers {
		files = append(files, file)
	}
	return files
}

func (s *fileWatcherService) processEvents() {
	// last reload per path
	lastSync := make(map[string]time.Time)

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			s.logger.Debug("Received file event", "path", event.FilePath, "type", event.EventType)
			s.handleEvent(event, lastSync)

		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			s.logger.Error("File watcher error", "error", err)
		}
	}
}

func (s *fileWatcherService) handleEvent(event outbound.FileChangeEvent, lastSync map[string]time.Time) {
	path, err := filepath.Abs(event.FilePath)
	if err != nil {
		path = event.FilePath
	}

	s.mu.RLock()
	onChange, ok := s.handlers[path]
	s.mu.RUnlock()
	if !ok {
		return
	}

	now := time.Now()
	if last, seen := lastSync[path]; seen && now.Sub(last) < minReloadPeriod {
		s.logger.Debug("Skipping file event due to rate limiting", "path", path)
		return
	}

	switch event.EventType {
	case "create", "modify":
		ctx, cancel := context.WithTimeout(s.ctx, reloadTimeout)
		defer cancel()

		if err := onChange(ctx); err != nil {
			s.logger.Error("Reload after file change failed", "path", path, "type", event.EventType, "error", err)
		} else {
			s.logger.Info("Reloaded after file change", "path", path)
		}
		lastSync[path] = now

	case "delete":
		s.logger.Warn("Watched file was deleted", "path", path)
	default:
		s.logger.Debug("Ignoring file event type", "type", event.EventType, "path", path)
	}
}

func (s *fileWatcherService) Cleanup() {
	if err := s.Stop(); err != nil {
		s.logger.Error("Error during cleanup", "error", err)
	}
}
