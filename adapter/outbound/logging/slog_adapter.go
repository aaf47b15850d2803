package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bantuankita/bantuankita/config"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// represents a single log entry to be processed asynchronously
type LogMessage struct {
	Level LogLevel
	Msg   string
	Args  []any
	Time  time.Time
}

// implements the Logger interface using Go's structured logging (slog)
// with asynchronous processing to avoid blocking request handlers
type SlogAdapter struct {
	logger    *slog.Logger
	config    *config.Config
	mu        sync.Mutex // guards config writes
	logChan   chan LogMessage
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	slogLevel *slog.LevelVar
	dropped   atomic.Uint64
	closer    io.Closer
}

var _ outbound.Logger = (*SlogAdapter)(nil)

// NewSlogAdapter writes to the output named by cfg.Logging.Output:
// "stdout" (default), "stderr" or "file" (cfg.Logging.FilePath).
func NewSlogAdapter(cfg *config.Config) *SlogAdapter {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)

	switch strings.ToLower(cfg.Logging.Output) {
	case "stderr":
		out = os.Stderr
	case "file":
		if f, err := os.OpenFile(cfg.Logging.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640); err == nil {
			out, closer = f, f
		} else {
			fmt.Fprintf(os.Stderr, "log file %s unavailable, using stdout: %v\n", cfg.Logging.FilePath, err)
		}
	}

	adapter := newSlogAdapter(cfg, out)
	adapter.closer = closer
	return adapter
}

func newSlogAdapter(cfg *config.Config, out io.Writer) *SlogAdapter {
	ctx, cancel := context.WithCancel(context.Background())

	levelVar := &slog.LevelVar{}
	levelVar.Set(parseSlogLevel(cfg.General.LogLevel))

	handlerOpts := &slog.HandlerOptions{
		Level: levelVar,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	size := cfg.Logging.ChannelSize
	if size <= 0 {
		size = 1000
	}

	adapter := &SlogAdapter{
		logger:    slog.New(handler).With("service", "bantuankita"),
		config:    cfg,
		logChan:   make(chan LogMessage, size),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		slogLevel: levelVar,
	}

	go adapter.processLogs()

	return adapter
}

// UpdateLevel changes the level at runtime and mirrors it into the config
func (s *SlogAdapter) UpdateLevel(logLvl string) error {
	normalizedLevel := strings.ToLower(strings.TrimSpace(logLvl))
	if !isValidLevel(normalizedLevel) {
		return fmt.Errorf("invalid log level: %q", logLvl)
	}

	s.mu.Lock()
	s.config.General.LogLevel = normalizedLevel
	s.config.Logging.Level = strings.ToUpper(normalizedLevel)
	s.mu.Unlock()

	s.slogLevel.Set(parseSlogLevel(normalizedLevel))

	s.Info("Logger level updated dynamically", "new_level", normalizedLevel)
	return nil
}

// Level returns the current level in lower case
func (s *SlogAdapter) Level() string {
	return strings.ToLower(s.slogLevel.Level().String())
}

// Dropped counts entries discarded because the buffer was full
func (s *SlogAdapter) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *SlogAdapter) processLogs() {
	defer close(s.done)

	for {
		select {
		case msg := <-s.logChan:
			s.writeLog(msg)
		case <-s.ctx.Done():
			for {
				select {
				case msg := <-s.logChan:
					s.writeLog(msg)
				default:
					return
				}
			}
		}
	}
}

func isValidLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// converts string level to slog.Level; unknown levels fall back to info
func parseSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogAdapter) writeLog(msg LogMessage) {
	r := slog.NewRecord(msg.Time, msg.Level.slogLevel(), msg.Msg, 0)
	r.Add(msg.Args...)
	if s.logger.Enabled(context.Background(), r.Level) {
		_ = s.logger.Handler().Handle(context.Background(), r)
	}
}

func (s *SlogAdapter) sendLog(level LogLevel, msg string, args ...any) {
	if s.ctx.Err() != nil {
		s.dropped.Add(1)
		return
	}

	select {
	case s.logChan <- LogMessage{
		Level: level,
		Msg:   msg,
		Args:  args,
		Time:  time.Now(),
	}:
	default:
		s.dropped.Add(1)
	}
}

func (s *SlogAdapter) shouldLog(level LogLevel) bool {
	return level.slogLevel() >= s.slogLevel.Level()
}

func (s *SlogAdapter) Error(msg string, args ...any) {
	if !s.shouldLog(LevelError) {
		return
	}
	s.sendLog(LevelError, msg, args...)
}

func (s *SlogAdapter) Warn(msg string, args ...any) {
	if !s.shouldLog(LevelWarn) {
		return
	}
	s.sendLog(LevelWarn, msg, args...)
}

func (s *SlogAdapter) Info(msg string, args ...any) {
	if !s.shouldLog(LevelInfo) {
		return
	}
	s.sendLog(LevelInfo, msg, args...)
}

func (s *SlogAdapter) Debug(msg string, args ...any) {
	if !s.shouldLog(LevelDebug) {
		return
	}
	s.sendLog(LevelDebug, msg, args...)
}

// Shutdown flushes queued entries. Later calls are no-ops.
func (s *SlogAdapter) Shutdown() {
	s.cancel()
	<-s.done
	if s.closer != nil {
		s.closer.Close()
		s.closer = nil
	}
}
