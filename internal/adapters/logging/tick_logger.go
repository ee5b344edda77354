package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/andrescamacho/colonybot-go/internal/adapters/persistence"
	applogging "github.com/andrescamacho/colonybot-go/internal/application/logging"
	"github.com/andrescamacho/colonybot-go/internal/infrastructure/config"
)

// TickLogger implements logging.Logger. Entries go to a slog handler and,
// when a repository is attached, to the tick_logs table.
type TickLogger struct {
	out    *slog.Logger
	closer io.Closer

	repo  persistence.TickLogRepository
	runID string
	tick  atomic.Int64
}

// Option configures a TickLogger
type Option func(*TickLogger)

// WithRepository persists every entry under runID
func WithRepository(repo persistence.TickLogRepository, runID string) Option {
	return func(l *TickLogger) {
		l.repo = repo
		l.runID = runID
	}
}

// New builds a logger from the logging section of the configuration
func New(cfg config.LoggingConfig, opts ...Option) (*TickLogger, error) {
	var w io.Writer
	var closer io.Closer

	switch cfg.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	l := NewWithWriter(w, cfg, opts...)
	l.closer = closer
	return l, nil
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, opts ...Option) *TickLogger {
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	l := &TickLogger{out: slog.New(handler)}
	for _, opt := range opts {
		opt(l)
	}
	if l.runID != "" {
		l.out = l.out.With("run_id", l.runID)
	}
	return l
}

// SetTick stamps subsequent persisted entries with the tick number
func (l *TickLogger) SetTick(tick int64) {
	l.tick.Store(tick)
}

// Log writes one entry
func (l *TickLogger) Log(level, message string, metadata map[string]interface{}) {
	lvl := entryLevel(level)
	ctx := context.Background()
	if !l.out.Enabled(ctx, lvl) {
		return
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.Int64("tick", l.tick.Load()))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, metadata[k]))
	}
	l.out.LogAttrs(ctx, lvl, message, attrs...)

	if l.repo == nil {
		return
	}
	agentName, _ := metadata["agent"].(string)
	err := l.repo.Log(ctx, persistence.TickLogEntry{
		RunID:     l.runID,
		AgentName: agentName,
		Tick:      l.tick.Load(),
		Level:     strings.ToUpper(level),
		Message:   message,
		Metadata:  metadata,
	})
	if err != nil {
		l.out.Warn("failed to persist log entry", "error", err)
	}
}

// Close releases the log file, if any
func (l *TickLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// entryLevel maps the application's level names onto slog levels
func entryLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case applogging.LevelDebug:
		return slog.LevelDebug
	case applogging.LevelWarning, "WARN":
		return slog.LevelWarn
	case applogging.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogLevel maps the configured minimum level
func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var _ applogging.Logger = (*TickLogger)(nil)
