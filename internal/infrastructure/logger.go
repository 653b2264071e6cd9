package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"contractreport/internal/config"
)

// traceKey carries the per-request trace ID that log records are tagged with
type traceKey struct{}

// logState is the process-wide logger and the log file it may own
type logState struct {
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

var global logState

// InitializeLogger builds the process logger on first call and installs it as
// slog's default. Later calls return the same logger and ignore cfg.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.logger != nil {
		return global.logger, nil
	}

	logger, file, err := buildLogger(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	global.logger = logger
	global.file = file
	slog.SetDefault(logger)
	return logger, nil
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger has run
func GetLogger() *slog.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.logger == nil {
		return slog.Default()
	}
	return global.logger
}

// NewLogger builds a standalone logger. Console output goes to stdout, which
// lets the CLI keep report output on stdout and logs on stderr. A log file
// opened for "file" or "both" output stays open for the process lifetime.
func NewLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, error) {
	logger, _, err := buildLogger(cfg, stdout)
	return logger, err
}

func buildLogger(cfg config.LoggingConfig, stdout io.Writer) (*slog.Logger, *os.File, error) {
	var (
		output io.Writer = stdout
		file   *os.File
	)

	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		output = f
		if strings.EqualFold(cfg.Output, "both") {
			output = io.MultiWriter(stdout, f)
		}
	}

	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       parseLogLevel(cfg.Level),
		ReplaceAttr: shortSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	logger := slog.New(&traceHandler{Handler: handler}).With(
		slog.String("service", ServiceName),
		slog.String("version", config.AppVersion),
	)
	return logger, file, nil
}

// shortSource logs the source location as dir/file.go:line
func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	file := filepath.Join(filepath.Base(filepath.Dir(src.File)), filepath.Base(src.File))
	return slog.String(slog.SourceKey, file+":"+strconv.Itoa(src.Line))
}

// traceHandler tags records with the request trace ID, falling back to the
// active span's trace ID
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceIDFromContext(ctx)
	}
	if traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps a configured level name to slog. Unknown names log at info.
func parseLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID stores the request trace ID in ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// GetTraceID returns the request trace ID stored in ctx, if any
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceKey{}).(string); ok {
		return traceID
	}
	return ""
}

// CloseLogFile closes the log file owned by the process logger
func CloseLogFile() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	return err
}

// ResetLoggerForTesting drops the process logger so a test can initialize
// a new one
func ResetLoggerForTesting() {
	CloseLogFile()
	global.mu.Lock()
	global.logger = nil
	global.mu.Unlock()
}

func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
