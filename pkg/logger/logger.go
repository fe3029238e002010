// Package logger provides slog-based structured logging.
//
// Core features:
//   - Init() configures the default logger (JSON/Text)
//   - FromContext() context-aware logging
//   - package-level helpers (Info/Error/Warn/Debug/Fatal)
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// defaultLogger uses atomic.Pointer so Init can swap it concurrently.
var defaultLogger atomic.Pointer[slog.Logger]

var (
	logFile   *os.File
	logFileMu sync.Mutex
)

func init() { defaultLogger.Store(newLogger(false)) }

func getLogger() *slog.Logger { return defaultLogger.Load() }

func storeLogger(l *slog.Logger) {
	defaultLogger.Store(l)
	slog.SetDefault(l)
}

// replaceTimeAttr formats the slog timestamp as a readable local string.
func replaceTimeAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
		}
	}
	return a
}

func newLogger(development bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   development,
		ReplaceAttr: replaceTimeAttr,
	}
	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// Init configures logging. env: "development"/"dev" or "production" (default).
func Init(env string) {
	dev := env == "development" || env == "dev"
	storeLogger(newLogger(dev))
}

// InitWithFile routes all logs to a file under logDir (JSON format). Used
// by the terminal client: anything written to stdout or stderr would tear
// the rendered UI. Callers should ShutdownFileHandler() before exit.
func InitWithFile(logDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("logger: create log dir: %w", err)
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logDir, fmt.Sprintf("research-tui-%s.log", date))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: open log file: %w", err)
	}
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()

	opts := &slog.HandlerOptions{Level: slog.LevelInfo, ReplaceAttr: replaceTimeAttr}
	storeLogger(slog.New(slog.NewJSONHandler(f, opts)))
	return nil
}

// ShutdownFileHandler closes the log file, if open.
func ShutdownFileHandler() {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile != nil {
		_ = logFile.Sync()
		_ = logFile.Close()
		logFile = nil
	}
}

// ========================================
// Context-aware logging
// ========================================

type ctxKey struct{}

// WithContext injects a logger into the context.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts the logger from the context, falling back to the default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return getLogger()
}

// ========================================
// Package-level helpers
// ========================================

// Info/Error/Warn/Debug log structured records. args are key-value pairs.
func Info(msg string, args ...any)  { getLogger().Info(msg, args...) }
func Error(msg string, args ...any) { getLogger().Error(msg, args...) }
func Warn(msg string, args ...any)  { getLogger().Warn(msg, args...) }
func Debug(msg string, args ...any) { getLogger().Debug(msg, args...) }

// Infof/Errorf/Warnf/Debugf log formatted records.
func Infof(format string, args ...any)  { getLogger().Info(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { getLogger().Error(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { getLogger().Warn(fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { getLogger().Debug(fmt.Sprintf(format, args...)) }

// Fatal logs a fatal error and exits.
func Fatal(msg string, args ...any) {
	getLogger().Error(msg, args...)
	os.Exit(1)
}

// With returns a logger with additional context attached.
func With(args ...any) *slog.Logger { return getLogger().With(args...) }

// Get returns the underlying slog.Logger.
func Get() *slog.Logger { return getLogger() }

// Field constants — MUST be used as keys, never hardcode the strings.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldStatus    = "status"
	FieldLatencyMS = "latency_ms"
	FieldCount     = "count"
	FieldPath      = "path"
	FieldMethod    = "method"
	FieldAddr      = "addr"
	FieldPort      = "port"
	FieldURL       = "url"
	FieldTurnID    = "turn_id"
	FieldMessageID = "message_id"
	FieldRunID     = "run_id"
	FieldEventKind = "event_kind"
	FieldNode      = "node"
	FieldState     = "state"
	FieldEffort    = "effort"
	FieldVersion   = "version"
	FieldRaw       = "raw"
	FieldLen       = "len"
)
