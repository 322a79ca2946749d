// Package logger provides structured logging for soundtext.
//
// It wraps log/slog with:
//   - package-level helpers backed by a global DefaultLogger
//   - debug logging of sounds service requests and responses
//   - context fields (request, chunk and job identifiers) lifted onto every record
//   - per-module log levels configured through Configure
package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use and initialized at slog.LevelInfo unless LOG_LEVEL says otherwise.
	DefaultLogger *slog.Logger

	// logOutput is where handlers built by this package write.
	logOutput io.Writer = os.Stderr

	// customHandler is set by SetLogger; Configure leaves it in place.
	customHandler slog.Handler

	mu sync.Mutex
)

func init() {
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = ParseLevel(envLevel)
	}
	initLoggerWithConfig(level, nil, nil, false)
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
// "trace" is accepted as an alias for debug.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the logging level for all subsequent log operations.
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	customHandler = nil
	initLoggerWithConfig(level, nil, nil, false)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// SetOutput redirects the output of handlers built by this package.
// Call SetLevel or Configure afterwards to rebuild the logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
}

// SetLogger installs a caller-provided handler, wrapped so that context
// fields are still extracted. Passing nil restores the default text handler.
func SetLogger(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		customHandler = nil
		initLoggerWithConfig(slog.LevelInfo, nil, nil, false)
		return
	}
	customHandler = h
	DefaultLogger = slog.New(NewContextHandler(h))
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) {
	logAt(context.Background(), slog.LevelInfo, msg, args...)
}

// InfoContext logs an informational message with context and structured attributes.
func InfoContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelInfo, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
func Debug(msg string, args ...any) {
	logAt(context.Background(), slog.LevelDebug, msg, args...)
}

// DebugContext logs a debug message with context and structured attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelDebug, msg, args...)
}

// Warn logs a warning message with structured attributes.
func Warn(msg string, args ...any) {
	logAt(context.Background(), slog.LevelWarn, msg, args...)
}

// WarnContext logs a warning message with context and structured attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with structured attributes.
func Error(msg string, args ...any) {
	logAt(context.Background(), slog.LevelError, msg, args...)
}

// ErrorContext logs an error message with context and structured attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelError, msg, args...)
}

// logAt records the PC of the helper's caller so ModuleHandler attributes
// the record to the calling package rather than to this one.
func logAt(ctx context.Context, level slog.Level, msg string, args ...any) {
	l := DefaultLogger
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, logAt and the exported helper
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

// APIRequest logs an outbound call to the sounds service at debug level.
// It is a no-op when debug logging is disabled.
func APIRequest(ctx context.Context, service, method, url string, headers map[string]string, body any) {
	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := make([]any, 0, 10)
	attrs = append(attrs,
		"service", service,
		"method", method,
		"url", url,
	)
	if len(headers) > 0 {
		attrs = append(attrs, "headers", headers)
	}
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			attrs = append(attrs, "body_error", err.Error())
		} else {
			attrs = append(attrs, "body", string(bodyJSON))
		}
	}

	logAt(ctx, slog.LevelDebug, "sounds API request", attrs...)
}

// APIResponse logs a response from the sounds service at debug level.
// Errors are logged at error level regardless of the debug setting.
func APIResponse(ctx context.Context, service string, statusCode int, body string, err error) {
	attrs := make([]any, 0, 6)
	attrs = append(attrs,
		"service", service,
		"status_code", statusCode,
	)

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		logAt(ctx, slog.LevelError, "sounds API response error", attrs...)
		return
	}

	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	if body != "" {
		attrs = append(attrs, "body", strings.TrimSpace(body))
	}
	logAt(ctx, slog.LevelDebug, "sounds API response", attrs...)
}
