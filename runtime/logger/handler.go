package logger

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
)

// moduleRoot is stripped from function names to derive module names.
const moduleRoot = "github.com/soundtext/soundtext/"

// ContextHandler enriches records with common fields and the context fields
// listed in allContextKeys before passing them to an inner handler.
type ContextHandler struct {
	inner        slog.Handler
	commonFields []slog.Attr
}

// NewContextHandler wraps inner. commonFields are added to every record.
func NewContextHandler(inner slog.Handler, commonFields ...slog.Attr) *ContextHandler {
	return &ContextHandler{
		inner:        inner,
		commonFields: commonFields,
	}
}

// Enabled delegates to the inner handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds common and context fields, then the record's own attributes.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface contract
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, h.enrich(ctx, r, ""))
}

func (h *ContextHandler) enrich(ctx context.Context, r slog.Record, module string) slog.Record { //nolint:gocritic
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(h.commonFields...)
	if module != "" {
		out.AddAttrs(slog.String("logger", module))
	}
	for _, key := range allContextKeys {
		if s, ok := ctx.Value(key).(string); ok && s != "" {
			out.AddAttrs(slog.String(string(key), s))
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(a)
		return true
	})
	return out
}

// WithAttrs returns a handler whose inner handler carries attrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), commonFields: h.commonFields}
}

// WithGroup returns a handler whose inner handler opens group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), commonFields: h.commonFields}
}

// Unwrap returns the inner handler.
func (h *ContextHandler) Unwrap() slog.Handler {
	return h.inner
}

var _ slog.Handler = (*ContextHandler)(nil)

// ModuleHandler is a ContextHandler that filters records by the level
// configured for the calling package and tags them with a "logger" field.
type ModuleHandler struct {
	ContextHandler
	moduleConfig *ModuleConfig
}

// NewModuleHandler creates a ModuleHandler.
func NewModuleHandler(inner slog.Handler, moduleConfig *ModuleConfig, commonFields ...slog.Attr) *ModuleHandler {
	return &ModuleHandler{
		ContextHandler: ContextHandler{inner: inner, commonFields: commonFields},
		moduleConfig:   moduleConfig,
	}
}

// Enabled lets a record through if any module could accept it; the precise
// per-module check happens in Handle where the caller PC is known.
func (h *ModuleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle drops records below the calling module's level.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface contract
func (h *ModuleHandler) Handle(ctx context.Context, r slog.Record) error {
	module := moduleFromPC(r.PC)
	if r.Level < h.moduleConfig.LevelFor(module) {
		return nil
	}
	return h.inner.Handle(ctx, h.enrich(ctx, r, module))
}

// WithAttrs returns a ModuleHandler whose inner handler carries attrs.
func (h *ModuleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ModuleHandler{
		ContextHandler: ContextHandler{inner: h.inner.WithAttrs(attrs), commonFields: h.commonFields},
		moduleConfig:   h.moduleConfig,
	}
}

// WithGroup returns a ModuleHandler whose inner handler opens group name.
func (h *ModuleHandler) WithGroup(name string) slog.Handler {
	return &ModuleHandler{
		ContextHandler: ContextHandler{inner: h.inner.WithGroup(name), commonFields: h.commonFields},
		moduleConfig:   h.moduleConfig,
	}
}

var _ slog.Handler = (*ModuleHandler)(nil)

// moduleFromPC resolves the package of the function that logged.
func moduleFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	return moduleFromFunction(frame.Function)
}

// moduleFromFunction turns
// "github.com/soundtext/soundtext/runtime/tts.(*SoundsClient).Poll" into "runtime.tts".
// Functions outside the module yield "".
func moduleFromFunction(fn string) string {
	idx := strings.Index(fn, moduleRoot)
	if idx == -1 {
		return ""
	}
	path := fn[idx+len(moduleRoot):]

	if paren := strings.Index(path, "("); paren != -1 {
		path = path[:paren]
	}
	// the package ends at the first dot after the last slash
	lastSlash := strings.LastIndex(path, "/")
	if dot := strings.Index(path[lastSlash+1:], "."); dot != -1 {
		path = path[:lastSlash+1+dot]
	}
	path = strings.TrimSuffix(path, ".")

	return strings.ReplaceAll(path, "/", ".")
}
