package logger

import (
	"log/slog"
	"strings"
	"sync"
)

// Log format constants.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ModuleConfig holds per-module log levels. Module names are dotted package
// paths relative to the module root ("runtime.tts"); the most specific
// configured prefix wins.
type ModuleConfig struct {
	defaultLevel slog.Level
	modules      map[string]slog.Level
	mu           sync.RWMutex
}

// NewModuleConfig creates a ModuleConfig with the given default level.
func NewModuleConfig(defaultLevel slog.Level) *ModuleConfig {
	return &ModuleConfig{
		defaultLevel: defaultLevel,
		modules:      make(map[string]slog.Level),
	}
}

// SetModuleLevel sets the level for one module.
func (m *ModuleConfig) SetModuleLevel(module string, level slog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[module] = level
}

// SetDefaultLevel sets the level used when no module entry matches.
func (m *ModuleConfig) SetDefaultLevel(level slog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
}

// LevelFor returns the level for module, walking up the dotted hierarchy:
// "runtime.tts.sounds" checks itself, then "runtime.tts", then "runtime".
func (m *ModuleConfig) LevelFor(module string) slog.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for module != "" {
		if level, ok := m.modules[module]; ok {
			return level
		}
		lastDot := strings.LastIndex(module, ".")
		if lastDot == -1 {
			break
		}
		module = module[:lastDot]
	}
	return m.defaultLevel
}

// Len returns the number of module entries.
func (m *ModuleConfig) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.modules)
}

var globalModuleConfig = NewModuleConfig(slog.LevelInfo)

// LoggingConfigSpec is the logging section accepted by Configure.
// It mirrors config.LoggingConfigSpec to avoid an import cycle.
type LoggingConfigSpec struct {
	DefaultLevel string
	Format       string
	CommonFields map[string]string
	Modules      []ModuleLoggingSpec
}

// ModuleLoggingSpec sets the level of one module.
type ModuleLoggingSpec struct {
	Name  string
	Level string
}

// Configure rebuilds the global logger from cfg. A handler installed with
// SetLogger is kept.
func Configure(cfg *LoggingConfigSpec) error {
	if cfg == nil {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if customHandler != nil {
		return nil
	}

	defaultLevel := slog.LevelInfo
	if cfg.DefaultLevel != "" {
		defaultLevel = ParseLevel(cfg.DefaultLevel)
	}

	commonFields := make([]slog.Attr, 0, len(cfg.CommonFields))
	for k, v := range cfg.CommonFields {
		commonFields = append(commonFields, slog.String(k, v))
	}

	moduleConfig := NewModuleConfig(defaultLevel)
	for _, mod := range cfg.Modules {
		moduleConfig.SetModuleLevel(mod.Name, ParseLevel(mod.Level))
	}
	globalModuleConfig = moduleConfig

	initLoggerWithConfig(defaultLevel, commonFields, moduleConfig, cfg.Format == FormatJSON)
	return nil
}

// initLoggerWithConfig builds DefaultLogger. Callers hold mu, except init.
func initLoggerWithConfig(level slog.Level, commonFields []slog.Attr, moduleConfig *ModuleConfig, useJSON bool) {
	// Module levels may be lower than the default, so the base handler
	// accepts everything the module handler lets through.
	baseLevel := level
	if moduleConfig != nil && moduleConfig.Len() > 0 {
		baseLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: baseLevel}

	var baseHandler slog.Handler
	if useJSON {
		baseHandler = slog.NewJSONHandler(logOutput, opts)
	} else {
		baseHandler = slog.NewTextHandler(logOutput, opts)
	}

	var handler slog.Handler
	if moduleConfig != nil && moduleConfig.Len() > 0 {
		handler = NewModuleHandler(baseHandler, moduleConfig, commonFields...)
	} else {
		handler = NewContextHandler(baseHandler, commonFields...)
	}

	DefaultLogger = slog.New(handler)
}

// GetModuleConfig returns the module configuration installed by Configure.
func GetModuleConfig() *ModuleConfig {
	mu.Lock()
	defer mu.Unlock()
	return globalModuleConfig
}
