package config

import (
	"strconv"

	"github.com/soundtext/soundtext/runtime/logger"
)

// LoggingConfigSpec defines the logging configuration parameters.
type LoggingConfigSpec struct {
	// DefaultLevel is the default log level for all modules.
	// Supported values: trace, debug, info, warn, error.
	DefaultLevel string `yaml:"defaultLevel,omitempty"`

	// Format is "json" for machine-parseable logs or "text" for humans.
	Format string `yaml:"format,omitempty"`

	// CommonFields are key-value pairs added to every log entry.
	CommonFields map[string]string `yaml:"commonFields,omitempty"`

	// Modules configures logging for specific modules.
	// Module names use dot notation (e.g., runtime.tts).
	Modules []ModuleLoggingConfig `yaml:"modules,omitempty"`
}

// ModuleLoggingConfig configures logging for a specific module.
type ModuleLoggingConfig struct {
	// Name is the module name using dot notation, e.g. "runtime" or "runtime.tts".
	// More specific names take precedence over less specific ones.
	Name string `yaml:"name"`

	// Level overrides the default level for matching loggers.
	Level string `yaml:"level,omitempty"`
}

// LogLevel constants for programmatic use.
const (
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogFormat constants for programmatic use.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// DefaultLoggingConfig returns a LoggingConfigSpec with sensible defaults.
func DefaultLoggingConfig() LoggingConfigSpec {
	return LoggingConfigSpec{
		DefaultLevel: LogLevelInfo,
		Format:       LogFormatText,
	}
}

// Validate validates the LoggingConfigSpec.
func (c *LoggingConfigSpec) Validate() error {
	if c.DefaultLevel != "" && !isValidLogLevel(c.DefaultLevel) {
		return &ValidationError{
			Section: "logging",
			Field:   "defaultLevel",
			Message: "must be one of: trace, debug, info, warn, error",
			Value:   c.DefaultLevel,
		}
	}

	if c.Format != "" && c.Format != LogFormatJSON && c.Format != LogFormatText {
		return &ValidationError{
			Section: "logging",
			Field:   "format",
			Message: "must be one of: json, text",
			Value:   c.Format,
		}
	}

	for i, mod := range c.Modules {
		if mod.Name == "" {
			return &ValidationError{
				Section: "logging",
				Field:   "modules[" + strconv.Itoa(i) + "].name",
				Message: "module name is required",
			}
		}
		if mod.Level != "" && !isValidLogLevel(mod.Level) {
			return &ValidationError{
				Section: "logging",
				Field:   "modules[" + mod.Name + "].level",
				Message: "must be one of: trace, debug, info, warn, error",
				Value:   mod.Level,
			}
		}
	}

	return nil
}

// LoggerConfig converts the logging section into the form accepted by logger.Configure.
func (c *LoggingConfigSpec) LoggerConfig() *logger.LoggingConfigSpec {
	out := &logger.LoggingConfigSpec{
		DefaultLevel: c.DefaultLevel,
		Format:       c.Format,
		CommonFields: c.CommonFields,
	}
	for _, mod := range c.Modules {
		out.Modules = append(out.Modules, logger.ModuleLoggingSpec{Name: mod.Name, Level: mod.Level})
	}
	return out
}

// isValidLogLevel checks if a log level string is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Section string
	Field   string
	Message string
	Value   string
}

func (e *ValidationError) Error() string {
	msg := e.Section + " config validation error: " + e.Field + ": " + e.Message
	if e.Value != "" {
		msg += " (got: " + e.Value + ")"
	}
	return msg
}
