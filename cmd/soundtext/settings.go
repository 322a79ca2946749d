package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soundtext/soundtext/pkg/config"
	"github.com/soundtext/soundtext/runtime/logger"
)

// envPrefix scopes environment overrides, e.g. SOUNDTEXT_VOICE.
const envPrefix = "SOUNDTEXT"

// Setting keys, shared by flags and environment variables.
const (
	keyConfig         = "config"
	keyVerbose        = "verbose"
	keyBaseURL        = "base-url"
	keyEngine         = "engine"
	keyVoice          = "voice"
	keyMaxLength      = "max-length"
	keyMaxConcurrency = "max-concurrency"
	keyRenderTimeout  = "render-timeout"
	keyMetricsAddr    = "metrics-addr"
	keyOTLPEndpoint   = "otlp-endpoint"
)

func addSettingsFlags(flags *pflag.FlagSet) {
	flags.StringP(keyConfig, "c", "", "Configuration file path (SoundtextConfig YAML)")
	flags.BoolP(keyVerbose, "v", false, "Enable verbose debug logging for API calls")
	flags.String(keyBaseURL, "", "Sounds service base URL")
	flags.String(keyEngine, "", "Rendering engine")
	flags.String(keyVoice, "", "Voice (language code)")
	flags.Int(keyMaxLength, 0, "Maximum chunk length in characters")
	flags.Int(keyMaxConcurrency, 0, "Maximum chunks rendered at once (0 = unbounded)")
	flags.Duration(keyRenderTimeout, 0, "Overall deadline per chunk (0 = none)")
	flags.String(keyMetricsAddr, "", "Serve Prometheus metrics on this address while running")
	flags.String(keyOTLPEndpoint, "", "OTLP/HTTP endpoint for traces")
}

// loadSettings resolves the effective configuration. Precedence, lowest
// first: defaults, config file, environment (SOUNDTEXT_*), flags.
func loadSettings(cmd *cobra.Command) (*config.SoundtextConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		keyConfig, keyBaseURL, keyEngine, keyVoice, keyMaxLength,
		keyMaxConcurrency, keyRenderTimeout, keyMetricsAddr, keyOTLPEndpoint,
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}

	cfg := config.DefaultConfig()
	if path := v.GetString(keyConfig); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	applyOverrides(v, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *config.SoundtextConfig) {
	if v.IsSet(keyBaseURL) {
		cfg.Spec.Service.BaseURL = v.GetString(keyBaseURL)
	}
	if v.IsSet(keyEngine) {
		cfg.Spec.Service.Engine = v.GetString(keyEngine)
	}
	if v.IsSet(keyVoice) {
		cfg.Spec.Service.Voice = v.GetString(keyVoice)
	}
	if v.IsSet(keyMaxLength) {
		cfg.Spec.Chunking.MaxLength = v.GetInt(keyMaxLength)
	}
	if v.IsSet(keyMaxConcurrency) {
		cfg.Spec.Orchestrator.MaxConcurrency = v.GetInt(keyMaxConcurrency)
	}
	if v.IsSet(keyRenderTimeout) {
		cfg.Spec.Service.RenderTimeout = v.GetDuration(keyRenderTimeout)
	}
	if v.IsSet(keyMetricsAddr) {
		cfg.Spec.Telemetry.MetricsAddr = v.GetString(keyMetricsAddr)
	}
	if v.IsSet(keyOTLPEndpoint) {
		cfg.Spec.Telemetry.OTLPEndpoint = v.GetString(keyOTLPEndpoint)
	}
}

// configureLogging applies the logging section; --verbose still wins.
func configureLogging(cmd *cobra.Command, cfg *config.SoundtextConfig) error {
	if err := logger.Configure(cfg.Spec.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool(keyVerbose); verbose {
		logger.SetVerbose(true)
	}
	return nil
}
