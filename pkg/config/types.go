// Package config loads and validates soundtext configuration files.
//
// Configuration uses a K8s-style manifest:
//
//	apiVersion: soundtext.dev/v1alpha1
//	kind: SoundtextConfig
//	metadata:
//	  name: default
//	spec:
//	  service:
//	    voice: pt-BR
//	  chunking:
//	    maxLength: 200
package config

import (
	"time"

	"github.com/soundtext/soundtext/runtime/chunker"
	"github.com/soundtext/soundtext/runtime/tts"
)

// Manifest identifiers.
const (
	APIVersion = "soundtext.dev/v1alpha1"
	Kind       = "SoundtextConfig"
)

// ObjectMeta is a simplified metadata structure for soundtext configs.
type ObjectMeta struct {
	Name        string            `yaml:"name,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// SoundtextConfig is the top-level configuration manifest.
type SoundtextConfig struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Metadata   ObjectMeta `yaml:"metadata,omitempty"`
	Spec       Spec       `yaml:"spec"`
}

// Spec holds every configurable section.
type Spec struct {
	Service      ServiceConfig      `yaml:"service,omitempty"`
	Chunking     ChunkingConfig     `yaml:"chunking,omitempty"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator,omitempty"`
	Logging      LoggingConfigSpec  `yaml:"logging,omitempty"`
	Telemetry    TelemetryConfig    `yaml:"telemetry,omitempty"`
}

// ServiceConfig configures the sounds service client.
type ServiceConfig struct {
	BaseURL       string        `yaml:"baseURL,omitempty"`
	Engine        string        `yaml:"engine,omitempty"`
	Voice         string        `yaml:"voice,omitempty"`
	Referer       string        `yaml:"referer,omitempty"`
	Origin        string        `yaml:"origin,omitempty"`
	PollInterval  time.Duration `yaml:"pollInterval,omitempty"`
	PollTimeout   time.Duration `yaml:"pollTimeout,omitempty"`
	SubmitTimeout time.Duration `yaml:"submitTimeout,omitempty"`

	// RenderTimeout bounds a whole chunk render. Zero disables it.
	RenderTimeout time.Duration `yaml:"renderTimeout,omitempty"`

	// SubmitRate limits submissions per second. Zero disables it.
	SubmitRate  float64 `yaml:"submitRate,omitempty"`
	SubmitBurst int     `yaml:"submitBurst,omitempty"`
}

// ChunkingConfig configures how text is divided.
type ChunkingConfig struct {
	MaxLength int `yaml:"maxLength,omitempty"`
}

// OrchestratorConfig configures concurrent rendering.
type OrchestratorConfig struct {
	// MaxConcurrency limits chunks rendered at once. Zero means unbounded.
	MaxConcurrency int `yaml:"maxConcurrency,omitempty"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	ServiceName  string `yaml:"serviceName,omitempty"`
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	MetricsAddr  string `yaml:"metricsAddr,omitempty"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *SoundtextConfig {
	c := &SoundtextConfig{APIVersion: APIVersion, Kind: Kind}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values with their defaults.
func (c *SoundtextConfig) ApplyDefaults() {
	d := tts.DefaultSoundsConfig()
	s := &c.Spec.Service
	if s.BaseURL == "" {
		s.BaseURL = d.BaseURL
	}
	if s.Engine == "" {
		s.Engine = d.Engine
	}
	if s.Voice == "" {
		s.Voice = d.Voice
	}
	if s.Referer == "" {
		s.Referer = d.Referer
	}
	if s.Origin == "" {
		s.Origin = d.Origin
	}
	if s.PollInterval == 0 {
		s.PollInterval = d.PollInterval
	}
	if s.PollTimeout == 0 {
		s.PollTimeout = d.PollTimeout
	}
	if s.SubmitTimeout == 0 {
		s.SubmitTimeout = d.SubmitTimeout
	}
	if c.Spec.Chunking.MaxLength == 0 {
		c.Spec.Chunking.MaxLength = chunker.DefaultMaxLength
	}

	l := &c.Spec.Logging
	dl := DefaultLoggingConfig()
	if l.DefaultLevel == "" {
		l.DefaultLevel = dl.DefaultLevel
	}
	if l.Format == "" {
		l.Format = dl.Format
	}
}

// Validate checks semantic constraints that the schema cannot express.
func (c *SoundtextConfig) Validate() error {
	s := c.Spec.Service
	switch {
	case s.PollInterval < 0:
		return &ValidationError{Section: "service", Field: "pollInterval", Message: "must not be negative", Value: s.PollInterval.String()}
	case s.PollTimeout < 0:
		return &ValidationError{Section: "service", Field: "pollTimeout", Message: "must not be negative", Value: s.PollTimeout.String()}
	case s.SubmitTimeout < 0:
		return &ValidationError{Section: "service", Field: "submitTimeout", Message: "must not be negative", Value: s.SubmitTimeout.String()}
	case s.RenderTimeout < 0:
		return &ValidationError{Section: "service", Field: "renderTimeout", Message: "must not be negative", Value: s.RenderTimeout.String()}
	case s.SubmitRate < 0:
		return &ValidationError{Section: "service", Field: "submitRate", Message: "must not be negative"}
	}
	if c.Spec.Chunking.MaxLength < 0 {
		return &ValidationError{Section: "chunking", Field: "maxLength", Message: "must be positive"}
	}
	if c.Spec.Orchestrator.MaxConcurrency < 0 {
		return &ValidationError{Section: "orchestrator", Field: "maxConcurrency", Message: "must not be negative"}
	}
	return c.Spec.Logging.Validate()
}

// SoundsConfig converts the service section into a tts.SoundsConfig.
func (c *SoundtextConfig) SoundsConfig() tts.SoundsConfig {
	s := c.Spec.Service
	return tts.SoundsConfig{
		BaseURL:       s.BaseURL,
		Engine:        s.Engine,
		Voice:         s.Voice,
		Referer:       s.Referer,
		Origin:        s.Origin,
		PollInterval:  s.PollInterval,
		PollTimeout:   s.PollTimeout,
		SubmitTimeout: s.SubmitTimeout,
		RenderTimeout: s.RenderTimeout,
		SubmitRate:    s.SubmitRate,
		SubmitBurst:   s.SubmitBurst,
	}
}
