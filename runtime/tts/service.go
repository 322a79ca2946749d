package tts

import (
	"context"
	"time"

	"github.com/soundtext/soundtext/pkg/httputil"
)

// Sounds service defaults.
const (
	DefaultBaseURL       = "https://api.soundoftext.com"
	DefaultEngine        = "google"
	DefaultVoice         = "pt-BR"
	DefaultReferer       = "https://soundoftext.com/"
	DefaultOrigin        = "https://soundoftext.com"
	DefaultPollInterval  = 200 * time.Millisecond
	DefaultPollTimeout   = httputil.DefaultPollTimeout
	DefaultSubmitTimeout = httputil.DefaultSubmitTimeout
)

// Service converts text into an ordered list of audio locations.
type Service interface {
	// Name returns the service identifier (for logging/debugging).
	Name() string

	// CreateAudio renders text and returns one location per chunk, in order.
	// Empty text yields an empty list and no error.
	CreateAudio(ctx context.Context, text string) ([]string, error)
}

// Renderer renders a single chunk of text into an audio location.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, text string) (string, error)
}

// SoundsConfig configures a SoundsClient.
type SoundsConfig struct {
	// BaseURL is the root of the sounds service API.
	BaseURL string

	// Engine is the rendering engine sent with every job.
	Engine string

	// Voice is the voice (language code) sent with every job.
	Voice string

	// Referer and Origin are sent on every request; the service rejects
	// requests that do not look like they come from its web frontend.
	Referer string
	Origin  string

	// PollInterval is the pause after each pending status response.
	PollInterval time.Duration

	// PollTimeout bounds each individual status request.
	PollTimeout time.Duration

	// SubmitTimeout bounds each job submission.
	SubmitTimeout time.Duration

	// RenderTimeout bounds a whole render (submit plus every poll).
	// Zero means no overall deadline.
	RenderTimeout time.Duration

	// SubmitRate limits job submissions per second across all chunks.
	// Zero means unlimited.
	SubmitRate float64

	// SubmitBurst is the limiter burst size. Values below 1 are treated as 1.
	SubmitBurst int
}

// DefaultSoundsConfig returns the configuration of the public sounds service.
func DefaultSoundsConfig() SoundsConfig {
	return SoundsConfig{
		BaseURL:       DefaultBaseURL,
		Engine:        DefaultEngine,
		Voice:         DefaultVoice,
		Referer:       DefaultReferer,
		Origin:        DefaultOrigin,
		PollInterval:  DefaultPollInterval,
		PollTimeout:   DefaultPollTimeout,
		SubmitTimeout: DefaultSubmitTimeout,
	}
}

// withDefaults fills zero fields from DefaultSoundsConfig.
func (c SoundsConfig) withDefaults() SoundsConfig {
	d := DefaultSoundsConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.Voice == "" {
		c.Voice = d.Voice
	}
	if c.Referer == "" {
		c.Referer = d.Referer
	}
	if c.Origin == "" {
		c.Origin = d.Origin
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = d.PollTimeout
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = d.SubmitTimeout
	}
	if c.SubmitBurst < 1 {
		c.SubmitBurst = 1
	}
	return c
}
