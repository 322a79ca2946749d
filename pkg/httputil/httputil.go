// Package httputil provides shared HTTP client construction for soundtext.
// It centralizes timeout defaults and tracing instrumentation so every
// outbound call to the sounds service is configured the same way.
package httputil

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Standard timeout defaults.
const (
	// DefaultPollTimeout bounds a single status poll against the sounds service.
	DefaultPollTimeout = 60 * time.Second

	// DefaultSubmitTimeout bounds a single job submission.
	DefaultSubmitTimeout = 30 * time.Second
)

// NewHTTPClient returns an *http.Client configured with the given timeout.
// Pass one of the Default*Timeout constants, or a custom duration.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewTracedHTTPClient returns an *http.Client whose transport records a client
// span per request and injects the globally configured propagation headers.
// A zero timeout leaves requests bounded only by their context.
func NewTracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "sounds " + r.Method
			}),
		),
	}
}
