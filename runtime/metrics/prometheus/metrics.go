// Package prometheus provides Prometheus collectors for soundtext renders and
// an HTTP exporter that serves them.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "soundtext"

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Poll outcome label values.
const (
	PollPending = "pending"
	PollReady   = "ready"
	PollError   = "error"
)

var (
	// requestsActive is a gauge of CreateAudio calls in flight.
	requestsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_active",
			Help:      "Number of text-to-audio requests currently in flight",
		},
	)

	// requestDuration is a histogram of whole CreateAudio calls.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Histogram of text-to-audio request duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	// chunksPerRequest is a histogram of how many chunks a request was split into.
	chunksPerRequest = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_request",
			Help:      "Number of chunks each request text was divided into",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	// jobSubmissionsTotal counts POST /sounds calls.
	jobSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_submissions_total",
			Help:      "Total number of render jobs submitted",
		},
		[]string{"engine", "voice", "status"},
	)

	// pollsTotal counts GET /sounds/{id} calls by outcome.
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_polls_total",
			Help:      "Total number of job status polls by outcome",
		},
		[]string{"outcome"},
	)

	// renderDuration is a histogram of submit-to-location time per chunk.
	renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Histogram of per-chunk render duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	// allMetrics is registered by NewExporter.
	allMetrics = []prometheus.Collector{
		requestsActive,
		requestDuration,
		chunksPerRequest,
		jobSubmissionsTotal,
		pollsTotal,
		renderDuration,
	}
)

// Collectors returns every soundtext collector, for registration with a custom registry.
func Collectors() []prometheus.Collector {
	out := make([]prometheus.Collector, len(allMetrics))
	copy(out, allMetrics)
	return out
}

// RecordRequestStart marks a request as in flight.
func RecordRequestStart() {
	requestsActive.Inc()
}

// RecordRequestEnd records a finished request.
func RecordRequestEnd(status string, durationSeconds float64) {
	requestsActive.Dec()
	requestDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordChunks records how many chunks a request produced.
func RecordChunks(count int) {
	chunksPerRequest.Observe(float64(count))
}

// RecordSubmission records one job submission.
func RecordSubmission(engine, voice, status string) {
	jobSubmissionsTotal.WithLabelValues(engine, voice, status).Inc()
}

// RecordPoll records one status poll.
func RecordPoll(outcome string) {
	pollsTotal.WithLabelValues(outcome).Inc()
}

// RecordRender records the end of one chunk render.
func RecordRender(status string, durationSeconds float64) {
	renderDuration.WithLabelValues(status).Observe(durationSeconds)
}
