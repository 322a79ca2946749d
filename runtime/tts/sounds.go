package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/soundtext/soundtext/pkg/httputil"
	"github.com/soundtext/soundtext/runtime/logger"
	metrics "github.com/soundtext/soundtext/runtime/metrics/prometheus"
	"github.com/soundtext/soundtext/runtime/telemetry"
)

const (
	soundsServiceName = "sounds"
	soundsEndpoint    = "/sounds"

	// statusPending is the only status that keeps a job polling.
	statusPending = "Pending"
)

// SoundsClient renders single chunks through the sounds service: it submits a
// job, then polls its status until the service reports a location.
// A SoundsClient is safe for concurrent use.
type SoundsClient struct {
	cfg     SoundsConfig
	client  *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// SoundsOption configures a SoundsClient.
type SoundsOption func(*SoundsClient)

// WithSoundsHTTPClient sets a custom HTTP client.
func WithSoundsHTTPClient(client *http.Client) SoundsOption {
	return func(c *SoundsClient) {
		c.client = client
	}
}

// WithSoundsTracerProvider sets the tracer provider used for render spans.
func WithSoundsTracerProvider(tp trace.TracerProvider) SoundsOption {
	return func(c *SoundsClient) {
		c.tracer = telemetry.Tracer(tp)
	}
}

// NewSounds creates a SoundsClient. Zero fields of cfg take their defaults.
func NewSounds(cfg SoundsConfig, opts ...SoundsOption) *SoundsClient {
	cfg = cfg.withDefaults()
	c := &SoundsClient{
		cfg:    cfg,
		client: httputil.NewTracedHTTPClient(0),
		tracer: telemetry.Tracer(nil),
	}
	if cfg.SubmitRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the service identifier.
func (c *SoundsClient) Name() string {
	return soundsServiceName
}

// Config returns the effective configuration.
func (c *SoundsClient) Config() SoundsConfig {
	return c.cfg
}

// Render submits text and waits until the sounds service reports its location.
// When RenderTimeout is set and expires before the caller's context does, the
// error is a *TimeoutError.
func (c *SoundsClient) Render(ctx context.Context, text string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "soundtext.render", trace.WithAttributes(
		telemetry.AttrTextLength.Int(utf8.RuneCountInString(text)),
		telemetry.AttrEngine.String(c.cfg.Engine),
		telemetry.AttrVoice.String(c.cfg.Voice),
	))
	defer span.End()
	start := time.Now()

	renderCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.cfg.RenderTimeout > 0 {
		renderCtx, cancel = context.WithTimeoutCause(ctx, c.cfg.RenderTimeout, ErrRenderTimeout)
	}
	defer cancel()

	job, err := c.Submit(renderCtx, text)
	var location string
	if err == nil {
		span.SetAttributes(telemetry.AttrJobID.String(job.ID))
		location, err = c.Await(renderCtx, job)
		span.SetAttributes(telemetry.AttrPolls.Int(job.Polls()))
	}

	if err != nil {
		if ctx.Err() == nil && errors.Is(context.Cause(renderCtx), ErrRenderTimeout) {
			jobID := ""
			if job != nil {
				jobID = job.ID
			}
			err = NewTimeoutError(jobID, c.cfg.RenderTimeout)
			logger.WarnContext(ctx, "sound render timed out", "job_id", jobID, "timeout", c.cfg.RenderTimeout)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRender(metrics.StatusError, time.Since(start).Seconds())
		return "", err
	}

	metrics.RecordRender(metrics.StatusSuccess, time.Since(start).Seconds())
	return location, nil
}

// Submit creates a render job for text. The returned job is pending.
func (c *SoundsClient) Submit(ctx context.Context, text string) (*RenderJob, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	payload := SoundRequest{
		Engine: c.cfg.Engine,
		Data:   SoundRequestData{Text: text, Voice: c.cfg.Voice},
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.recordSubmission(metrics.StatusError)
			return nil, NewSubmissionError(payload, 0, "", err)
		}
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, NewSubmissionError(payload, 0, "", fmt.Errorf("failed to marshal request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + soundsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, NewSubmissionError(payload, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	c.setHeaders(req)
	logger.APIRequest(ctx, soundsServiceName, req.Method, endpoint, c.headerMap(), payload)

	status, body, err := c.do(req)
	logger.APIResponse(ctx, soundsServiceName, status, body, err)
	if err != nil {
		c.recordSubmission(metrics.StatusError)
		return nil, NewSubmissionError(payload, status, body, err)
	}
	if !isSuccess(status) {
		c.recordSubmission(metrics.StatusError)
		return nil, NewSubmissionError(payload, status, body, nil)
	}

	var created soundCreated
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		c.recordSubmission(metrics.StatusError)
		return nil, NewSubmissionError(payload, status, body, fmt.Errorf("failed to decode response: %w", err))
	}
	if created.ID == "" {
		c.recordSubmission(metrics.StatusError)
		return nil, NewSubmissionError(payload, status, body, ErrMissingJobID)
	}

	c.recordSubmission(metrics.StatusSuccess)
	logger.InfoContext(ctx, "sound job created",
		"job_id", created.ID,
		"text_length", utf8.RuneCountInString(text),
	)

	return &RenderJob{
		ID:      created.ID,
		Text:    text,
		Status:  JobPending,
		Request: payload,
	}, nil
}

// Poll makes one status request for job. It reports done once the job has
// left the pending state; on error the job is marked failed.
func (c *SoundsClient) Poll(ctx context.Context, job *RenderJob) (bool, error) {
	if job.Status == JobReady {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + soundsEndpoint + "/" + url.PathEscape(job.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		job.fail()
		return true, NewPollError(job, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	c.setHeaders(req)
	job.polls++

	status, body, err := c.do(req)
	if err != nil {
		job.fail()
		metrics.RecordPoll(metrics.PollError)
		logger.APIResponse(ctx, soundsServiceName, status, body, err)
		return true, NewPollError(job, status, body, err)
	}
	if !isSuccess(status) {
		job.fail()
		metrics.RecordPoll(metrics.PollError)
		logger.WarnContext(ctx, "sound status request rejected", "job_id", job.ID, "status_code", status)
		return true, NewPollError(job, status, body, nil)
	}

	var st soundStatus
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		job.fail()
		metrics.RecordPoll(metrics.PollError)
		logger.ErrorContext(ctx, "sounds service returned an undecodable status",
			"job_id", job.ID,
			"body", body,
			"error", err,
		)
		return true, NewProtocolError(job, "", body, fmt.Errorf("failed to decode status: %w", err))
	}

	if strings.EqualFold(st.Status, statusPending) {
		metrics.RecordPoll(metrics.PollPending)
		logger.DebugContext(ctx, "sound job pending", "job_id", job.ID, "poll", job.polls)
		return false, nil
	}

	if st.Location == "" {
		job.fail()
		metrics.RecordPoll(metrics.PollError)
		logger.ErrorContext(ctx, "sounds service finished a job without location",
			"job_id", job.ID,
			"status", st.Status,
			"message", st.Message,
			"body", body,
		)
		perr := NewProtocolError(job, st.Status, body, ErrMissingLocation)
		perr.Message = st.Message
		return true, perr
	}

	job.ready(st.Location)
	metrics.RecordPoll(metrics.PollReady)
	logger.InfoContext(ctx, "sound job ready",
		"job_id", job.ID,
		"location", st.Location,
		"polls", job.polls,
	)
	return true, nil
}

// Await polls job until it is done, sleeping PollInterval after each pending
// response. Errors are never retried.
func (c *SoundsClient) Await(ctx context.Context, job *RenderJob) (string, error) {
	ctx = logger.WithJobID(ctx, job.ID)

	for {
		done, err := c.Poll(ctx, job)
		if err != nil {
			return "", err
		}
		if done {
			return job.Location, nil
		}

		select {
		case <-ctx.Done():
			job.fail()
			return "", fmt.Errorf("sounds: awaiting job %s: %w", job.ID, ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// do sends req and reads the whole response body.
func (c *SoundsClient) do(req *http.Request) (int, string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, string(data), nil
}

func (c *SoundsClient) setHeaders(req *http.Request) {
	for k, v := range c.headerMap() {
		req.Header.Set(k, v)
	}
}

func (c *SoundsClient) headerMap() map[string]string {
	return map[string]string{
		"Referer":      c.cfg.Referer,
		"Origin":       c.cfg.Origin,
		"Content-Type": "application/json",
	}
}

func (c *SoundsClient) recordSubmission(status string) {
	metrics.RecordSubmission(c.cfg.Engine, c.cfg.Voice, status)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
