package tts

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/soundtext/soundtext/runtime/chunker"
	"github.com/soundtext/soundtext/runtime/logger"
	metrics "github.com/soundtext/soundtext/runtime/metrics/prometheus"
	"github.com/soundtext/soundtext/runtime/telemetry"
)

const orchestratorName = "soundtext"

// Orchestrator implements Service by chunking text and rendering every chunk
// concurrently with a Renderer.
type Orchestrator struct {
	renderer       Renderer
	maxLength      int
	maxConcurrency int
	tracer         trace.Tracer
	newRequestID   func() string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMaxLength sets the maximum chunk length in characters.
func WithMaxLength(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxLength = n
	}
}

// WithMaxConcurrency limits how many chunks render at once. Zero or less means unbounded.
func WithMaxConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxConcurrency = n
	}
}

// WithTracerProvider sets the tracer provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tracer = telemetry.Tracer(tp)
	}
}

// NewOrchestrator creates an Orchestrator that renders chunks with r.
func NewOrchestrator(r Renderer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		renderer:     r,
		maxLength:    chunker.DefaultMaxLength,
		tracer:       telemetry.Tracer(nil),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the service identifier.
func (o *Orchestrator) Name() string {
	return orchestratorName
}

// CreateAudio divides text into chunks, renders them concurrently and returns
// their locations in chunk order. The first failing chunk cancels the others;
// the error returned is that of the lowest-index chunk whose failure was not
// caused by the cancellation. No partial result is returned.
func (o *Orchestrator) CreateAudio(ctx context.Context, text string) ([]string, error) {
	requestID := o.newRequestID()
	ctx = logger.WithRequestID(ctx, requestID)
	ctx, span := o.tracer.Start(ctx, "soundtext.create_audio", trace.WithAttributes(
		telemetry.AttrRequestID.String(requestID),
		telemetry.AttrTextLength.Int(utf8.RuneCountInString(text)),
	))
	defer span.End()

	metrics.RecordRequestStart()
	start := time.Now()

	locations, err := o.createAudio(ctx, text, span)

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "text to audio failed", "error", err)
	}
	metrics.RecordRequestEnd(status, time.Since(start).Seconds())
	return locations, err
}

func (o *Orchestrator) createAudio(ctx context.Context, text string, span trace.Span) ([]string, error) {
	chunks, err := chunker.DivideIntoChunks(text, o.maxLength)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrChunkCount.Int(len(chunks)))
	metrics.RecordChunks(len(chunks))
	if len(chunks) == 0 {
		return []string{}, nil
	}

	logger.InfoContext(ctx, "rendering text",
		"chunks", len(chunks),
		"max_length", o.maxLength,
	)

	g, gctx := errgroup.WithContext(ctx)
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}

	locations := make([]string, len(chunks))
	errs := make([]error, len(chunks))
	for i, chunk := range chunks {
		g.Go(func() error {
			chunkCtx := logger.WithChunkIndex(gctx, i)
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			loc, err := o.renderer.Render(chunkCtx, chunk)
			if err != nil {
				errs[i] = err
				return err
			}
			locations[i] = loc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, rootCause(ctx, errs, err)
	}

	logger.InfoContext(ctx, "text rendered", "chunks", len(chunks))
	return locations, nil
}

// rootCause returns the lowest-index chunk error that was not produced by the
// group cancelling its siblings. When the caller's own context is done every
// error is a root cause. fallback is returned if no chunk recorded an error.
func rootCause(parent context.Context, errs []error, fallback error) error {
	siblingCancelled := parent.Err() == nil
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		if siblingCancelled && errors.Is(err, context.Canceled) {
			continue
		}
		return err
	}
	if first != nil {
		return first
	}
	return fallback
}
