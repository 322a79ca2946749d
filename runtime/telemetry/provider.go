// Package telemetry wires soundtext into OpenTelemetry: tracer lookup,
// an OTLP/HTTP tracer provider and the propagators used on outbound calls.
package telemetry

import (
	"context"

	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName is the OTel instrumentation scope name.
	InstrumentationName = "github.com/soundtext/soundtext"

	// InstrumentationVersion is the OTel instrumentation scope version.
	InstrumentationVersion = "0.1.0"

	// DefaultServiceName is used when no service name is configured.
	DefaultServiceName = "soundtext"
)

// Span attribute keys.
const (
	AttrRequestID  = attribute.Key("soundtext.request_id")
	AttrChunkCount = attribute.Key("soundtext.chunk_count")
	AttrChunkIndex = attribute.Key("soundtext.chunk_index")
	AttrTextLength = attribute.Key("soundtext.text_length")
	AttrJobID      = attribute.Key("soundtext.job_id")
	AttrPolls      = attribute.Key("soundtext.polls")
	AttrEngine     = attribute.Key("soundtext.engine")
	AttrVoice      = attribute.Key("soundtext.voice")
)

// Tracer returns the soundtext tracer from tp, or from the global provider when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(InstrumentationVersion))
}

// NewTracerProvider creates a TracerProvider that batches spans to an OTLP/HTTP endpoint.
// The caller must Shutdown the returned provider.
func NewTracerProvider(ctx context.Context, endpoint, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, err
	}

	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// SetupPropagation installs the W3C TraceContext, W3C Baggage and AWS X-Ray
// propagators globally. Instrumented HTTP clients inject these headers.
func SetupPropagation() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
		xray.Propagator{},
	))
}

// Setup installs an OTLP tracer provider and propagators globally.
// An empty endpoint leaves the global no-op provider in place.
// The returned function flushes and stops the provider.
func Setup(ctx context.Context, endpoint, serviceName string) (func(context.Context) error, error) {
	SetupPropagation()
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := NewTracerProvider(ctx, endpoint, serviceName)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
