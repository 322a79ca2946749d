package logger

import (
	"context"
	"strconv"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys lifted onto log records by ContextHandler.
const (
	// ContextKeyRequestID identifies one CreateAudio call.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyChunkIndex is the position of the chunk being rendered.
	ContextKeyChunkIndex contextKey = "chunk_index"

	// ContextKeyJobID is the identifier the sounds service assigned to a job.
	ContextKeyJobID contextKey = "job_id"

	// ContextKeyVoice is the voice the request renders with.
	ContextKeyVoice contextKey = "voice"
)

var allContextKeys = []contextKey{
	ContextKeyRequestID,
	ContextKeyChunkIndex,
	ContextKeyJobID,
	ContextKeyVoice,
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithChunkIndex returns a context carrying the chunk index.
func WithChunkIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, ContextKeyChunkIndex, strconv.Itoa(index))
}

// WithJobID returns a context carrying the remote job ID.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, ContextKeyJobID, jobID)
}

// WithVoice returns a context carrying the voice name.
func WithVoice(ctx context.Context, voice string) context.Context {
	return context.WithValue(ctx, ContextKeyVoice, voice)
}

// LoggingFields holds the context fields known to this package.
type LoggingFields struct {
	RequestID  string
	ChunkIndex string
	JobID      string
	Voice      string
}

// WithLoggingContext sets every non-empty field of fields on ctx.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.RequestID != "" {
		ctx = context.WithValue(ctx, ContextKeyRequestID, fields.RequestID)
	}
	if fields.ChunkIndex != "" {
		ctx = context.WithValue(ctx, ContextKeyChunkIndex, fields.ChunkIndex)
	}
	if fields.JobID != "" {
		ctx = context.WithValue(ctx, ContextKeyJobID, fields.JobID)
	}
	if fields.Voice != "" {
		ctx = context.WithValue(ctx, ContextKeyVoice, fields.Voice)
	}
	return ctx
}

// ExtractLoggingFields reads the known fields back from ctx.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	var fields LoggingFields
	fields.RequestID, _ = ctx.Value(ContextKeyRequestID).(string)
	fields.ChunkIndex, _ = ctx.Value(ContextKeyChunkIndex).(string)
	fields.JobID, _ = ctx.Value(ContextKeyJobID).(string)
	fields.Voice, _ = ctx.Value(ContextKeyVoice).(string)
	return fields
}
