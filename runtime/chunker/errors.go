package chunker

import (
	"errors"
	"strconv"
)

// ErrInvalidMaxLength is returned when the chunk length limit is not positive.
var ErrInvalidMaxLength = errors.New("max chunk length must be positive")

// ChunkingError reports an unexpected failure while building chunk text.
// It never occurs for valid input and a positive limit.
type ChunkingError struct {
	// MaxLength is the limit the chunker was called with.
	MaxLength int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ChunkingError) Error() string {
	msg := "chunker: cannot divide text (max_length=" + strconv.Itoa(e.MaxLength) + ")"
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ChunkingError) Unwrap() error {
	return e.Cause
}
