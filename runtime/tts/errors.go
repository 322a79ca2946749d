package tts

import (
	"errors"
	"fmt"
	"time"
)

// Common sounds service errors.
var (
	// ErrEmptyText is returned when attempting to render empty text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrMissingJobID is returned when a submission is accepted without an id.
	ErrMissingJobID = errors.New("sounds service returned no job id")

	// ErrMissingLocation is returned when a job leaves the pending state
	// without a location.
	ErrMissingLocation = errors.New("sounds service returned a finished job without location")

	// ErrRenderTimeout is the cause of a TimeoutError.
	ErrRenderTimeout = errors.New("render deadline exceeded")
)

// SubmissionError is returned when a job cannot be created.
type SubmissionError struct {
	// Request is the payload that was submitted.
	Request SoundRequest

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the response body, if one was read.
	Body string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("sounds: submit failed (voice=%s, text=%q)", e.Request.Data.Voice, e.Request.Data.Text)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// NewSubmissionError creates a new SubmissionError.
func NewSubmissionError(req SoundRequest, statusCode int, body string, cause error) *SubmissionError {
	return &SubmissionError{Request: req, StatusCode: statusCode, Body: body, Cause: cause}
}

// PollError is returned when a status request fails at the transport or HTTP level.
type PollError struct {
	JobID      string
	Request    SoundRequest
	StatusCode int
	Body       string
	Cause      error
}

// Error implements the error interface.
func (e *PollError) Error() string {
	msg := fmt.Sprintf("sounds: poll failed (job=%s)", e.JobID)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *PollError) Unwrap() error {
	return e.Cause
}

// NewPollError creates a new PollError.
func NewPollError(job *RenderJob, statusCode int, body string, cause error) *PollError {
	return &PollError{
		JobID:      job.ID,
		Request:    job.Request,
		StatusCode: statusCode,
		Body:       body,
		Cause:      cause,
	}
}

// ProtocolError is returned when the sounds service answers with something
// that violates its contract: an undecodable status body, or a finished job
// without a location.
type ProtocolError struct {
	JobID   string
	Request SoundRequest

	// Status is the status string reported by the service, if decoded.
	Status string

	// Message is the service's explanation, if it sent one.
	Message string

	// Body is the raw response body.
	Body string

	Cause error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("sounds: protocol violation (job=%s", e.JobID)
	if e.Status != "" {
		msg += ", status=" + e.Status
	}
	msg += ")"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(job *RenderJob, status, body string, cause error) *ProtocolError {
	return &ProtocolError{
		JobID:   job.ID,
		Request: job.Request,
		Status:  status,
		Body:    body,
		Cause:   cause,
	}
}

// TimeoutError is returned when a render exceeds its overall deadline.
type TimeoutError struct {
	// JobID is empty when the deadline expired before submission completed.
	JobID   string
	Timeout time.Duration
	Cause   error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("sounds: render timed out after %s", e.Timeout)
	if e.JobID != "" {
		msg += " (job=" + e.JobID + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(jobID string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{JobID: jobID, Timeout: timeout, Cause: ErrRenderTimeout}
}
