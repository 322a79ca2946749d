package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewSounds_Defaults(t *testing.T) {
	client := NewSounds(SoundsConfig{})
	cfg := client.Config()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "google", cfg.Engine)
	assert.Equal(t, "pt-BR", cfg.Voice)
	assert.Equal(t, "https://soundoftext.com/", cfg.Referer)
	assert.Equal(t, "https://soundoftext.com", cfg.Origin)
	assert.Equal(t, 200*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.PollTimeout)
	assert.Zero(t, cfg.RenderTimeout)
	assert.Nil(t, client.limiter, "limiter should be nil without a submit rate")
	assert.Equal(t, "sounds", client.Name())
}

func TestNewSounds_WithOptions(t *testing.T) {
	custom := &http.Client{}
	client := NewSounds(SoundsConfig{Voice: "en-US", SubmitRate: 5}, WithSoundsHTTPClient(custom))

	assert.Same(t, custom, client.client)
	assert.Equal(t, "en-US", client.Config().Voice)
	require.NotNil(t, client.limiter)
	assert.Equal(t, 1, client.limiter.Burst())
}

func TestSoundsClient_Submit_EmptyText(t *testing.T) {
	client := NewSounds(DefaultSoundsConfig())
	_, err := client.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestSoundsClient_Submit_WireFormat(t *testing.T) {
	fake := newFakeSounds(t)
	client := fake.start(SoundsConfig{Engine: "google", Voice: "pt-BR"})

	job, err := client.Submit(context.Background(), "Olá, mundo.")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, JobPending, job.Status)
	assert.Equal(t, "Olá, mundo.", job.Text)

	require.Len(t, fake.submissions, 1)
	assert.Equal(t, SoundRequest{
		Engine: "google",
		Data:   SoundRequestData{Text: "Olá, mundo.", Voice: "pt-BR"},
	}, fake.submissions[0])

	h := fake.headers[0]
	assert.Equal(t, DefaultReferer, h.Get("Referer"))
	assert.Equal(t, DefaultOrigin, h.Get("Origin"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestSoundsClient_Submit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		respond    func(w http.ResponseWriter)
		wantStatus int
		wantCause  error
	}{
		{
			name: "server error",
			respond: func(w http.ResponseWriter) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "undecodable body",
			respond: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte("<html>"))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "missing id",
			respond: func(w http.ResponseWriter) {
				writeJSON(w, http.StatusOK, map[string]string{})
			},
			wantStatus: http.StatusOK,
			wantCause:  ErrMissingJobID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSounds(t)
			fake.submit = func(w http.ResponseWriter, _ SoundRequest) bool {
				tt.respond(w)
				return true
			}
			client := fake.start(SoundsConfig{})

			_, err := client.Submit(context.Background(), "Oi.")
			var subErr *SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.wantStatus, subErr.StatusCode)
			assert.Equal(t, "Oi.", subErr.Request.Data.Text)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestSoundsClient_Submit_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewSounds(SoundsConfig{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), "Oi.")

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Zero(t, subErr.StatusCode)
	assert.Error(t, subErr.Cause)
}

func TestSoundsClient_Render_PendingThenDone(t *testing.T) {
	fake := newFakeSounds(t)
	fake.pendingPolls = 1
	client := fake.start(SoundsConfig{})

	location, err := client.Render(context.Background(), "Olá.")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/job-1.mp3", location)
	assert.Equal(t, 2, fake.pollCount("job-1"))
}

func TestSoundsClient_Poll_PendingIsCaseInsensitive(t *testing.T) {
	fake := newFakeSounds(t)
	fake.finish = func(w http.ResponseWriter, _, _ string) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
	}
	client := fake.start(SoundsConfig{})

	job, err := client.Submit(context.Background(), "Oi.")
	require.NoError(t, err)

	done, err := client.Poll(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, JobPending, job.Status)
	assert.Equal(t, 1, job.Polls())
}

func TestSoundsClient_Render_DoneWithoutLocation(t *testing.T) {
	fake := newFakeSounds(t)
	fake.finish = func(w http.ResponseWriter, _, _ string) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Error", "message": "voice unavailable"})
	}
	client := fake.start(SoundsConfig{})

	_, err := client.Render(context.Background(), "Oi.")

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.ErrorIs(t, err, ErrMissingLocation)
	assert.Equal(t, "job-1", protoErr.JobID)
	assert.Equal(t, "Error", protoErr.Status)
	assert.Equal(t, "voice unavailable", protoErr.Message)
	assert.Contains(t, protoErr.Body, "voice unavailable")
	assert.Equal(t, "Oi.", protoErr.Request.Data.Text)
}

func TestSoundsClient_Poll_UndecodableBody(t *testing.T) {
	fake := newFakeSounds(t)
	fake.finish = func(w http.ResponseWriter, _, _ string) {
		_, _ = w.Write([]byte("not json"))
	}
	client := fake.start(SoundsConfig{})

	job, err := client.Submit(context.Background(), "Oi.")
	require.NoError(t, err)

	done, err := client.Poll(context.Background(), job)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.True(t, done)
	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, "not json", protoErr.Body)
}

func TestSoundsClient_Poll_StatusError(t *testing.T) {
	fake := newFakeSounds(t)
	fake.finish = func(w http.ResponseWriter, _, _ string) {
		http.Error(w, "gone", http.StatusNotFound)
	}
	client := fake.start(SoundsConfig{})

	_, err := client.Render(context.Background(), "Oi.")

	var pollErr *PollError
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, http.StatusNotFound, pollErr.StatusCode)
	assert.Equal(t, "job-1", pollErr.JobID)
	assert.Equal(t, 1, fake.pollCount("job-1"), "errors must not be retried")
}

func TestSoundsClient_Render_Timeout(t *testing.T) {
	fake := newFakeSounds(t)
	fake.pendingPolls = 1 << 30
	client := fake.start(SoundsConfig{RenderTimeout: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond})

	_, err := client.Render(context.Background(), "Oi.")

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "job-1", timeoutErr.JobID)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
	assert.ErrorIs(t, err, ErrRenderTimeout)
}

func TestSoundsClient_Render_CallerCancel(t *testing.T) {
	fake := newFakeSounds(t)
	fake.pendingPolls = 1 << 30
	client := fake.start(SoundsConfig{RenderTimeout: time.Minute, PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := client.Render(ctx, "Oi.")

	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "caller deadline must not be reported as TimeoutError")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSoundsClient_Render_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	fake := newFakeSounds(t)
	fake.pendingPolls = 2
	client := fake.start(SoundsConfig{}, WithSoundsTracerProvider(tp))

	_, err := client.Render(context.Background(), "Olá.")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "soundtext.render", span.Name())
	assert.Contains(t, span.Attributes(), attribute.String("soundtext.job_id", "job-1"))
	assert.Contains(t, span.Attributes(), attribute.Int("soundtext.polls", 3))
	assert.Contains(t, span.Attributes(), attribute.Int("soundtext.text_length", 4))
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSoundsClient_SubmitRateLimit(t *testing.T) {
	fake := newFakeSounds(t)
	client := fake.start(SoundsConfig{SubmitRate: 1000, SubmitBurst: 2})

	for range 3 {
		_, err := client.Submit(context.Background(), "Oi.")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fake.submissionCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Submit(ctx, "Oi.")
	var subErr *SubmissionError
	assert.ErrorAs(t, err, &subErr, "limiter wait failure is a submission error")
}
