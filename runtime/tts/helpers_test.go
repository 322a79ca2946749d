package tts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeSounds is an in-memory sounds service. Each submitted job answers
// Pending for pendingPolls status requests, then the result of finish.
type fakeSounds struct {
	t *testing.T

	mu           sync.Mutex
	nextID       int
	submissions  []SoundRequest
	headers      []http.Header
	polls        map[string]int
	texts        map[string]string
	pendingPolls int

	// submit overrides the submission response when set.
	submit func(w http.ResponseWriter, req SoundRequest) bool

	// finish writes the final status response for a job.
	finish func(w http.ResponseWriter, id, text string)
}

func newFakeSounds(t *testing.T) *fakeSounds {
	t.Helper()
	return &fakeSounds{
		t:     t,
		polls: map[string]int{},
		texts: map[string]string{},
		finish: func(w http.ResponseWriter, id, _ string) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":   "Done",
				"location": "https://files.example.com/" + id + ".mp3",
			})
		},
	}
}

func (f *fakeSounds) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/sounds":
		var req SoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.submissions = append(f.submissions, req)
		f.nextID++
		id := fmt.Sprintf("job-%d", f.nextID)
		f.texts[id] = req.Data.Text
		f.mu.Unlock()

		if f.submit != nil && f.submit(w, req) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/sounds/"):
		id := strings.TrimPrefix(r.URL.Path, "/sounds/")
		f.mu.Lock()
		f.polls[id]++
		n := f.polls[id]
		text := f.texts[id]
		f.mu.Unlock()

		if n <= f.pendingPolls {
			writeJSON(w, http.StatusOK, map[string]string{"status": "Pending"})
			return
		}
		f.finish(w, id, text)

	default:
		assert.Failf(f.t, "unexpected request", "%s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSounds) submissionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

func (f *fakeSounds) pollCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[id]
}

// start serves f and returns a client pointed at it with a fast poll interval.
func (f *fakeSounds) start(cfg SoundsConfig, opts ...SoundsOption) *SoundsClient {
	f.t.Helper()
	server := httptest.NewServer(f)
	f.t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Millisecond
	}
	opts = append([]SoundsOption{WithSoundsHTTPClient(server.Client())}, opts...)
	return NewSounds(cfg, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
