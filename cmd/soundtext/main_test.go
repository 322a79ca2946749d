package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// soundsStub answers every submission with a new id and every poll with Done.
type soundsStub struct {
	mu     sync.Mutex
	voices []string
	texts  map[string]string
}

func newSoundsStub(t *testing.T) (*soundsStub, *httptest.Server) {
	t.Helper()
	stub := &soundsStub{texts: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		stub.mu.Lock()
		defer stub.mu.Unlock()

		if r.Method == http.MethodPost {
			var req struct {
				Data struct {
					Text  string `json:"text"`
					Voice string `json:"voice"`
				} `json:"data"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			id := fmt.Sprintf("id%d", len(stub.voices))
			stub.voices = append(stub.voices, req.Data.Voice)
			stub.texts[id] = req.Data.Text
			_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/sounds/")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":   "Done",
			"location": "https://files.example.com/" + id + ".mp3",
		})
	}))
	t.Cleanup(server.Close)
	return stub, server
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSpeak_PrintsLocationsInOrder(t *testing.T) {
	stub, server := newSoundsStub(t)

	out, err := execute(t, "", "speak", "--base-url", server.URL, "--max-length", "5", "um.", "dois.")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for i, line := range lines {
		id := strings.TrimSuffix(strings.TrimPrefix(line, "https://files.example.com/"), ".mp3")
		want := []string{"um.", " dois."}[i]
		assert.Equal(t, want, stub.texts[id], "line %d", i)
	}
}

func TestSpeak_ReadsStdin(t *testing.T) {
	_, server := newSoundsStub(t)

	out, err := execute(t, "Olá, mundo.\n", "speak", "--base-url", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/id0.mp3\n", out)
}

func TestSpeak_EmptyTextPrintsNothing(t *testing.T) {
	_, server := newSoundsStub(t)

	out, err := execute(t, "", "speak", "--base-url", server.URL)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSpeak_EnvironmentOverridesConfigAndFlagsOverrideEnvironment(t *testing.T) {
	stub, server := newSoundsStub(t)

	path := filepath.Join(t.TempDir(), "soundtext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`apiVersion: soundtext.dev/v1alpha1
kind: SoundtextConfig
spec:
  service:
    voice: fr-FR
`), 0o600))

	t.Setenv("SOUNDTEXT_BASE_URL", server.URL)

	_, err := execute(t, "", "speak", "--config", path, "Oi.")
	require.NoError(t, err)

	t.Setenv("SOUNDTEXT_VOICE", "es-ES")
	_, err = execute(t, "", "speak", "--config", path, "Oi.")
	require.NoError(t, err)

	_, err = execute(t, "", "speak", "--config", path, "--voice", "en-US", "Oi.")
	require.NoError(t, err)

	assert.Equal(t, []string{"fr-FR", "es-ES", "en-US"}, stub.voices)
}

func TestSpeak_ServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := execute(t, "", "speak", "--base-url", server.URL, "Oi.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit failed")
}

func TestSpeak_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: Nope\n"), 0o600))

	_, err := execute(t, "", "speak", "--config", path, "Oi.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestChunk(t *testing.T) {
	out, err := execute(t, "", "chunk", "--max-length", "5", "um. dois.")
	require.NoError(t, err)
	assert.Equal(t, "0\t3\t\"um.\"\n1\t6\t\" dois.\"\n", out)
}

func TestChunk_NegativeMaxLength(t *testing.T) {
	_, err := execute(t, "", "chunk", "--max-length", "-1", "um.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxLength")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "soundtext version")
}

func TestServeMetrics(t *testing.T) {
	stop, err := serveMetrics(t.Context(), "")
	require.NoError(t, err)
	stop()

	stop, err = serveMetrics(t.Context(), "127.0.0.1:0")
	require.NoError(t, err)
	stop()

	_, err = serveMetrics(t.Context(), "not-an-address")
	assert.Error(t, err)
}
