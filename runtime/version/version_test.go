package version

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/soundtext/soundtext/runtime/logger"
)

// withVersionVars temporarily sets version variables and restores them after the test.
func withVersionVars(t *testing.T, v, commit, date string, fn func()) {
	t.Helper()
	origVersion, origCommit, origDate := version, gitCommit, buildDate
	defer func() {
		version, gitCommit, buildDate = origVersion, origCommit, origDate
	}()
	version, gitCommit, buildDate = v, commit, date
	fn()
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if v == "" {
		t.Error("GetVersion() returned empty string")
	}
}

func TestGetVersion_NonDev(t *testing.T) {
	withVersionVars(t, "1.0.0", "", "", func() {
		if v := GetVersion(); v != "1.0.0" {
			t.Errorf("Expected '1.0.0', got '%s'", v)
		}
	})
}

func TestGetVersionInfo(t *testing.T) {
	withVersionVars(t, "1.2.3", "abc1234", "2026-01-02", func() {
		info := GetVersionInfo()
		want := "soundtext version 1.2.3\ncommit: abc1234\nbuilt: 2026-01-02"
		if info != want {
			t.Errorf("GetVersionInfo() = %q, want %q", info, want)
		}
	})
}

func TestGetBuildInfo(t *testing.T) {
	withVersionVars(t, "1.2.3", "abc1234", "2026-01-02", func() {
		attrs := GetBuildInfo()
		want := []any{"version", "1.2.3", "commit", "abc1234", "built", "2026-01-02"}
		if len(attrs) != len(want) {
			t.Fatalf("GetBuildInfo() = %v, want %v", attrs, want)
		}
		for i := range want {
			if attrs[i] != want[i] {
				t.Errorf("attrs[%d] = %v, want %v", i, attrs[i], want[i])
			}
		}
	})
}

func TestLogStartup(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(slog.LevelDebug)
	defer func() {
		logger.SetOutput(nil)
		logger.SetLevel(slog.LevelInfo)
	}()

	withVersionVars(t, "1.2.3", "", "", LogStartup)

	if !strings.Contains(buf.String(), "soundtext starting") || !strings.Contains(buf.String(), "version=1.2.3") {
		t.Errorf("startup log missing version: %s", buf.String())
	}
}
