package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_FileJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	logger, closer, err := New(Config{Level: "debug", Format: "json", Output: logFile})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Debug().Str("code", "UXEE").Msg("stored")
	logger.Trace().Msg("hidden")
	closer.Close()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"code":"UXEE"`) {
		t.Errorf("log = %s, want code field", content)
	}
	if strings.Contains(string(content), "hidden") {
		t.Error("trace event should be filtered at debug level")
	}
}

func TestNew_Levels(t *testing.T) {
	testCases := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logger, _, err := New(Config{Level: tc.level, Output: "discard"})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if logger.GetLevel() != tc.want {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tc.want)
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() with invalid level should fail")
	}
}

func TestNew_BadOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "app.log")
	if _, _, err := New(Config{Level: "info", Output: path}); err == nil {
		t.Error("New() with unwritable output should fail")
	}
}
