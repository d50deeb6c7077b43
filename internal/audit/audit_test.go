package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileLogger(t *testing.T, cfg *Config) (*Logger, string) {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "audit.log")
	cfg.Output = logFile
	if cfg.Format == "" {
		cfg.Format = "json"
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, logFile
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogger_Log(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "verbose"})

	logger.Log(&Event{
		Type:      EventMessageEncrypted,
		SessionID: "sess-123",
		Code:      "UXEE",
	})

	content := readLog(t, logFile)
	if !strings.Contains(content, "message_encrypted") {
		t.Error("Log should contain 'message_encrypted'")
	}
	if !strings.Contains(content, "sess-123") {
		t.Error("Log should contain session ID")
	}
	if !strings.Contains(content, `"code":"UXEE"`) {
		t.Error("Log should contain code")
	}
}

func TestLogger_LogLevel_Minimal(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "minimal"})
	ctx := context.Background()

	logger.LogEncrypted(ctx, "sess-1", "UXEE", 5)
	logger.LogLookupMissed(ctx, "sess-2", "ABCD")
	logger.LogModeChanged(ctx, "sess-3", "lookup")

	content := readLog(t, logFile)
	if !strings.Contains(content, "sess-1") {
		t.Error("Should contain encryption event")
	}
	if strings.Contains(content, "sess-2") {
		t.Error("Should NOT contain lookup miss at minimal level")
	}
	if strings.Contains(content, "sess-3") {
		t.Error("Should NOT contain mode change at minimal level")
	}
}

func TestLogger_LogLevel_Standard(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "standard"})
	ctx := context.Background()

	logger.LogDecrypted(ctx, "sess-1", "UXEE")
	logger.LogLookupMissed(ctx, "sess-2", "ABCD")
	logger.LogSkipped(ctx, "sess-3", "encode")

	content := readLog(t, logFile)
	if !strings.Contains(content, "sess-1") {
		t.Error("Should contain decryption event")
	}
	if !strings.Contains(content, "sess-2") {
		t.Error("Should contain lookup miss event")
	}
	if strings.Contains(content, "sess-3") {
		t.Error("Should NOT contain skipped action at standard level")
	}
}

func TestLogger_Disabled(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: false, Level: "verbose"})

	logger.LogEncrypted(context.Background(), "sess-1", "UXEE", 5)

	if content := readLog(t, logFile); len(content) > 0 {
		t.Error("Log file should be empty when logging is disabled")
	}
}

func TestLogger_RequestDetails(t *testing.T) {
	ctx := WithRequest(context.Background(), RequestInfo{
		RequestID: "req-42",
		Source:    "web",
		ClientIP:  "192.0.2.7",
	})

	// Without request details
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "verbose"})
	logger.LogDecrypted(ctx, "sess-1", "UXEE")

	content := readLog(t, logFile)
	if strings.Contains(content, "192.0.2.7") {
		t.Error("Client IP should be redacted when IncludeRequestDetails is false")
	}
	if !strings.Contains(content, "req-42") || !strings.Contains(content, `"source":"web"`) {
		t.Error("request id and source should always be logged")
	}

	// With request details
	logger2, logFile2 := newFileLogger(t, &Config{Enabled: true, Level: "verbose", IncludeRequestDetails: true})
	logger2.LogDecrypted(ctx, "sess-1", "UXEE")

	if !strings.Contains(readLog(t, logFile2), "192.0.2.7") {
		t.Error("Client IP should be included when IncludeRequestDetails is true")
	}
}

func TestLogger_PersistenceFailed(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "minimal"})

	logger.LogPersistenceFailed(context.Background(), "sess-1", "append", "quota exceeded")

	content := readLog(t, logFile)
	if !strings.Contains(content, "persistence_failed") || !strings.Contains(content, "quota exceeded") {
		t.Errorf("log = %s, want persistence failure with error", content)
	}
	if !strings.Contains(content, `"op":"append"`) {
		t.Error("Log should contain op metadata")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	logger, logFile := newFileLogger(t, &Config{Enabled: true, Level: "verbose", Format: "text"})

	logger.LogEncrypted(context.Background(), "sess-1", "UXEE", 5)

	content := readLog(t, logFile)
	if !strings.Contains(content, "message_encrypted") {
		t.Errorf("text log = %q, want event type", content)
	}
	if strings.HasPrefix(strings.TrimSpace(content), "{") {
		t.Error("text format should not emit JSON")
	}
}

func TestLogger_StdoutOutput(t *testing.T) {
	logger, err := NewLogger(&Config{Enabled: true, Level: "verbose", Output: "stdout", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	defer logger.Close()

	// Should not panic
	logger.LogEncrypted(context.Background(), "sess-1", "UXEE", 5)
}

func TestNopLogger(t *testing.T) {
	var logger Auditor = NewNopLogger()
	ctx := context.Background()

	// All these should do nothing without panicking
	logger.Log(&Event{Type: EventMessageEncrypted})
	logger.LogEncrypted(ctx, "s", "UXEE", 5)
	logger.LogDecrypted(ctx, "s", "UXEE")
	logger.LogLookupMissed(ctx, "s", "UXEE")
	logger.LogSkipped(ctx, "s", "encode")
	logger.LogModeChanged(ctx, "s", "lookup")
	logger.LogPersistenceFailed(ctx, "s", "append", "boom")

	if err := NewNopLogger().Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestLogger_Interface(t *testing.T) {
	var _ Auditor = (*Logger)(nil)
	var _ Auditor = (*NopLogger)(nil)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Enabled {
		t.Error("Default config should be enabled")
	}
	if cfg.Level != "standard" {
		t.Errorf("Default level = %q, want 'standard'", cfg.Level)
	}
	if cfg.Output != "stdout" {
		t.Errorf("Default output = %q, want 'stdout'", cfg.Output)
	}
	if cfg.Format != "json" {
		t.Errorf("Default format = %q, want 'json'", cfg.Format)
	}
}
