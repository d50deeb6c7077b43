// Package audit records who encrypted and looked up what, without message text.
package audit

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents the type of audit event
type EventType string

const (
	EventMessageEncrypted  EventType = "message_encrypted"
	EventMessageDecrypted  EventType = "message_decrypted"
	EventLookupMissed      EventType = "lookup_missed"
	EventActionSkipped     EventType = "action_skipped"
	EventModeChanged       EventType = "mode_changed"
	EventPersistenceFailed EventType = "persistence_failed"
)

// Event represents an audit log event. Message text is never recorded.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	SessionID  string            `json:"session_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Source     string            `json:"source,omitempty"`
	Code       string            `json:"code,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	TextLength int               `json:"text_length,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Auditor is implemented by Logger and NopLogger
type Auditor interface {
	Log(event *Event)
	LogEncrypted(ctx context.Context, sessionID, code string, textLength int)
	LogDecrypted(ctx context.Context, sessionID, code string)
	LogLookupMissed(ctx context.Context, sessionID, code string)
	LogSkipped(ctx context.Context, sessionID, action string)
	LogModeChanged(ctx context.Context, sessionID, mode string)
	LogPersistenceFailed(ctx context.Context, sessionID, op, errorMsg string)
}

// RequestInfo describes where an action came from
type RequestInfo struct {
	RequestID string
	Source    string
	ClientIP  string
}

type requestInfoKey struct{}

// WithRequest attaches request details to ctx for events logged under it
func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// RequestFromContext returns the request details attached to ctx, if any
func RequestFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

func newEvent(ctx context.Context, eventType EventType, sessionID string) *Event {
	event := &Event{Type: eventType, SessionID: sessionID}
	if info, ok := RequestFromContext(ctx); ok {
		event.RequestID = info.RequestID
		event.Source = info.Source
		event.ClientIP = info.ClientIP
	}
	return event
}

// Config holds audit logger configuration
type Config struct {
	// Enabled enables/disables audit logging
	Enabled bool `yaml:"enabled"`

	// Level controls what events are logged
	// "minimal" - encryptions, decryptions and persistence failures
	// "standard" - minimal + lookup misses
	// "verbose" - all events including mode changes and skipped actions
	Level string `yaml:"level"`

	// Output specifies where to write logs
	// "stdout", "stderr", or a file path
	Output string `yaml:"output"`

	// Format specifies log format: "json" or "text"
	Format string `yaml:"format"`

	// IncludeRequestDetails includes client address in logs
	IncludeRequestDetails bool `yaml:"include_request_details"`
}

// DefaultConfig returns the default audit configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:               true,
		Level:                 "standard",
		Output:                "stdout",
		Format:                "json",
		IncludeRequestDetails: false,
	}
}

// Logger handles audit logging
type Logger struct {
	mu      sync.RWMutex
	config  *Config
	logger  zerolog.Logger
	output  io.Writer
	enabled bool
}

// NewLogger creates a new audit logger
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{
		config:  cfg,
		enabled: cfg.Enabled,
	}

	if err := l.setupOutput(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Logger) setupOutput() error {
	var output io.Writer

	switch l.config.Output {
	case "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		// File output
		f, err := os.OpenFile(l.config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //#nosec G304 -- operator-chosen audit path
		if err != nil {
			return err
		}
		output = f
	}

	l.output = output

	w := output
	if l.config.Format == "text" {
		w = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}
	l.logger = zerolog.New(w).With().Str("log", "audit").Logger()
	return nil
}

// Log logs an audit event
func (l *Logger) Log(event *Event) {
	l.mu.RLock()
	enabled := l.enabled
	level := l.config.Level
	details := l.config.IncludeRequestDetails
	logger := l.logger
	l.mu.RUnlock()

	if !enabled {
		return
	}

	// Check if event should be logged based on level
	if !shouldLog(level, event.Type) {
		return
	}

	event.Timestamp = time.Now()

	// Redact request details if not enabled
	if !details {
		event.ClientIP = ""
	}

	e := logger.Info().Time("timestamp", event.Timestamp).Str("type", string(event.Type))

	if event.SessionID != "" {
		e = e.Str("session_id", event.SessionID)
	}
	if event.RequestID != "" {
		e = e.Str("request_id", event.RequestID)
	}
	if event.Source != "" {
		e = e.Str("source", event.Source)
	}
	if event.Code != "" {
		e = e.Str("code", event.Code)
	}
	if event.Mode != "" {
		e = e.Str("mode", event.Mode)
	}
	if event.TextLength > 0 {
		e = e.Int("text_length", event.TextLength)
	}
	if event.ClientIP != "" {
		e = e.Str("client_ip", event.ClientIP)
	}
	if event.Error != "" {
		e = e.Str("error", event.Error)
	}
	for k, v := range event.Metadata {
		e = e.Str(k, v)
	}

	e.Msg("audit")
}

func shouldLog(level string, eventType EventType) bool {
	switch level {
	case "minimal":
		return eventType == EventMessageEncrypted ||
			eventType == EventMessageDecrypted ||
			eventType == EventPersistenceFailed
	case "standard":
		return eventType != EventModeChanged &&
			eventType != EventActionSkipped
	default:
		return true
	}
}

// LogEncrypted logs a stored message
func (l *Logger) LogEncrypted(ctx context.Context, sessionID, code string, textLength int) {
	event := newEvent(ctx, EventMessageEncrypted, sessionID)
	event.Code = code
	event.TextLength = textLength
	l.Log(event)
}

// LogDecrypted logs a successful lookup
func (l *Logger) LogDecrypted(ctx context.Context, sessionID, code string) {
	event := newEvent(ctx, EventMessageDecrypted, sessionID)
	event.Code = code
	l.Log(event)
}

// LogLookupMissed logs a lookup that matched nothing
func (l *Logger) LogLookupMissed(ctx context.Context, sessionID, code string) {
	event := newEvent(ctx, EventLookupMissed, sessionID)
	event.Code = code
	l.Log(event)
}

// LogSkipped logs an action dropped for empty or incomplete input
func (l *Logger) LogSkipped(ctx context.Context, sessionID, action string) {
	event := newEvent(ctx, EventActionSkipped, sessionID)
	event.Metadata = map[string]string{"action": action}
	l.Log(event)
}

// LogModeChanged logs a mode switch
func (l *Logger) LogModeChanged(ctx context.Context, sessionID, mode string) {
	event := newEvent(ctx, EventModeChanged, sessionID)
	event.Mode = mode
	l.Log(event)
}

// LogPersistenceFailed logs a failed store operation
func (l *Logger) LogPersistenceFailed(ctx context.Context, sessionID, op, errorMsg string) {
	event := newEvent(ctx, EventPersistenceFailed, sessionID)
	event.Error = errorMsg
	event.Metadata = map[string]string{"op": op}
	l.Log(event)
}

// Close closes the logger
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if closer, ok := l.output.(io.Closer); ok {
		if l.output != os.Stdout && l.output != os.Stderr {
			return closer.Close()
		}
	}
	return nil
}

// NopLogger is a logger that does nothing
type NopLogger struct{}

// NewNopLogger creates a no-op logger
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Log does nothing
func (l *NopLogger) Log(_ *Event) {}

// LogEncrypted does nothing
func (l *NopLogger) LogEncrypted(_ context.Context, _, _ string, _ int) {}

// LogDecrypted does nothing
func (l *NopLogger) LogDecrypted(_ context.Context, _, _ string) {}

// LogLookupMissed does nothing
func (l *NopLogger) LogLookupMissed(_ context.Context, _, _ string) {}

// LogSkipped does nothing
func (l *NopLogger) LogSkipped(_ context.Context, _, _ string) {}

// LogModeChanged does nothing
func (l *NopLogger) LogModeChanged(_ context.Context, _, _ string) {}

// LogPersistenceFailed does nothing
func (l *NopLogger) LogPersistenceFailed(_ context.Context, _, _, _ string) {}

// Close does nothing
func (l *NopLogger) Close() error { return nil }
