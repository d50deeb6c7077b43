// Package vault holds the state behind the encryptor front ends: the
// encode/lookup mode, each mode's pending input and last result, and the
// history view derived from the record store.
package vault

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hfi/message-encryptor/internal/audit"
	"github.com/hfi/message-encryptor/internal/metrics"
	"github.com/hfi/message-encryptor/internal/storage"
	"github.com/hfi/message-encryptor/pkg/codec"
)

// NotFoundMessage is shown when a lookup matches no stored record
const NotFoundMessage = "No matching message found"

// HistorySize is the number of recent records shown
const HistorySize = 3

var (
	// ErrEmptyInput is returned when encrypting blank text; nothing is stored
	ErrEmptyInput = errors.New("message is empty")

	// ErrIncompleteCode is returned when looking up fewer than four letters
	ErrIncompleteCode = errors.New("code must have 4 letters")
)

// IsSkipped reports whether err only means the action did not run
func IsSkipped(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrIncompleteCode)
}

// HistoryEntry is a record as shown in the history panel: no message text
type HistoryEntry struct {
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the entry's creation time
func (h HistoryEntry) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Snapshot is a read-only copy of the session state for rendering
type Snapshot struct {
	SessionID    string         `json:"session_id"`
	Mode         string         `json:"mode"`
	EncodeInput  string         `json:"encode_input"`
	EncodeResult string         `json:"encode_result"`
	LookupInput  string         `json:"lookup_input"`
	LookupReady  bool           `json:"lookup_ready"`
	LookupResult string         `json:"lookup_result"`
	History      []HistoryEntry `json:"history"`
}

// Session is a single user's encryptor state.
// Methods serialize on a mutex so shells may call them from any goroutine.
type Session struct {
	mu      sync.Mutex
	id      string
	store   storage.RecordStore
	auditor audit.Auditor
	logger  zerolog.Logger
	now     func() time.Time

	lastStamp int64
	mode      Mode

	encodeInput  string
	encodeResult string
	lookupInput  string
	lookupResult string

	records []storage.Record
}

// Option configures a Session
type Option func(*Session)

// WithAuditor sets the audit sink
func WithAuditor(a audit.Auditor) Option {
	return func(s *Session) { s.auditor = a }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID fixes the session id
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates a session in encode mode backed by store
func New(store storage.RecordStore, opts ...Option) *Session {
	s := &Session{
		id:      uuid.New().String(),
		store:   store,
		auditor: audit.NewNopLogger(),
		logger:  zerolog.Nop(),
		now:     time.Now,
		mode:    ModeEncode,
		records: []storage.Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Load reads the stored collection into the history view
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.auditor.LogPersistenceFailed(ctx, s.id, "load", err.Error())
		return err
	}
	s.records = records
	for _, r := range records {
		if r.Timestamp > s.lastStamp {
			s.lastStamp = r.Timestamp
		}
	}
	s.logger.Debug().Int("records", len(records)).Msg("session loaded")
	return nil
}

// Mode returns the current mode
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches to m. Inputs and results of both modes are kept.
func (s *Session) SetMode(ctx context.Context, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMode(ctx, m)
}

// Toggle switches to the other mode and returns it
func (s *Session) Toggle(ctx context.Context) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMode(ctx, s.mode.Other())
	return s.mode
}

func (s *Session) setMode(ctx context.Context, m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	s.auditor.LogModeChanged(ctx, s.id, m.String())
}

// SetEncodeInput replaces the pending message text
func (s *Session) SetEncodeInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encodeInput = text
}

// SetLookupInput normalizes raw and stores it as the pending code
func (s *Session) SetLookupInput(raw string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupInput = codec.NormalizeCodeInput(raw)
	return s.lookupInput
}

// Encrypted is the outcome of a stored message: its code and the history
// view right after the append, taken under the same lock.
type Encrypted struct {
	Code    string         `json:"code"`
	History []HistoryEntry `json:"history"`
}

// Encrypt encodes and stores the pending message and returns its code.
// Blank input returns ErrEmptyInput without touching the store. A failed
// write returns the error and leaves the input, result and history as they were.
func (s *Session) Encrypt(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.encrypt(ctx, s.encodeInput)
	return res.Code, err
}

// EncryptText sets the pending message to text and encrypts it in one step
func (s *Session) EncryptText(ctx context.Context, text string) (string, error) {
	res, err := s.EncryptTextWithHistory(ctx, text)
	return res.Code, err
}

// EncryptWithHistory is Encrypt, also returning the refreshed history
func (s *Session) EncryptWithHistory(ctx context.Context) (Encrypted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.encrypt(ctx, s.encodeInput)
}

// EncryptTextWithHistory is EncryptText, also returning the refreshed history
func (s *Session) EncryptTextWithHistory(ctx context.Context, text string) (Encrypted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.encodeInput = text
	return s.encrypt(ctx, text)
}

// encrypt stores text. The caller holds s.mu.
func (s *Session) encrypt(ctx context.Context, text string) (Encrypted, error) {
	if strings.TrimSpace(text) == "" {
		metrics.RecordSkipped("encode")
		s.auditor.LogSkipped(ctx, s.id, "encode")
		return Encrypted{}, ErrEmptyInput
	}

	code := codec.Encode(text)
	record := storage.Record{
		OriginalText:  text,
		EncryptedCode: code,
		Timestamp:     s.nextStamp(),
	}

	if err := s.store.Append(ctx, record); err != nil {
		s.auditor.LogPersistenceFailed(ctx, s.id, "append", err.Error())
		s.logger.Error().Err(err).Msg("failed to store message")
		return Encrypted{}, err
	}
	s.lastStamp = record.Timestamp

	s.encodeResult = code
	s.encodeInput = ""
	metrics.MessagesEncryptedTotal.Inc()
	s.auditor.LogEncrypted(ctx, s.id, code, len([]rune(text)))

	s.refresh(ctx)
	return Encrypted{Code: code, History: s.history()}, nil
}

// Decrypt looks up the pending code. found is false when nothing matched, in
// which case the result is NotFoundMessage. Fewer than four letters returns
// ErrIncompleteCode without reading the store.
func (s *Session) Decrypt(ctx context.Context) (text string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.decrypt(ctx, s.lookupInput)
}

// DecryptCode sets the pending code from raw and looks it up in one step
func (s *Session) DecryptCode(ctx context.Context, raw string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookupInput = codec.NormalizeCodeInput(raw)
	return s.decrypt(ctx, s.lookupInput)
}

// decrypt looks up code. The caller holds s.mu.
func (s *Session) decrypt(ctx context.Context, code string) (string, bool, error) {
	if !codec.IsCode(code) {
		metrics.RecordSkipped("lookup")
		s.auditor.LogSkipped(ctx, s.id, "lookup")
		return "", false, ErrIncompleteCode
	}

	record, err := s.store.FindByCode(ctx, code)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.lookupResult = NotFoundMessage
		metrics.RecordLookup(false)
		s.auditor.LogLookupMissed(ctx, s.id, code)
		return NotFoundMessage, false, nil
	case err != nil:
		s.auditor.LogPersistenceFailed(ctx, s.id, "find", err.Error())
		s.logger.Error().Err(err).Str("code", code).Msg("failed to look up code")
		return "", false, err
	}

	s.lookupResult = record.OriginalText
	metrics.RecordLookup(true)
	s.auditor.LogDecrypted(ctx, s.id, code)
	return record.OriginalText, true, nil
}

// History returns the most recent records, newest first
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history()
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SessionID:    s.id,
		Mode:         s.mode.String(),
		EncodeInput:  s.encodeInput,
		EncodeResult: s.encodeResult,
		LookupInput:  s.lookupInput,
		LookupReady:  codec.IsCode(s.lookupInput),
		LookupResult: s.lookupResult,
		History:      s.history(),
	}
}

// Ping checks the record store
func (s *Session) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// refresh re-reads the whole collection after a write. The store is the
// source of truth; on a failed read the previous view is kept.
func (s *Session) refresh(ctx context.Context) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh history")
		return
	}
	s.records = records
}

func (s *Session) history() []HistoryEntry {
	n := len(s.records)
	start := n - HistorySize
	if start < 0 {
		start = 0
	}

	entries := make([]HistoryEntry, 0, n-start)
	for i := n - 1; i >= start; i-- {
		entries = append(entries, HistoryEntry{
			Code:      s.records[i].EncryptedCode,
			Timestamp: s.records[i].Timestamp,
		})
	}
	return entries
}

// nextStamp returns the current time in ms, never earlier than the last record
func (s *Session) nextStamp() int64 {
	ms := s.now().UnixMilli()
	if ms < s.lastStamp {
		return s.lastStamp
	}
	return ms
}
