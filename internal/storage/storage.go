package storage

import (
	"context"
	"errors"
)

// DefaultKey is the storage key holding the serialized record collection
const DefaultKey = "encryptedMessages"

var (
	// ErrNotFound is returned when no stored record carries the requested code
	ErrNotFound = errors.New("no matching record")

	// ErrPersistence marks failures of the backing key-value store
	ErrPersistence = errors.New("persistence unavailable")

	// ErrQuotaExceeded is returned by a backend that refuses a write for size reasons
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Record is one encrypted message. Field names are part of the stored format.
type Record struct {
	OriginalText  string `json:"originalText"`
	EncryptedCode string `json:"encryptedCode"`
	Timestamp     int64  `json:"timestamp"` // ms since epoch
}

// RecordStore defines the append-only record log
type RecordStore interface {
	// Append adds a record to the end of the persisted collection
	Append(ctx context.Context, record Record) error

	// FindByCode returns the first record, in insertion order, with the given code
	FindByCode(ctx context.Context, code string) (Record, error)

	// LoadAll returns the full collection in insertion order
	LoadAll(ctx context.Context) ([]Record, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases any resources
	Close() error
}

// Backend is a key-value store holding whole serialized values
type Backend interface {
	// Get returns the value under key; ok is false when nothing is stored
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the value under key in a single call
	Set(ctx context.Context, key, value string) error

	// Ping checks connectivity
	Ping(ctx context.Context) error

	// Close releases any resources
	Close() error
}
