// Package storage persists the encrypted message log in a key-value backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hfi/message-encryptor/internal/metrics"
)

// CollectionStore keeps every record as one JSON array under a single key.
// Each append reads the whole array, adds to it and writes it back, so two
// processes sharing a backend can overwrite each other's appends.
type CollectionStore struct {
	backend Backend
	key     string
	logger  zerolog.Logger
}

// NewCollectionStore creates a record log stored under key in backend
func NewCollectionStore(backend Backend, key string, logger zerolog.Logger) *CollectionStore {
	if key == "" {
		key = DefaultKey
	}
	return &CollectionStore{
		backend: backend,
		key:     key,
		logger:  logger.With().Str("component", "storage").Str("key", key).Logger(),
	}
}

// Key returns the storage key of the collection
func (s *CollectionStore) Key() string {
	return s.key
}

// Append adds record to the end of the collection
func (s *CollectionStore) Append(ctx context.Context, record Record) error {
	defer observe("append", time.Now())

	records, err := s.read(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		metrics.RecordPersistenceFailure("write")
		return fmt.Errorf("%w: failed to write %q: %w", ErrPersistence, s.key, err)
	}

	metrics.CollectionSize.Set(float64(len(records)))
	s.logger.Debug().Int("records", len(records)).Msg("record appended")
	return nil
}

// FindByCode returns the first record whose code equals code exactly
func (s *CollectionStore) FindByCode(ctx context.Context, code string) (Record, error) {
	defer observe("find", time.Now())

	records, err := s.read(ctx)
	if err != nil {
		return Record{}, err
	}

	for _, r := range records {
		if r.EncryptedCode == code {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// LoadAll returns the full collection in insertion order
func (s *CollectionStore) LoadAll(ctx context.Context) ([]Record, error) {
	defer observe("load", time.Now())

	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CollectionSize.Set(float64(len(records)))
	return records, nil
}

// Ping checks the backend
func (s *CollectionStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close closes the backend
func (s *CollectionStore) Close() error {
	return s.backend.Close()
}

// read loads the collection. Absent or unparseable data reads as empty.
func (s *CollectionStore) read(ctx context.Context) ([]Record, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		metrics.RecordPersistenceFailure("read")
		return nil, fmt.Errorf("%w: failed to read %q: %w", ErrPersistence, s.key, err)
	}
	if !ok {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		metrics.CorruptReadsTotal.Inc()
		s.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("stored collection is unparseable, treating as empty")
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreDuration(op, time.Since(start).Seconds())
}
