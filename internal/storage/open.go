package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Backend types
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

// Config contains record storage settings
type Config struct {
	Type        string      `yaml:"type"` // "memory", "file", "sqlite" or "redis"
	Key         string      `yaml:"key"`
	DataDir     string      `yaml:"data_dir"`
	SQLitePath  string      `yaml:"sqlite_path"`
	MemoryQuota int         `yaml:"memory_quota"`
	Redis       RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"` //#nosec G117 -- Password field is intentional for Redis auth config
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DefaultConfig returns file storage under ./data
func DefaultConfig() Config {
	return Config{
		Type:        TypeFile,
		Key:         DefaultKey,
		DataDir:     "./data",
		MemoryQuota: 5 << 20,
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "encryptor:",
		},
	}
}

// OpenBackend creates the backend selected by cfg.Type
func OpenBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemoryBackend(cfg.MemoryQuota), nil
	case TypeFile:
		return NewFileBackend(cfg.DataDir)
	case TypeSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "encryptor.db")
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return NewSQLiteBackend(ctx, path)
	case TypeRedis:
		return NewRedisBackend(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// Open creates the configured backend and wraps it in a CollectionStore
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*CollectionStore, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("type", cfg.Type).Msg("storage backend ready")
	return NewCollectionStore(backend, cfg.Key, logger), nil
}
