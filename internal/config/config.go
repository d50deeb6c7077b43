// Package config provides configuration management for the message encryptor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hfi/message-encryptor/internal/audit"
	"github.com/hfi/message-encryptor/internal/logging"
	"github.com/hfi/message-encryptor/internal/server"
	"github.com/hfi/message-encryptor/internal/storage"
	"github.com/hfi/message-encryptor/internal/tui"
	"github.com/hfi/message-encryptor/internal/web"
)

// Config represents the main configuration structure
type Config struct {
	Storage    storage.Config `yaml:"storage"`
	Web        web.Config     `yaml:"web"`
	Management server.Config  `yaml:"management"`
	Logging    logging.Config `yaml:"logging"`
	Audit      audit.Config   `yaml:"audit"`
	TUI        tui.Config     `yaml:"tui"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage:    storage.DefaultConfig(),
		Web:        web.DefaultConfig(),
		Management: *server.DefaultConfig(),
		Logging:    logging.DefaultConfig(),
		Audit:      *audit.DefaultConfig(),
		TUI:        tui.DefaultConfig(),
	}
}

// Load loads the configuration from file and environment.
// A .env file in the working directory is applied first if present.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path falls back to
// CONFIG_PATH, then config.yaml.
func LoadFrom(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Check for config file path in environment or use default
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := LoadFile(sanitizeConfigPath(configPath))
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //#nosec G304 -- config path is sanitized by the caller
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides selected settings from ENCRYPTOR_* variables
func applyEnv(cfg *Config) {
	if v := os.Getenv("ENCRYPTOR_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("ENCRYPTOR_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ENCRYPTOR_REDIS_ADDRESS"); v != "" {
		cfg.Storage.Redis.Address = v
	}
	if v := os.Getenv("ENCRYPTOR_REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("ENCRYPTOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ENCRYPTOR_LISTEN"); v != "" {
		cfg.Web.Listen = v
	}
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Type {
	case storage.TypeMemory, storage.TypeFile, storage.TypeSQLite, storage.TypeRedis:
	default:
		errs = append(errs, fmt.Errorf("storage.type %q is not one of memory, file, sqlite, redis", c.Storage.Type))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}
	if c.Storage.Type == storage.TypeFile && c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data_dir is required for file storage"))
	}
	if c.Storage.MemoryQuota < 0 {
		errs = append(errs, errors.New("storage.memory_quota must not be negative"))
	}
	if c.Web.RateLimit < 0 {
		errs = append(errs, errors.New("web.rate_limit must not be negative"))
	}
	if c.Web.RateLimit > 0 && c.Web.RateBurst < 1 {
		errs = append(errs, errors.New("web.rate_burst must be at least 1 when rate limiting"))
	}

	return errors.Join(errs...)
}

// sanitizeConfigPath cleans and validates a config file path
func sanitizeConfigPath(path string) string {
	// Clean the path to remove any . or .. components
	cleaned := filepath.Clean(path)

	// If path is absolute, use it as-is (operator explicitly set full path)
	// If relative, ensure it doesn't escape the current directory
	if !filepath.IsAbs(cleaned) {
		// Remove any leading ../ components for relative paths
		for len(cleaned) > 2 && cleaned[:3] == "../" {
			cleaned = cleaned[3:]
		}
		if cleaned == ".." {
			cleaned = "config.yaml"
		}
	}

	return cleaned
}
