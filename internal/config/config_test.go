package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hfi/message-encryptor/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Type != storage.TypeFile {
		t.Errorf("Storage.Type = %q, want file", cfg.Storage.Type)
	}
	if cfg.Storage.Key != storage.DefaultKey {
		t.Errorf("Storage.Key = %q, want %q", cfg.Storage.Key, storage.DefaultKey)
	}
	if cfg.Management.MetricsPath != "/metrics" {
		t.Errorf("Management.MetricsPath = %q", cfg.Management.MetricsPath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Web.Listen != DefaultConfig().Web.Listen {
		t.Errorf("Web.Listen = %q, want default", cfg.Web.Listen)
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: sqlite
  sqlite_path: /tmp/enc.db
web:
  listen: ":9999"
  rate_limit: 2.5
  limiter_ttl: 30m
logging:
  level: debug
  format: json
audit:
  enabled: false
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Storage.Type != storage.TypeSQLite || cfg.Storage.SQLitePath != "/tmp/enc.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	// Unset fields keep their defaults
	if cfg.Storage.Key != storage.DefaultKey {
		t.Errorf("Storage.Key = %q, want default", cfg.Storage.Key)
	}
	if cfg.Web.Listen != ":9999" || cfg.Web.RateLimit != 2.5 {
		t.Errorf("Web = %+v", cfg.Web)
	}
	if cfg.Web.LimiterTTL != 30*time.Minute {
		t.Errorf("Web.LimiterTTL = %v, want 30m", cfg.Web.LimiterTTL)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unclosed")

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() with invalid YAML should fail")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  type: memory\n")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ENCRYPTOR_STORAGE_TYPE", "redis")
	t.Setenv("ENCRYPTOR_REDIS_ADDRESS", "cache:6379")
	t.Setenv("ENCRYPTOR_LOG_LEVEL", "warn")
	t.Setenv("ENCRYPTOR_LISTEN", ":7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Type != storage.TypeRedis {
		t.Errorf("Storage.Type = %q, want redis", cfg.Storage.Type)
	}
	if cfg.Storage.Redis.Address != "cache:6379" {
		t.Errorf("Redis.Address = %q", cfg.Storage.Redis.Address)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Web.Listen != ":7000" {
		t.Errorf("Web.Listen = %q, want :7000", cfg.Web.Listen)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "storage:\n  type: floppy\n")
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "floppy") {
		t.Errorf("Load() error = %v, want storage type error", err)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown storage", func(c *Config) { c.Storage.Type = "tape" }, "storage.type"},
		{"empty key", func(c *Config) { c.Storage.Key = " " }, "storage.key"},
		{"file without dir", func(c *Config) { c.Storage.DataDir = "" }, "data_dir"},
		{"negative quota", func(c *Config) { c.Storage.MemoryQuota = -1 }, "memory_quota"},
		{"negative rate", func(c *Config) { c.Web.RateLimit = -1 }, "rate_limit"},
		{"zero burst", func(c *Config) { c.Web.RateBurst = 0 }, "rate_burst"},
		{"no limit no burst", func(c *Config) { c.Web.RateLimit = 0; c.Web.RateBurst = 0 }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()

			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestSanitizeConfigPath(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"config.yaml", "config.yaml"},
		{"./config.yaml", "config.yaml"},
		{"../config.yaml", "config.yaml"},
		{"../../etc/passwd", "etc/passwd"},
		{"..", "config.yaml"},
		{"/etc/encryptor/config.yaml", "/etc/encryptor/config.yaml"},
		{"conf/../config.yaml", "config.yaml"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			if got := sanitizeConfigPath(tc.path); got != tc.want {
				t.Errorf("sanitizeConfigPath(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

func TestLoadFrom_ExplicitPathWinsOverEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "storage:\n  type: memory\n"))
	path := writeConfig(t, "storage:\n  type: sqlite\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Storage.Type != storage.TypeSQLite {
		t.Errorf("Storage.Type = %q, want sqlite", cfg.Storage.Type)
	}
}
