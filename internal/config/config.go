// Package config provides configuration loading and validation for the
// schedule board service.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Source types, one per supported data-source mode.
const (
	SourceServiceAccount = "service_account"
	SourcePublicCSV      = "public_csv"
)

// Config is the full service configuration, loaded from a JSON or YAML file
// with optional SCHEDBOARD_* environment overrides.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Source   SourceConfig   `koanf:"source"`
	Cache    CacheConfig    `koanf:"cache"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	// Aliases optionally points at a header alias override file.
	Aliases string `koanf:"aliases"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port int `koanf:"port" validate:"gte=0,lte=65535"`
	// APIKey, when set, is required of every request via the X-API-Key
	// header.
	APIKey string `koanf:"api_key"`
}

// SourceConfig identifies where the raw schedule table comes from.
type SourceConfig struct {
	Type            string `koanf:"type" validate:"required,oneof=service_account public_csv"`
	SpreadsheetID   string `koanf:"spreadsheet_id" validate:"required_if=Type service_account"`
	Worksheet       string `koanf:"worksheet" validate:"required_if=Type service_account"`
	CSVURL          string `koanf:"csv_url" validate:"required_if=Type public_csv"`
	CredentialsFile string `koanf:"credentials_file"`
}

// Key returns a stable cache and persistence key for the source.
func (s SourceConfig) Key() string {
	if s.Type == SourceServiceAccount {
		return fmt.Sprintf("sheet:%s/%s", s.SpreadsheetID, s.Worksheet)
	}
	return "csv:" + s.CSVURL
}

// Editable reports whether the source supports write-back.
func (s SourceConfig) Editable() bool {
	return s.Type == SourceServiceAccount
}

// CacheConfig controls the processed-snapshot cache.
type CacheConfig struct {
	TTLSeconds int `koanf:"ttl_seconds" validate:"gte=0"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// DatabaseConfig holds the optional run-history store settings. An empty URL
// disables persistence.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// Load reads the configuration file, applies SCHEDBOARD_* environment
// overrides (double underscore separating nested keys, e.g.
// SCHEDBOARD_SERVER__PORT), fills defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	k := koanf.New(".")

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider("SCHEDBOARD_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "schedboard_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
