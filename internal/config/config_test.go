package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONWithDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"source": {"type": "public_csv", "csv_url": "https://example.com/sheet.csv"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, SourcePublicCSV, cfg.Source.Type)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: 9000
source:
  type: service_account
  spreadsheet_id: abc123
  worksheet: Schedule
  credentials_file: creds.json
cache:
  ttl_seconds: 5
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "abc123", cfg.Source.SpreadsheetID)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCHEDBOARD_SERVER__PORT", "9999")
	path := writeConfig(t, "config.json", `{
		"server": {"port": 8081},
		"source": {"type": "public_csv", "csv_url": "https://example.com/sheet.csv"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_RejectsUnknownSourceType(t *testing.T) {
	path := writeConfig(t, "config.json", `{"source": {"type": "ftp"}}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoad_ServiceAccountRequiresSpreadsheet(t *testing.T) {
	path := writeConfig(t, "config.json", `{"source": {"type": "service_account"}}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestLoad_RejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", `x = 1`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSourceConfig_Key(t *testing.T) {
	sheet := SourceConfig{Type: SourceServiceAccount, SpreadsheetID: "abc", Worksheet: "Jobs"}
	assert.Equal(t, "sheet:abc/Jobs", sheet.Key())
	assert.True(t, sheet.Editable())

	csv := SourceConfig{Type: SourcePublicCSV, CSVURL: "https://example.com/x.csv"}
	assert.Equal(t, "csv:https://example.com/x.csv", csv.Key())
	assert.False(t, csv.Editable())
}
