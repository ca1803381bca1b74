package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, 1, cfg.Optimizer.ActivitySlots)
	assert.Equal(t, 0.05, cfg.Optimizer.ImprovementMargin)
	assert.Equal(t, 6*time.Hour, cfg.Advice.CacheTTL)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, filepath.Base(cfg.Database.Path), "itinera.db")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/trips.db
http:
  addr: ":9090"
sourcing:
  catalog_path: ./catalog.yaml
optimizer:
  activity_slots: 3
advice:
  cache_ttl: 30m
log:
  format: json
llm:
  enabled: true
  model: mistral
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/trips.db", cfg.Database.Path)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "./catalog.yaml", cfg.Sourcing.CatalogPath)
	assert.Equal(t, 3, cfg.Optimizer.ActivitySlots)
	assert.Equal(t, 0.05, cfg.Optimizer.ImprovementMargin, "unset keys keep defaults")
	assert.Equal(t, 30*time.Minute, cfg.Advice.CacheTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, 30000, cfg.LLM.Tasks[llm.TaskQuotes].TimeoutMs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "optimizer:\n  activity_slots: 3\n")
	t.Setenv("ITINERA_DB", "/var/lib/itinera.db")
	t.Setenv("ITINERA_ACTIVITY_SLOTS", "2")
	t.Setenv("ITINERA_SOURCING_LLM", "true")
	t.Setenv("ITINERA_LLM_MODEL", "qwen")
	t.Setenv("ITINERA_LOG_LEVEL", "debug")
	t.Setenv("ITINERA_CORS_ORIGINS", "http://localhost:5173, ,https://trips.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/itinera.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Optimizer.ActivitySlots)
	assert.True(t, cfg.Sourcing.UseLLM)
	assert.Equal(t, "qwen", cfg.LLM.Model)
	assert.Equal(t, []string{"http://localhost:5173", "https://trips.example.com"}, cfg.HTTP.CORSOrigins)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "optimizer: [\n"},
		{"zero slots", "optimizer:\n  activity_slots: 0\n"},
		{"margin above one", "optimizer:\n  improvement_margin: 2\n"},
		{"unknown log format", "log:\n  format: xml\n"},
		{"unknown log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv("ITINERA_CONFIG", "/etc/itinera.yaml")
	assert.Equal(t, "/etc/itinera.yaml", DefaultPath())
}
