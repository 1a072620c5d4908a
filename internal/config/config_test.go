package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logtriage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads families and overrides defaults", func(t *testing.T) {
		logDir := t.TempDir()
		path := writeConfig(t, `
families:
  - name: e2e
    dir: `+logDir+`
    take_last: 5
error_marker: "FAIL!"
log_level: debug
tracker:
  enabled: true
  base_url: https://tracker.example.com/api
  token: secret
  project: QA
  timeout: 10s
history:
  enabled: true
  db_path: ":memory:"
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		require.Len(t, cfg.Families, 1)
		assert.Equal(t, "e2e", cfg.Families[0].Name)
		assert.Equal(t, 5, cfg.Families[0].TakeLast)
		assert.Equal(t, "FAIL!", cfg.ErrorMarker)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 10*time.Second, cfg.Tracker.Timeout)
		assert.True(t, cfg.History.Enabled)
	})

	t.Run("keeps defaults when fields are omitted", func(t *testing.T) {
		logDir := t.TempDir()
		path := writeConfig(t, `
families:
  - name: e2e
    dir: `+logDir+`
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "✗", cfg.ErrorMarker)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 3, cfg.ErrorLogCount)
		assert.Equal(t, 30*time.Second, cfg.Tracker.Timeout)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeConfig(t, "families: [broken")
		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Families = []FamilyConfig{{Name: "e2e", Dir: os.TempDir(), TakeLast: 3}}
		return cfg
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("requires at least one family", func(t *testing.T) {
		cfg := valid()
		cfg.Families = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects missing family directory", func(t *testing.T) {
		cfg := valid()
		cfg.Families[0].Dir = "/definitely/not/here"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects duplicate family names", func(t *testing.T) {
		cfg := valid()
		cfg.Families = append(cfg.Families, cfg.Families[0])
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects invalid log level", func(t *testing.T) {
		cfg := valid()
		cfg.LogLevel = "loud"
		assert.Error(t, cfg.Validate())
	})

	t.Run("tracker needs base URL and project when enabled", func(t *testing.T) {
		cfg := valid()
		cfg.Tracker.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.Tracker.BaseURL = "https://tracker.example.com"
		cfg.Tracker.Project = "QA"
		assert.NoError(t, cfg.Validate())
	})
}

func TestFamily(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Families = []FamilyConfig{
		{Name: "e2e", Dir: os.TempDir()},
		{Name: "smoke", Dir: os.TempDir()},
	}

	t.Run("by name", func(t *testing.T) {
		family, err := cfg.Family("smoke")
		require.NoError(t, err)
		assert.Equal(t, "smoke", family.Name)
	})

	t.Run("empty name is ambiguous with multiple families", func(t *testing.T) {
		_, err := cfg.Family("")
		assert.Error(t, err)
	})

	t.Run("empty name resolves a single family", func(t *testing.T) {
		single := DefaultConfig()
		single.Families = cfg.Families[:1]
		family, err := single.Family("")
		require.NoError(t, err)
		assert.Equal(t, "e2e", family.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := cfg.Family("nope")
		assert.Error(t, err)
	})
}
