package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	wd, _ := os.Getwd()
	assert.Equal(t, wd, cfg.Root)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 500, cfg.Search.DebounceMs)
	assert.Equal(t, 100, cfg.Search.Limit)
	assert.Empty(t, cfg.Discovery.Excludes)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /repos/mono
log:
  level: debug
  format: json
search:
  debounce_ms: 250
  limit: 50
discovery:
  excludes:
    - "legacy/**"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/repos/mono", cfg.Root)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 250, cfg.Search.DebounceMs)
	assert.Equal(t, 50, cfg.Search.Limit)
	assert.Equal(t, []string{"legacy/**"}, cfg.Discovery.Excludes)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))

	t.Setenv("KVPEEK_LOG_LEVEL", "error")
	t.Setenv("KVPEEK_SEARCH_LIMIT", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Search.Limit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad log format", "log:\n  format: xml\n"},
		{"negative debounce", "search:\n  debounce_ms: -1\n"},
		{"limit too large", "search:\n  limit: 100000\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSearchConfigDebounce(t *testing.T) {
	cfg := SearchConfig{DebounceMs: 250}
	assert.Equal(t, "250ms", cfg.Debounce().String())
}
