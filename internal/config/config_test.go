package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "?", cfg.Shell.StatusVar)
	assert.Equal(t, "HOME", cfg.Shell.HomeVar)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
shell:
  status_var: LAST_STATUS
audit:
  enabled: false
  path: ~/logs/treesh.jsonl
log:
  level: debug
`)
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "LAST_STATUS", cfg.Shell.StatusVar)
	assert.Equal(t, "HOME", cfg.Shell.HomeVar, "unset keys keep defaults")
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, filepath.Join(home, "logs", "treesh.jsonl"), cfg.Audit.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"malformed":    "shell: [",
		"empty status": "shell: {status_var: \"\"}",
		"empty home":   "shell: {home_var: \"\"}",
		"bad level":    "log: {level: loud}",
		"wrong type":   "audit: {enabled: sometimes}",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".config", "treesh", "config.yaml"), ConfigPath())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
