package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/status"
)

// Config holds the global treesh configuration.
type Config struct {
	Shell ShellConfig `yaml:"shell"`
	Audit AuditConfig `yaml:"audit"`
	Log   LogConfig   `yaml:"log"`
}

// ShellConfig names the environment variables the executor uses.
type ShellConfig struct {
	StatusVar string `yaml:"status_var"` // receives the last status
	HomeVar   string `yaml:"home_var"`   // read by cd with no argument
}

// AuditConfig controls audit log settings.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Shell: ShellConfig{
			StatusVar: status.DefaultVar,
			HomeVar:   "HOME",
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".local", "share", "treesh", "audit.jsonl"),
		},
		Log: LogConfig{
			Level: logging.DefaultLevel,
		},
	}
}

// Load reads the config from the standard location (~/.config/treesh/config.yaml).
// If the file doesn't exist, returns the default config.
func Load() (*Config, error) {
	if _, err := os.UserHomeDir(); err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// Expand ~ in audit path.
	if cfg.Audit.Path != "" && cfg.Audit.Path[0] == '~' {
		home, _ := os.UserHomeDir()
		cfg.Audit.Path = filepath.Join(home, cfg.Audit.Path[1:])
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Shell.StatusVar == "" {
		return fmt.Errorf("shell.status_var must not be empty")
	}
	if c.Shell.HomeVar == "" {
		return fmt.Errorf("shell.home_var must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ConfigPath returns the standard config file path.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "treesh", "config.yaml")
}
