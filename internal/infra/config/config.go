// Package config loads the client configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
	History HistoryConfig `yaml:"history"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
}

// ServerConfig holds backend endpoint settings.
type ServerConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"` // covers the whole streamed body
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// HistoryConfig holds transcript persistence settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SessionConfig holds session token persistence settings.
type SessionConfig struct {
	TokenPath string `yaml:"token_path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Mode string `yaml:"mode"` // response mode flag sent with each question
}

// defaultDataDir returns the persistent data directory under
// $HOME/.askmygarmin. Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".askmygarmin")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			ConnTimeout: 10 * time.Second,
			RespTimeout: 300 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: filepath.Join(dataDir, "client.log"),
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "history.db"),
		},
		Session: SessionConfig{
			TokenPath: filepath.Join(dataDir, "session.token"),
		},
		UI: UIConfig{
			Mode: "coach",
		},
	}
}

// Load reads the config file at path, merging it over Defaults(). A missing
// file is not an error: defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)
	return cfg, nil
}

// ApplyEnvOverrides applies ASKMYGARMIN_* environment variables on top of the
// loaded configuration.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASKMYGARMIN_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("ASKMYGARMIN_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("ASKMYGARMIN_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("ASKMYGARMIN_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("ASKMYGARMIN_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("ASKMYGARMIN_MODE"); v != "" {
		cfg.UI.Mode = v
	}
}
