package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.UI.Mode != "coach" {
		t.Errorf("mode = %q, want coach", cfg.UI.Mode)
	}
	if !cfg.History.Enabled {
		t.Error("history should default to enabled")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  base_url: https://garmin.example.com\n  conn_timeout: 5s\nui:\n  mode: brief\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "https://garmin.example.com" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.ConnTimeout != 5*time.Second {
		t.Errorf("conn timeout = %v", cfg.Server.ConnTimeout)
	}
	if cfg.UI.Mode != "brief" {
		t.Errorf("mode = %q", cfg.UI.Mode)
	}
	// Untouched sections keep their defaults.
	if cfg.Logger.Level != "info" {
		t.Errorf("logger level = %q", cfg.Logger.Level)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASKMYGARMIN_BASE_URL", "http://override:9000")
	t.Setenv("ASKMYGARMIN_MODE", "brief")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BaseURL != "http://override:9000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.UI.Mode != "brief" {
		t.Errorf("mode = %q", cfg.UI.Mode)
	}
}
