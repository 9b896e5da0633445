// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.Server.BaseURL == "" {
		t.Error("default base URL is empty")
	}
	if cfg.Defaults.Model == "" {
		t.Error("default model is empty")
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "http://example.com:9000"
request_timeout_secs = 15

[defaults]
provider = "openai"
model = "gpt-4o"
temperature = 0.5
max_tokens = 2048

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Server.BaseURL != "http://example.com:9000" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.RequestTimeoutSecs != 15 {
		t.Errorf("request timeout = %d, want 15", cfg.Server.RequestTimeoutSecs)
	}
	// Unset fields fall back to defaults.
	if cfg.Server.StreamTimeoutSecs != 300 {
		t.Errorf("stream timeout = %d, want default 300", cfg.Server.StreamTimeoutSecs)
	}
	if cfg.Defaults.Provider != "openai" || cfg.Defaults.Model != "gpt-4o" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.UI.Theme)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("base URL = %q, want default", cfg.Server.BaseURL)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MERIDIAN_BASE_URL", "http://override:4242")
	t.Setenv("MERIDIAN_MODEL", "claude-opus-4-1")
	t.Setenv("MERIDIAN_THINKING", "false")
	t.Setenv("MERIDIAN_MAX_TOKENS", "8192")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:4242" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.Defaults.Model != "claude-opus-4-1" {
		t.Errorf("model = %q", cfg.Defaults.Model)
	}
	if cfg.Defaults.ThinkingEnabled {
		t.Error("thinking still enabled after MERIDIAN_THINKING=false")
	}
	if cfg.Defaults.MaxTokens != 8192 {
		t.Errorf("max tokens = %d, want 8192", cfg.Defaults.MaxTokens)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "localhost:8000" }, true},
		{"zero request timeout", func(c *Config) { c.Server.RequestTimeoutSecs = 0 }, true},
		{"huge stream timeout", func(c *Config) { c.Server.StreamTimeoutSecs = 99999 }, true},
		{"negative retries", func(c *Config) { c.Server.MaxRetries = -1 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"bad temperature", func(c *Config) { c.Defaults.Temperature = 3.0 }, true},
		{"zero keep files", func(c *Config) { c.Logging.KeepFiles = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://saved:1234"
	cfg.Defaults.Temperature = 0.3
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.BaseURL != "http://saved:1234" {
		t.Errorf("base URL = %q", loaded.Server.BaseURL)
	}
	if loaded.Defaults.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", loaded.Defaults.Temperature)
	}
	if !loaded.UI.CompactMode {
		t.Error("compact mode lost in round trip")
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	updated := Default()
	updated.UI.Theme = "light"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config change never triggered a reload")
	}
}

// A broken file on disk must not reach the callback.
func TestWatcherSkipsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()
	if err := watcher.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("this is not [toml"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Fatal("invalid config was delivered to the callback")
	case <-time.After(time.Second):
	}
}
