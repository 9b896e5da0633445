// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for meridian.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location:
//   - ~/.meridian/config.toml
//   - Built-in defaults when no file exists
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/haowjy/meridian-tui/internal/model"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete meridian client configuration.
type Config struct {
	// Server connection settings
	Server ServerConfig `toml:"server"`

	// Defaults applied to every new turn submission
	Defaults model.RequestParams `toml:"defaults"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the meridian backend URL
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSecs is the timeout for ordinary API requests
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// StreamTimeoutSecs bounds one SSE stream end to end; generation can
	// take minutes, so this is much longer than the request timeout
	StreamTimeoutSecs int `toml:"stream_timeout_secs"`
	// MaxRetries is the retry count for idempotent requests
	MaxRetries int `toml:"max_retries"`
	// RequestsPerSecond caps the client-side request rate (0 = default)
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// ShowTurnIDs displays short turn ids in the browser metadata line
	ShowTurnIDs bool `toml:"show_turn_ids"`
	// CompactMode uses a more compact browser layout
	CompactMode bool `toml:"compact_mode"`
}

// LoggingConfig contains log file configuration.
type LoggingConfig struct {
	// Enabled controls whether a log file is written at all
	Enabled bool `toml:"enabled"`
	// Dir is the log directory (empty = ~/.meridian/logs)
	Dir string `toml:"dir"`
	// KeepFiles is how many timestamped log files to retain
	KeepFiles int `toml:"keep_files"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:            "http://localhost:8000",
			RequestTimeoutSecs: 30,
			StreamTimeoutSecs:  300,
			MaxRetries:         3,
			RequestsPerSecond:  20,
		},

		Defaults: model.DefaultParams(),

		UI: UIConfig{
			Theme:       "dark",
			ShowTurnIDs: true,
			CompactMode: false,
		},

		Logging: LoggingConfig{
			Enabled:   true,
			Dir:       "",
			KeepFiles: 10,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the meridian configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".meridian"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.meridian/config.toml, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# meridian configuration file")
	fmt.Fprintln(file, "# Generated by meridian - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
		})
	}

	if c.Server.RequestTimeoutSecs < 1 || c.Server.RequestTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.Server.RequestTimeoutSecs),
		})
	}
	if c.Server.StreamTimeoutSecs < 30 || c.Server.StreamTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "server.stream_timeout_secs",
			Message: fmt.Sprintf("must be 30-3600, got %d", c.Server.StreamTimeoutSecs),
		})
	}
	if c.Server.MaxRetries < 0 || c.Server.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "server.max_retries",
			Message: fmt.Sprintf("must be 0-10, got %d", c.Server.MaxRetries),
		})
	}

	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "defaults",
			Message: err.Error(),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.Logging.KeepFiles < 1 || c.Logging.KeepFiles > 100 {
		errs = append(errs, ValidationError{
			Field:   "logging.keep_files",
			Message: fmt.Sprintf("must be 1-100, got %d", c.Logging.KeepFiles),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.RequestTimeoutSecs == 0 {
		c.Server.RequestTimeoutSecs = defaults.Server.RequestTimeoutSecs
	}
	if c.Server.StreamTimeoutSecs == 0 {
		c.Server.StreamTimeoutSecs = defaults.Server.StreamTimeoutSecs
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = defaults.Server.MaxRetries
	}
	if c.Server.RequestsPerSecond == 0 {
		c.Server.RequestsPerSecond = defaults.Server.RequestsPerSecond
	}

	if c.Defaults.Provider == "" {
		c.Defaults.Provider = defaults.Defaults.Provider
	}
	if c.Defaults.Model == "" {
		c.Defaults.Model = defaults.Defaults.Model
	}
	if c.Defaults.MaxTokens == 0 {
		c.Defaults.MaxTokens = defaults.Defaults.MaxTokens
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Logging.KeepFiles == 0 {
		c.Logging.KeepFiles = defaults.Logging.KeepFiles
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MERIDIAN_BASE_URL: overrides server.base_url
//   - MERIDIAN_PROVIDER: overrides defaults.provider
//   - MERIDIAN_MODEL: overrides defaults.model
//   - MERIDIAN_MAX_TOKENS: overrides defaults.max_tokens
//   - MERIDIAN_THINKING: set to "1" or "true" to enable extended thinking
//   - MERIDIAN_THEME: overrides ui.theme
//   - MERIDIAN_LOG_DIR: overrides logging.dir
func (c *Config) ApplyEnvOverrides() {
	if baseURL := os.Getenv("MERIDIAN_BASE_URL"); baseURL != "" {
		c.Server.BaseURL = baseURL
	}

	if provider := os.Getenv("MERIDIAN_PROVIDER"); provider != "" {
		c.Defaults.Provider = provider
	}
	if modelName := os.Getenv("MERIDIAN_MODEL"); modelName != "" {
		c.Defaults.Model = modelName
	}
	if maxTokens := os.Getenv("MERIDIAN_MAX_TOKENS"); maxTokens != "" {
		if n, err := strconv.Atoi(maxTokens); err == nil && n > 0 {
			c.Defaults.MaxTokens = n
		}
	}
	if thinking := os.Getenv("MERIDIAN_THINKING"); thinking != "" {
		c.Defaults.ThinkingEnabled = thinking == "1" || strings.ToLower(thinking) == "true"
	}

	if theme := os.Getenv("MERIDIAN_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if logDir := os.Getenv("MERIDIAN_LOG_DIR"); logDir != "" {
		c.Logging.Dir = logDir
	}
}
