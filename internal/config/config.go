// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for inkwell.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete inkwell configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// Canvas/editor configuration
	Editor EditorConfig `toml:"editor"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig holds settings for the chat backend API.
type BackendConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `toml:"base_url"`

	// ModelID selects the model used for generation.
	ModelID string `toml:"model_id"`

	// ChatID identifies the chat session; generated when empty.
	ChatID string `toml:"chat_id"`

	// RequestTimeoutSec bounds non-streaming HTTP requests.
	RequestTimeoutSec int `toml:"request_timeout_sec"`
}

// EditorConfig holds settings for the canvas document editor.
type EditorConfig struct {
	// SaveDebounceMs is the trailing quiet window for debounced saves.
	SaveDebounceMs int `toml:"save_debounce_ms"`

	// SuggestionIntervalSec is the minimum interval between suggestion
	// fetches for the same document.
	SuggestionIntervalSec int `toml:"suggestion_interval_sec"`

	// SanitizeOnCancel controls whether incomplete assistant messages are
	// dropped when a generation is cancelled.
	SanitizeOnCancel bool `toml:"sanitize_on_cancel"`
}

// UIConfig holds settings for the terminal interface.
type UIConfig struct {
	// Theme selects the color theme ("dark" or "light").
	Theme string `toml:"theme"`

	// MaxToasts limits simultaneously visible notifications.
	MaxToasts int `toml:"max_toasts"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default durations and limits.
const (
	DefaultSaveDebounceMs        = 2000
	DefaultSuggestionIntervalSec = 5
	DefaultRequestTimeoutSec     = 60
	DefaultMaxToasts             = 5
)

// DefaultConfig returns the built-in default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL:           "http://localhost:3000/api",
			ModelID:           "chat-model",
			RequestTimeoutSec: DefaultRequestTimeoutSec,
		},
		Editor: EditorConfig{
			SaveDebounceMs:        DefaultSaveDebounceMs,
			SuggestionIntervalSec: DefaultSuggestionIntervalSec,
			SanitizeOnCancel:      true,
		},
		UI: UIConfig{
			Theme:     "dark",
			MaxToasts: DefaultMaxToasts,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

var (
	// loadMu guards concurrent Load/Save calls.
	loadMu sync.Mutex
)

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".inkwell", "config.toml"), nil
}

// Load reads configuration from the given path, falling back to defaults for
// anything unset, then applies environment variable overrides. A missing file
// is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies INKWELL_* environment variables on top of the
// file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INKWELL_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("INKWELL_MODEL_ID"); v != "" {
		cfg.Backend.ModelID = v
	}
	if v := os.Getenv("INKWELL_CHAT_ID"); v != "" {
		cfg.Backend.ChatID = v
	}
	if v := os.Getenv("INKWELL_SAVE_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Editor.SaveDebounceMs = ms
		}
	}
	if v := os.Getenv("INKWELL_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validation errors.
var (
	ErrInvalidBaseURL = errors.New("backend base_url is not a valid URL")
	ErrInvalidTheme   = errors.New("ui theme must be \"dark\" or \"light\"")
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Backend.BaseURL)
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.UI.Theme)
	}

	if c.Editor.SaveDebounceMs <= 0 {
		c.Editor.SaveDebounceMs = DefaultSaveDebounceMs
	}
	if c.Editor.SuggestionIntervalSec <= 0 {
		c.Editor.SuggestionIntervalSec = DefaultSuggestionIntervalSec
	}
	if c.Backend.RequestTimeoutSec <= 0 {
		c.Backend.RequestTimeoutSec = DefaultRequestTimeoutSec
	}
	if c.UI.MaxToasts <= 0 {
		c.UI.MaxToasts = DefaultMaxToasts
	}

	// A fresh install gets a generated chat session id.
	if c.Backend.ChatID == "" {
		c.Backend.ChatID = uuid.NewString()
	}

	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// SaveDebounce returns the debounce window as a duration.
func (c *Config) SaveDebounce() time.Duration {
	return time.Duration(c.Editor.SaveDebounceMs) * time.Millisecond
}

// SuggestionInterval returns the suggestion fetch interval as a duration.
func (c *Config) SuggestionInterval() time.Duration {
	return time.Duration(c.Editor.SuggestionIntervalSec) * time.Second
}

// RequestTimeout returns the HTTP request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSec) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the given path as TOML.
func (c *Config) Save(path string) error {
	loadMu.Lock()
	defer loadMu.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}
