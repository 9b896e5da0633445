// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the Meridian turn tree.
package model

import "fmt"

// =============================================================================
// REQUEST PARAMETERS
// =============================================================================

// RequestParams is the generation parameter bundle forwarded verbatim with
// every turn creation. The server interprets it; the client only edits and
// displays it.
type RequestParams struct {
	Provider        string  `json:"provider" toml:"provider"`
	Model           string  `json:"model" toml:"model"`
	Temperature     float64 `json:"temperature" toml:"temperature"`
	MaxTokens       int     `json:"max_tokens" toml:"max_tokens"`
	ThinkingEnabled bool    `json:"thinking_enabled" toml:"thinking_enabled"`
}

// DefaultParams returns the parameter bundle used until the operator edits it.
func DefaultParams() RequestParams {
	return RequestParams{
		Provider:        "anthropic",
		Model:           "claude-sonnet-4-5",
		Temperature:     1.0,
		MaxTokens:       4096,
		ThinkingEnabled: true,
	}
}

// Validate checks the bundle for values the server would reject outright.
func (p RequestParams) Validate() error {
	if p.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if p.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", p.Temperature)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", p.MaxTokens)
	}
	return nil
}

// Summary returns a one-line description for status bars and previews.
func (p RequestParams) Summary() string {
	thinking := "off"
	if p.ThinkingEnabled {
		thinking = "on"
	}
	return fmt.Sprintf("%s/%s temp=%.1f max=%d thinking=%s",
		p.Provider, p.Model, p.Temperature, p.MaxTokens, thinking)
}
