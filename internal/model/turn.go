// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the Meridian turn tree.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN STATUS
// =============================================================================

// TurnStatus represents the lifecycle state of a turn on the server.
type TurnStatus string

const (
	StatusPending   TurnStatus = "pending"
	StatusStreaming TurnStatus = "streaming"
	StatusCompleted TurnStatus = "completed"
	StatusFailed    TurnStatus = "failed"
)

// IsTerminal returns true once the server will no longer mutate the turn.
func (s TurnStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// =============================================================================
// BLOCK TYPES
// =============================================================================

// Block type identifiers as reported by the server. The set is open;
// unknown types are rendered by their label only.
const (
	BlockText       = "text"
	BlockThinking   = "thinking"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockImage      = "image"
)

// TurnBlock is one typed unit of a turn's content, ordered by Sequence.
// Text and thinking blocks carry TextContent; every other type carries
// opaque StructuredContent.
type TurnBlock struct {
	ID                string          `json:"id"`
	TurnID            string          `json:"turn_id"`
	BlockType         string          `json:"block_type"`
	Sequence          int             `json:"sequence"`
	TextContent       *string         `json:"text_content,omitempty"`
	StructuredContent json.RawMessage `json:"content,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Text returns the block's text content, or "" when absent.
func (b *TurnBlock) Text() string {
	if b.TextContent == nil {
		return ""
	}
	return *b.TextContent
}

// IsTextual returns true for block types whose content is rendered as text.
func (b *TurnBlock) IsTextual() bool {
	return b.BlockType == BlockText || b.BlockType == BlockThinking
}

// =============================================================================
// TURN
// =============================================================================

// Turn is a single message (user or assistant) in a chat. PrevTurnID is nil
// for the chat root. SiblingIDs lists every turn sharing the same predecessor,
// ordered by creation time, and includes the turn's own id exactly once.
type Turn struct {
	ID               string          `json:"id"`
	ChatID           string          `json:"chat_id"`
	PrevTurnID       *string         `json:"prev_turn_id,omitempty"`
	Role             Role            `json:"role"`
	Status           TurnStatus      `json:"status"`
	Error            *string         `json:"error,omitempty"`
	Model            *string         `json:"model,omitempty"`
	InputTokens      *int            `json:"input_tokens,omitempty"`
	OutputTokens     *int            `json:"output_tokens,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	RequestParams    json.RawMessage `json:"request_params,omitempty"`
	StopReason       *string         `json:"stop_reason,omitempty"`
	ResponseMetadata json.RawMessage `json:"response_metadata,omitempty"`
	Blocks           []TurnBlock     `json:"blocks,omitempty"`
	SiblingIDs       []string        `json:"sibling_ids,omitempty"`
}

// SiblingIndex returns the turn's position within its ordered sibling group.
// The bool reports whether the turn's own id was actually present in
// SiblingIDs; when it is not (a server-side data integrity violation) the
// index degrades to 0 and callers should emit a diagnostic rather than fail.
func (t *Turn) SiblingIndex() (int, bool) {
	for i, id := range t.SiblingIDs {
		if id == t.ID {
			return i, true
		}
	}
	return 0, false
}

// ShortID returns the first 8 characters of the id for display.
func (t *Turn) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// HasError returns true when the turn failed with a non-empty error.
func (t *Turn) HasError() bool {
	return t.Error != nil && *t.Error != ""
}

// ErrorText returns the turn's error message, or "" when absent.
func (t *Turn) ErrorText() string {
	if t.Error == nil {
		return ""
	}
	return *t.Error
}

// TextContent concatenates the text of all text and thinking blocks,
// separated by newlines. Blocks without text content are skipped.
func (t *Turn) TextContent() string {
	var parts []string
	for i := range t.Blocks {
		b := &t.Blocks[i]
		if b.IsTextual() && b.Text() != "" {
			parts = append(parts, b.Text())
		}
	}
	return strings.Join(parts, "\n")
}

// =============================================================================
// TURN PAGE
// =============================================================================

// TurnPage is one paginated fetch result. When anchored on a turn, the first
// element is the anchor itself and the remaining elements are its immediate
// children in creation order.
type TurnPage struct {
	Turns         []Turn `json:"turns"`
	HasMoreBefore bool   `json:"has_more_before"`
	HasMoreAfter  bool   `json:"has_more_after"`
}

// IsEmpty returns true when the page carries no turns at all.
func (p *TurnPage) IsEmpty() bool {
	return len(p.Turns) == 0
}

// Anchor returns the requested turn (the first element), or nil when empty.
func (p *TurnPage) Anchor() *Turn {
	if len(p.Turns) == 0 {
		return nil
	}
	return &p.Turns[0]
}

// Children returns the anchor's immediate children (everything after the
// first element). The returned slice aliases the page.
func (p *TurnPage) Children() []Turn {
	if len(p.Turns) <= 1 {
		return nil
	}
	return p.Turns[1:]
}
