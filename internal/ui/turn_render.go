// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/ui/styles"

	"github.com/charmbracelet/lipgloss"
)

// ============================================================================
// Turn rendering shared by the browser and the streaming screen
// ============================================================================

// renderTurnMeta builds the one-line turn summary: short id (when
// enabled), role, status, model, and token counts when present.
func renderTurnMeta(theme *styles.Theme, turn *model.Turn, showID bool) string {
	var parts []string
	if showID {
		parts = append(parts, turn.ShortID())
	}
	parts = append(parts,
		turn.Role.DisplayName(),
		string(turn.Status),
	)
	if turn.Model != nil && *turn.Model != "" {
		parts = append(parts, *turn.Model)
	}
	if turn.InputTokens != nil && turn.OutputTokens != nil {
		parts = append(parts, fmt.Sprintf("%d→%d tok", *turn.InputTokens, *turn.OutputTokens))
	}
	return theme.TurnMeta.Render(strings.Join(parts, " · "))
}

// renderTurnBlocks renders a turn's content blocks in sequence order.
// Text and thinking blocks get a bracketed type label above their
// content; other block types render as a label only, since their
// payloads are opaque.
func renderTurnBlocks(theme *styles.Theme, turn *model.Turn, width int) string {
	if len(turn.Blocks) == 0 {
		return theme.ListEmpty.Render("(no content)")
	}

	var sections []string
	for i := range turn.Blocks {
		b := &turn.Blocks[i]
		label := theme.BlockLabel.Render("[" + b.BlockType + "]")

		if !b.IsTextual() {
			sections = append(sections, label)
			continue
		}

		body := b.Text()
		style := theme.AssistantTurn
		switch {
		case turn.Role == model.RoleUser:
			style = theme.UserTurn
		case b.BlockType == model.BlockThinking:
			style = theme.ThinkingBlock
		}
		if width > 0 {
			style = style.Width(width)
		}
		sections = append(sections, label+"\n"+style.Render(body))
	}
	return strings.Join(sections, "\n\n")
}

// renderTurnError renders the turn's failure message, or "" when the
// turn has none.
func renderTurnError(theme *styles.Theme, turn *model.Turn) string {
	if !turn.HasError() {
		return ""
	}
	return theme.TurnError.Render("error: " + turn.ErrorText())
}

// renderUserTurnBox renders a full user turn: meta line plus content,
// boxed. Used by the streaming screen above the live transcript.
func renderUserTurnBox(theme *styles.Theme, turn *model.Turn, width int, showID bool) string {
	inner := maxInt(width-4, 20)
	content := renderTurnMeta(theme, turn, showID) + "\n\n" + renderTurnBlocks(theme, turn, inner)
	return theme.TurnBox.Width(maxInt(width-2, 22)).Render(content)
}

// renderNavHints renders the directional hint line. Disabled
// directions are dimmed so the layout never shifts as availability
// changes.
func renderNavHints(theme *styles.Theme, up, down, left, right bool) string {
	hint := func(label string, on bool) string {
		if on {
			return theme.NavHintOn.Render(label)
		}
		return theme.NavHintOff.Render(label)
	}
	return strings.Join([]string{
		hint("w:parent", up),
		hint("s:child", down),
		hint("a:prev", left),
		hint("d:next", right),
	}, "  ")
}

// renderSiblingPosition renders "Sibling i of n", or "" for a lone turn.
func renderSiblingPosition(theme *styles.Theme, index, count int) string {
	if count <= 1 {
		return ""
	}
	return theme.TurnMeta.Render(fmt.Sprintf("Sibling %d of %d", index, count))
}

// truncateForPreview collapses a message to a bounded single-paragraph
// preview for the confirmation screen.
func truncateForPreview(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

// centerInFrame centers content within the available terminal area,
// used by dialog-style screens.
func centerInFrame(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
