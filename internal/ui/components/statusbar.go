// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/haowjy/meridian-tui/internal/ui/styles"
)

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// RenderStatusBar renders the bottom status bar: key shortcuts on the
// left, contextual info right-aligned. Both sides are truncated to fit.
func RenderStatusBar(theme *styles.Theme, shortcuts []Shortcut, info string, width int) string {
	if width <= 0 {
		width = 80
	}

	var left strings.Builder
	for i, sc := range shortcuts {
		if i > 0 {
			left.WriteString("  ")
		}
		left.WriteString(theme.ShortcutKey.Render(sc.Key))
		left.WriteString(" ")
		left.WriteString(theme.ShortcutDesc.Render(sc.Desc))
	}

	leftPlain := plainShortcuts(shortcuts)
	avail := width - 2 // status bar padding
	infoTruncated := runewidth.Truncate(info, maxInt(0, avail-runewidth.StringWidth(leftPlain)-2), "…")

	gap := avail - runewidth.StringWidth(leftPlain) - runewidth.StringWidth(infoTruncated)
	if gap < 1 {
		gap = 1
	}

	line := left.String() + strings.Repeat(" ", gap) + theme.ListMeta.Render(infoTruncated)
	return theme.StatusBar.Width(width).Render(line)
}

func plainShortcuts(shortcuts []Shortcut) string {
	parts := make([]string, 0, len(shortcuts))
	for _, sc := range shortcuts {
		parts = append(parts, sc.Key+" "+sc.Desc)
	}
	return strings.Join(parts, "  ")
}

// TruncateLine trims a single line to the given display width, appending
// an ellipsis when it was cut. Wide runes are measured correctly.
func TruncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadLine pads or truncates a line to exactly the given display width.
func PadLine(s string, width int) string {
	s = TruncateLine(s, width)
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
