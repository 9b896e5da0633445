// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/haowjy/meridian-tui/internal/ui/styles"
)

// RenderHeader renders the screen title line with an optional subtitle
// right of the title.
func RenderHeader(theme *styles.Theme, title, subtitle string, width int) string {
	line := theme.HeaderTitle.Render(title)
	if subtitle != "" {
		line += "  " + theme.HeaderSubtitle.Render(subtitle)
	}
	if width > 0 {
		line = lipgloss.NewStyle().Width(width).Render(line)
	}
	return theme.Header.Render(line)
}
