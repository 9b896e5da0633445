// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/ui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmPreviewLimit bounds the message preview so long messages do
// not push the buttons off screen.
const confirmPreviewLimit = 600

// confirm is the pre-submission review dialog: the message about to be
// sent, the params it will be sent with, and a chance to bail out or
// adjust the params first.
type confirm struct {
	shared  *shared
	content string
	params  model.RequestParams
	choice  int // 0 submit, 1 edit params, 2 cancel
}

var confirmChoices = []struct {
	label  string
	action confirmAction
}{
	{"send", confirmSubmit},
	{"edit params", confirmEditParams},
	{"cancel", confirmCancel},
}

func newConfirm(sh *shared, content string, params model.RequestParams) *confirm {
	return &confirm{shared: sh, content: content, params: params}
}

func (c *confirm) Init() tea.Cmd { return nil }

func (c *confirm) Update(msg tea.Msg) (screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch keyMsg.String() {
	case "left", "a", "shift+tab":
		if c.choice > 0 {
			c.choice--
		}
	case "right", "d", "tab":
		if c.choice < len(confirmChoices)-1 {
			c.choice++
		}
	case "enter":
		return c, popScreen(confirmResultMsg{action: confirmChoices[c.choice].action})
	case "esc":
		return c, popScreen(confirmResultMsg{action: confirmCancel})
	}
	return c, nil
}

func (c *confirm) View() string {
	theme := c.shared.theme

	var b strings.Builder
	b.WriteString(theme.DialogTitle.Render("send this message?"))
	b.WriteString("\n\n")
	b.WriteString(theme.UserTurn.Render(truncateForPreview(c.content, confirmPreviewLimit)))
	b.WriteString("\n\n")
	b.WriteString(theme.FieldLabel.Render("params  "))
	b.WriteString(theme.FieldValue.Render(c.params.Summary()))
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(confirmChoices))
	for i, choice := range confirmChoices {
		style := theme.DialogButton
		if i == c.choice {
			style = theme.DialogButtonActive
		}
		buttons = append(buttons, style.Render(" "+choice.label+" "))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttons...))

	dialog := theme.DialogBox.Render(b.String())
	body := centerInFrame(dialog, c.shared.width, maxInt(c.shared.height-2, 1))

	shortcuts := []components.Shortcut{
		{Key: "←/→", Desc: "choose"},
		{Key: "enter", Desc: "confirm"},
		{Key: "esc", Desc: "cancel"},
	}
	return body + "\n" + components.RenderStatusBar(theme, shortcuts, "", c.shared.width)
}
