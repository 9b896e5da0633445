// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/nav"
	"github.com/haowjy/meridian-tui/internal/stream"
	"github.com/haowjy/meridian-tui/internal/ui/components"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// browser is the turn-tree view of one chat: a single anchored turn
// rendered with its navigation affordances, plus the compose box for
// the next message.
type browser struct {
	shared *shared
	chat   model.Chat

	ctrl     *nav.Controller
	current  *model.Turn
	navState nav.State
	loaded   bool

	loading bool
	spinner components.Spinner

	input   textarea.Model
	focused bool

	params model.RequestParams

	// pending is the message text currently held by the confirmation
	// screen (or the params editor opened from it).
	pending string
}

func newBrowser(sh *shared, chat model.Chat) *browser {
	input := textarea.New()
	input.Placeholder = "write a message… (enter to review, tab to navigate)"
	input.CharLimit = 0
	input.SetHeight(4)
	input.ShowLineNumbers = false

	return &browser{
		shared:  sh,
		chat:    chat,
		ctrl:    nav.NewController(sh.client, chat.ID),
		loading: true,
		spinner: components.NewSpinner("loading chat"),
		input:   input,
		params:  sh.cfg.Defaults,
	}
}

func (b *browser) Init() tea.Cmd {
	ctrl := b.ctrl
	return tea.Batch(b.spinner.Start(), func() tea.Msg {
		return navDoneMsg{result: ctrl.LoadInitial(context.Background())}
	})
}

// navigateCmd fetches the target turn in the background. The
// controller cancels any attempt still in flight, so holding a key
// never queues stale fetches.
func (b *browser) navigateCmd(turnID string) tea.Cmd {
	ctrl := b.ctrl
	return func() tea.Msg {
		return navDoneMsg{result: ctrl.NavigateTo(context.Background(), turnID)}
	}
}

func (b *browser) createTurnCmd(content string) tea.Cmd {
	client := b.shared.client
	chatID := b.chat.ID
	params := b.params
	var prev *string
	if b.current != nil {
		id := b.current.ID
		prev = &id
	}
	return func() tea.Msg {
		resp, err := client.CreateTurn(context.Background(), chatID, prev, content, params)
		return turnCreatedMsg{resp: resp, err: err}
	}
}

func (b *browser) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case navDoneMsg:
		return b.handleNavDone(msg.result)

	case turnCreatedMsg:
		b.loading = false
		b.spinner.Stop()
		if msg.err != nil {
			b.shared.toasts.AddError("sending message failed: " + msg.err.Error())
			return b, nil
		}
		b.input.Reset()
		b.pending = ""
		consumer := stream.NewConsumer(b.shared.client, msg.resp.AssistantTurn.ID)
		return b, pushScreen(newStreaming(b.shared, msg.resp.UserTurn, consumer))

	case confirmResultMsg:
		switch msg.action {
		case confirmSubmit:
			b.loading = true
			b.spinner.SetMessage("sending message")
			return b, tea.Batch(b.spinner.Start(), b.createTurnCmd(b.pending))
		case confirmEditParams:
			return b, pushScreen(newParamsEditor(b.shared, b.params, true))
		default:
			b.pending = ""
		}
		return b, nil

	case paramsResultMsg:
		if msg.params != nil {
			b.params = *msg.params
			b.shared.toasts.AddStatus("request params updated")
		}
		if msg.reopenConfirm && b.pending != "" {
			return b, pushScreen(newConfirm(b.shared, b.pending, b.params))
		}
		return b, nil

	case streamFinishedMsg:
		return b, b.refreshAfterStream(msg.turnID)

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	if cmd := b.spinner.Update(msg); cmd != nil {
		return b, cmd
	}
	return b, nil
}

func (b *browser) handleNavDone(res nav.Result) (screen, tea.Cmd) {
	switch res.Outcome {
	case nav.OutcomeCancelled:
		// Superseded by a newer navigation; a later message carries it.
		return b, nil
	case nav.OutcomeFailed:
		b.loading = false
		b.spinner.Stop()
		b.loaded = true
		if res.Err != nil {
			b.shared.toasts.AddError("navigation failed: " + res.Err.Error())
		}
		return b, nil
	}

	b.loading = false
	b.spinner.Stop()
	b.loaded = true
	b.current = res.Current
	b.navState = res.State
	return b, nil
}

// refreshAfterStream re-anchors the view once a streaming screen is
// dismissed: on the completed turn when there is one, otherwise on
// whatever the server now has for the previous anchor.
func (b *browser) refreshAfterStream(turnID string) tea.Cmd {
	b.loading = true
	b.spinner.SetMessage("refreshing")
	var fetch tea.Cmd
	switch {
	case turnID != "":
		fetch = b.navigateCmd(turnID)
	case b.current != nil:
		fetch = b.navigateCmd(b.current.ID)
	default:
		ctrl := b.ctrl
		fetch = func() tea.Msg {
			return navDoneMsg{result: ctrl.LoadInitial(context.Background())}
		}
	}
	return tea.Batch(b.spinner.Start(), fetch)
}

func (b *browser) inputLocked() bool {
	return b.current != nil && b.current.HasError()
}

func (b *browser) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if b.focused {
		switch msg.String() {
		case "esc", "tab":
			b.focused = false
			b.input.Blur()
			return b, nil
		case "enter":
			content := strings.TrimSpace(b.input.Value())
			if content == "" {
				return b, nil
			}
			b.pending = content
			return b, pushScreen(newConfirm(b.shared, content, b.params))
		}
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		if target, ok := b.navState.Up(); ok {
			return b, b.navigateCmd(target)
		}
	case key.Matches(msg, keys.Down):
		if target, ok := b.navState.Down(); ok {
			return b, b.navigateCmd(target)
		}
	case key.Matches(msg, keys.Left):
		if target, ok := b.navState.Left(); ok {
			return b, b.navigateCmd(target)
		}
	case key.Matches(msg, keys.Right):
		if target, ok := b.navState.Right(); ok {
			return b, b.navigateCmd(target)
		}
	case key.Matches(msg, keys.Params):
		return b, pushScreen(newParamsEditor(b.shared, b.params, false))
	case key.Matches(msg, keys.Focus):
		if b.inputLocked() {
			b.shared.toasts.AddWarning("this turn failed; navigate to another turn to continue")
			return b, nil
		}
		b.focused = true
		return b, b.input.Focus()
	case key.Matches(msg, keys.Back):
		return b, popScreen(chatSelectedMsg{chat: b.chat})
	}
	return b, nil
}

func (b *browser) View() string {
	theme := b.shared.theme
	width := maxInt(b.shared.width, 40)
	var out strings.Builder

	title := b.chat.Title
	if title == "" {
		title = "(untitled chat)"
	}
	out.WriteString(components.RenderHeader(theme, title, "turn browser", width))
	out.WriteString("\n\n")

	switch {
	case b.loading && !b.loaded:
		out.WriteString(b.spinner.View(theme))
		out.WriteString("\n")
	case b.current == nil:
		out.WriteString(theme.ListEmpty.Render("empty chat - press tab to write the first message"))
		out.WriteString("\n")
	default:
		out.WriteString(b.renderTurn(width))
	}
	out.WriteString("\n")

	if b.loading && b.loaded {
		out.WriteString(b.spinner.View(theme))
		out.WriteString("\n")
	}

	out.WriteString(b.renderInput(width))
	out.WriteString("\n")

	shortcuts := []components.Shortcut{
		{Key: "w/s/a/d", Desc: "navigate"},
		{Key: "tab", Desc: "compose"},
		{Key: "p", Desc: "params"},
		{Key: "esc", Desc: "back"},
	}
	if b.focused {
		shortcuts = []components.Shortcut{
			{Key: "enter", Desc: "review"},
			{Key: "esc", Desc: "done"},
		}
	}
	info := b.params.Summary()
	out.WriteString(components.RenderStatusBar(theme, shortcuts, info, width))
	return out.String()
}

func (b *browser) renderTurn(width int) string {
	theme := b.shared.theme
	turn := b.current
	inner := maxInt(width-6, 20)

	var parts []string
	parts = append(parts, renderTurnMeta(theme, turn, b.shared.cfg.UI.ShowTurnIDs))

	index, count := b.navState.SiblingPosition()
	if pos := renderSiblingPosition(theme, index, count); pos != "" {
		parts = append(parts, pos)
	}
	if children := b.navState.ChildCount(); children > 1 {
		parts = append(parts, theme.TurnMeta.Render(fmt.Sprintf("%d replies below", children)))
	}

	parts = append(parts, renderTurnBlocks(theme, turn, inner))

	if errLine := renderTurnError(theme, turn); errLine != "" {
		parts = append(parts, errLine)
	}

	up := has(b.navState.Up)
	down := has(b.navState.Down)
	left := has(b.navState.Left)
	right := has(b.navState.Right)
	parts = append(parts, renderNavHints(theme, up, down, left, right))

	sep := "\n\n"
	if b.shared.cfg.UI.CompactMode {
		sep = "\n"
	}
	return theme.TurnBox.Width(maxInt(width-2, 24)).Render(strings.Join(parts, sep))
}

func (b *browser) renderInput(width int) string {
	theme := b.shared.theme
	if b.inputLocked() {
		return theme.TurnError.Render("input locked: this turn failed; pick a different branch to continue")
	}
	b.input.SetWidth(maxInt(width-4, 20))
	return theme.InputContainer.Render(b.input.View())
}

// has adapts a directional query to a plain availability check.
func has(dir func() (string, bool)) bool {
	_, ok := dir()
	return ok
}
