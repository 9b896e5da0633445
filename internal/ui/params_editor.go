// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/ui/components"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// providerModels maps each provider to the model identifiers the
// editor cycles through. The lists are advisory; the server is the
// authority on what it accepts.
var providerModels = map[string][]string{
	"anthropic": {"claude-sonnet-4-5", "claude-opus-4-1", "claude-haiku-4-5"},
	"openai":    {"gpt-4o", "gpt-4o-mini", "o3"},
	"google":    {"gemini-2.5-pro", "gemini-2.5-flash"},
}

var providerOrder = []string{"anthropic", "openai", "google"}

// editor field indices, top to bottom.
const (
	fieldProvider = iota
	fieldModel
	fieldTemperature
	fieldMaxTokens
	fieldThinking
	fieldCount
)

// paramsEditor edits a RequestParams bundle. Saving pops with the new
// bundle; cancelling pops with nil so the caller keeps its old one.
type paramsEditor struct {
	shared *shared

	params        model.RequestParams
	field         int
	tokensInput   textinput.Model
	reopenConfirm bool
	invalid       string
}

func newParamsEditor(sh *shared, params model.RequestParams, reopenConfirm bool) *paramsEditor {
	input := textinput.New()
	input.CharLimit = 7
	input.Width = 8
	input.SetValue(strconv.Itoa(params.MaxTokens))

	return &paramsEditor{
		shared:        sh,
		params:        params,
		tokensInput:   input,
		reopenConfirm: reopenConfirm,
	}
}

func (e *paramsEditor) Init() tea.Cmd { return nil }

func (e *paramsEditor) Update(msg tea.Msg) (screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil
	}

	switch keyMsg.String() {
	case "esc":
		return e, popScreen(paramsResultMsg{params: nil, reopenConfirm: e.reopenConfirm})

	case "enter":
		if err := e.commitTokens(); err != nil {
			e.invalid = err.Error()
			return e, nil
		}
		if err := e.params.Validate(); err != nil {
			e.invalid = err.Error()
			return e, nil
		}
		saved := e.params
		return e, popScreen(paramsResultMsg{params: &saved, reopenConfirm: e.reopenConfirm})

	case "up", "shift+tab":
		e.setField((e.field + fieldCount - 1) % fieldCount)
		return e, nil

	case "down", "tab":
		e.setField((e.field + 1) % fieldCount)
		return e, nil

	case "left":
		e.adjust(-1)
		return e, nil

	case "right":
		e.adjust(+1)
		return e, nil

	case " ":
		if e.field == fieldThinking {
			e.params.ThinkingEnabled = !e.params.ThinkingEnabled
			return e, nil
		}
	}

	if e.field == fieldMaxTokens {
		var cmd tea.Cmd
		e.tokensInput, cmd = e.tokensInput.Update(keyMsg)
		return e, cmd
	}
	return e, nil
}

func (e *paramsEditor) setField(field int) {
	if e.field == fieldMaxTokens {
		if err := e.commitTokens(); err != nil {
			e.invalid = err.Error()
		} else {
			e.invalid = ""
		}
		e.tokensInput.Blur()
	}
	e.field = field
	if e.field == fieldMaxTokens {
		e.tokensInput.Focus()
	}
}

// adjust moves the active field's value one step in the given direction.
func (e *paramsEditor) adjust(dir int) {
	switch e.field {
	case fieldProvider:
		idx := indexOf(providerOrder, e.params.Provider)
		idx = (idx + dir + len(providerOrder)) % len(providerOrder)
		e.params.Provider = providerOrder[idx]
		// Model options depend on the provider; snap to the first one.
		e.params.Model = providerModels[e.params.Provider][0]
	case fieldModel:
		options := providerModels[e.params.Provider]
		if len(options) == 0 {
			return
		}
		idx := indexOf(options, e.params.Model)
		idx = (idx + dir + len(options)) % len(options)
		e.params.Model = options[idx]
	case fieldTemperature:
		t := e.params.Temperature + 0.1*float64(dir)
		if t < 0 {
			t = 0
		}
		if t > 2 {
			t = 2
		}
		// Keep one decimal so repeated stepping never drifts.
		e.params.Temperature = float64(int(t*10+0.5)) / 10
	case fieldThinking:
		e.params.ThinkingEnabled = !e.params.ThinkingEnabled
	}
}

func (e *paramsEditor) commitTokens() error {
	raw := strings.TrimSpace(e.tokensInput.Value())
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("max_tokens must be a number, got %q", raw)
	}
	if n <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", n)
	}
	e.params.MaxTokens = n
	return nil
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return 0
}

func (e *paramsEditor) View() string {
	theme := e.shared.theme

	row := func(field int, label, value string) string {
		labelStyle := theme.FieldLabel
		valueStyle := theme.FieldValue
		marker := "  "
		if field == e.field {
			valueStyle = theme.FieldActive
			marker = "> "
		}
		return marker + labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value)
	}

	thinking := "off"
	if e.params.ThinkingEnabled {
		thinking = "on"
	}

	var b strings.Builder
	b.WriteString(theme.DialogTitle.Render("request params"))
	b.WriteString("\n\n")
	b.WriteString(row(fieldProvider, "provider", e.params.Provider))
	b.WriteString("\n")
	b.WriteString(row(fieldModel, "model", e.params.Model))
	b.WriteString("\n")
	b.WriteString(row(fieldTemperature, "temperature", fmt.Sprintf("%.1f", e.params.Temperature)))
	b.WriteString("\n")
	b.WriteString(row(fieldMaxTokens, "max tokens", e.tokensInput.View()))
	b.WriteString("\n")
	b.WriteString(row(fieldThinking, "thinking", thinking))
	if e.invalid != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.FieldInvalid.Render(e.invalid))
	}

	dialog := theme.DialogBox.Render(b.String())
	body := centerInFrame(dialog, e.shared.width, maxInt(e.shared.height-2, 1))

	shortcuts := []components.Shortcut{
		{Key: "↑/↓", Desc: "field"},
		{Key: "←/→", Desc: "change"},
		{Key: "enter", Desc: "save"},
		{Key: "esc", Desc: "cancel"},
	}
	return body + "\n" + components.RenderStatusBar(theme, shortcuts, "", e.shared.width)
}
