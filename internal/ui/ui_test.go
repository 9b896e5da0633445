// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"testing"

	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/config"
	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/nav"
	"github.com/haowjy/meridian-tui/internal/ui/components"
	"github.com/haowjy/meridian-tui/internal/ui/styles"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestShared() *shared {
	return &shared{
		client: api.NewClient("http://localhost:0", "test-session"),
		cfg:    config.Default(),
		theme:  styles.NewTheme(),
		toasts: components.NewToastManager(),
		width:  80,
		height: 24,
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

// runCmd executes a command and returns the message it produces.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// popResult unwraps the result carried by a popScreen command.
func popResult(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msg := runCmd(t, cmd)
	pop, ok := msg.(popMsg)
	if !ok {
		t.Fatalf("expected popMsg, got %T", msg)
	}
	return pop.result
}

// ============================================================================
// Confirmation screen
// ============================================================================

func TestConfirm_SubmitIsDefault(t *testing.T) {
	c := newConfirm(newTestShared(), "hello", model.DefaultParams())

	_, cmd := c.Update(keyEnter)
	result, ok := popResult(t, cmd).(confirmResultMsg)
	if !ok {
		t.Fatal("expected confirmResultMsg")
	}
	if result.action != confirmSubmit {
		t.Errorf("default action = %v, want submit", result.action)
	}
}

func TestConfirm_ChoiceNavigation(t *testing.T) {
	c := newConfirm(newTestShared(), "hello", model.DefaultParams())

	// Right twice lands on cancel; a third right stays put.
	for i := 0; i < 3; i++ {
		c.Update(keyRight)
	}
	_, cmd := c.Update(keyEnter)
	result := popResult(t, cmd).(confirmResultMsg)
	if result.action != confirmCancel {
		t.Errorf("action after right x3 = %v, want cancel", result.action)
	}
}

func TestConfirm_MiddleChoiceEditsParams(t *testing.T) {
	c := newConfirm(newTestShared(), "hello", model.DefaultParams())

	c.Update(keyRight)
	_, cmd := c.Update(keyEnter)
	result := popResult(t, cmd).(confirmResultMsg)
	if result.action != confirmEditParams {
		t.Errorf("action = %v, want edit params", result.action)
	}
}

func TestConfirm_EscCancels(t *testing.T) {
	c := newConfirm(newTestShared(), "hello", model.DefaultParams())

	_, cmd := c.Update(keyEsc)
	result := popResult(t, cmd).(confirmResultMsg)
	if result.action != confirmCancel {
		t.Errorf("esc action = %v, want cancel", result.action)
	}
}

// ============================================================================
// Params editor
// ============================================================================

func TestParamsEditor_SaveReturnsEditedParams(t *testing.T) {
	e := newParamsEditor(newTestShared(), model.DefaultParams(), false)

	// Bump temperature one step: down twice to the temperature field,
	// then right.
	e.Update(keyDown)
	e.Update(keyDown)
	e.Update(keyRight)

	_, cmd := e.Update(keyEnter)
	result, ok := popResult(t, cmd).(paramsResultMsg)
	if !ok {
		t.Fatal("expected paramsResultMsg")
	}
	if result.params == nil {
		t.Fatal("saved params are nil")
	}
	if got, want := result.params.Temperature, 1.1; got != want {
		t.Errorf("temperature = %v, want %v", got, want)
	}
}

func TestParamsEditor_CancelReturnsNil(t *testing.T) {
	e := newParamsEditor(newTestShared(), model.DefaultParams(), true)

	e.Update(keyRight) // change something first
	_, cmd := e.Update(keyEsc)
	result := popResult(t, cmd).(paramsResultMsg)
	if result.params != nil {
		t.Error("cancel should return nil params")
	}
	if !result.reopenConfirm {
		t.Error("reopenConfirm flag lost")
	}
}

func TestParamsEditor_ProviderChangeSnapsModel(t *testing.T) {
	e := newParamsEditor(newTestShared(), model.DefaultParams(), false)

	e.Update(keyRight) // anthropic -> openai
	if e.params.Provider != "openai" {
		t.Fatalf("provider = %q, want openai", e.params.Provider)
	}
	if e.params.Model != providerModels["openai"][0] {
		t.Errorf("model = %q, want first openai model", e.params.Model)
	}
}

func TestParamsEditor_TemperatureClamped(t *testing.T) {
	params := model.DefaultParams()
	params.Temperature = 1.9
	e := newParamsEditor(newTestShared(), params, false)

	e.Update(keyDown)
	e.Update(keyDown)
	for i := 0; i < 5; i++ {
		e.Update(keyRight)
	}
	if e.params.Temperature != 2.0 {
		t.Errorf("temperature = %v, want clamped to 2.0", e.params.Temperature)
	}
	for i := 0; i < 30; i++ {
		e.Update(keyLeft)
	}
	if e.params.Temperature != 0.0 {
		t.Errorf("temperature = %v, want clamped to 0.0", e.params.Temperature)
	}
}

func TestParamsEditor_RejectsBadMaxTokens(t *testing.T) {
	e := newParamsEditor(newTestShared(), model.DefaultParams(), false)
	e.setField(fieldMaxTokens)
	e.tokensInput.SetValue("zero")

	_, cmd := e.Update(keyEnter)
	if cmd != nil {
		t.Fatal("invalid max_tokens should not save")
	}
	if e.invalid == "" {
		t.Error("expected a validation message")
	}
}

// ============================================================================
// Browser
// ============================================================================

func browserWithTurn(t *testing.T, turn *model.Turn, page *model.TurnPage) *browser {
	t.Helper()
	b := newBrowser(newTestShared(), model.Chat{ID: "chat-1", Title: "test"})
	res := nav.Result{
		Outcome: nav.OutcomeCommitted,
		Current: turn,
		Page:    page,
		State:   nav.NewState(turn, page),
	}
	b.handleNavDone(res)
	return b
}

func TestBrowser_NavDoneCommitsTurn(t *testing.T) {
	turn := &model.Turn{ID: "turn-1", Role: model.RoleUser, Status: model.StatusCompleted, SiblingIDs: []string{"turn-1"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	if b.current == nil || b.current.ID != "turn-1" {
		t.Fatal("turn not committed")
	}
	if b.loading {
		t.Error("loading flag should clear")
	}
}

func TestBrowser_CancelledNavIgnored(t *testing.T) {
	turn := &model.Turn{ID: "turn-1", Role: model.RoleUser, SiblingIDs: []string{"turn-1"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	b.handleNavDone(nav.Result{Outcome: nav.OutcomeCancelled})
	if b.current == nil || b.current.ID != "turn-1" {
		t.Error("cancelled result must not touch the committed turn")
	}
}

func TestBrowser_FailedTurnLocksInput(t *testing.T) {
	errText := "provider quota exhausted"
	turn := &model.Turn{
		ID:         "turn-1",
		Role:       model.RoleAssistant,
		Status:     model.StatusFailed,
		Error:      &errText,
		SiblingIDs: []string{"turn-1"},
	}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	if !b.inputLocked() {
		t.Fatal("input should be locked on a failed turn")
	}

	_, cmd := b.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if cmd != nil {
		t.Error("focusing a locked input should be a no-op")
	}
	if b.focused {
		t.Error("input must stay unfocused")
	}
	if !b.shared.toasts.HasToasts() {
		t.Error("expected a warning toast")
	}
}

func TestBrowser_DisabledDirectionIsNoop(t *testing.T) {
	turn := &model.Turn{ID: "root", Role: model.RoleUser, SiblingIDs: []string{"root"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	// Root turn: no parent, no siblings, no children.
	for _, msg := range []tea.KeyMsg{keyRune('w'), keyRune('a'), keyRune('d'), keyRune('s')} {
		if _, cmd := b.handleKey(msg); cmd != nil {
			t.Errorf("key %q should be a no-op at a lone root", msg.String())
		}
	}
}

func TestBrowser_ComposeOpensConfirmation(t *testing.T) {
	turn := &model.Turn{ID: "turn-1", Role: model.RoleAssistant, Status: model.StatusCompleted, SiblingIDs: []string{"turn-1"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	b.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if !b.focused {
		t.Fatal("tab should focus the input")
	}
	b.input.SetValue("  what about the other branch?  ")

	_, cmd := b.handleKey(keyEnter)
	msg := runCmd(t, cmd)
	push, ok := msg.(pushMsg)
	if !ok {
		t.Fatalf("expected pushMsg, got %T", msg)
	}
	confirmScreen, ok := push.screen.(*confirm)
	if !ok {
		t.Fatalf("expected confirmation screen, got %T", push.screen)
	}
	if confirmScreen.content != "what about the other branch?" {
		t.Errorf("content = %q, want trimmed message", confirmScreen.content)
	}
	if b.pending == "" {
		t.Error("pending content not recorded")
	}
}

func TestBrowser_EmptyComposeDoesNothing(t *testing.T) {
	turn := &model.Turn{ID: "turn-1", Role: model.RoleAssistant, SiblingIDs: []string{"turn-1"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	b.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	b.input.SetValue("   ")
	if _, cmd := b.handleKey(keyEnter); cmd != nil {
		t.Error("blank message should not open the confirmation")
	}
}

func TestBrowser_ParamsResultUpdatesBundle(t *testing.T) {
	turn := &model.Turn{ID: "turn-1", Role: model.RoleAssistant, SiblingIDs: []string{"turn-1"}}
	page := &model.TurnPage{Turns: []model.Turn{*turn}}
	b := browserWithTurn(t, turn, page)

	next := model.DefaultParams()
	next.Temperature = 0.2
	b.Update(paramsResultMsg{params: &next})
	if b.params.Temperature != 0.2 {
		t.Errorf("params not applied: temperature = %v", b.params.Temperature)
	}

	// A cancelled editor leaves the bundle alone.
	b.Update(paramsResultMsg{params: nil})
	if b.params.Temperature != 0.2 {
		t.Error("nil params result must not reset the bundle")
	}
}

// ============================================================================
// App stack
// ============================================================================

func TestApp_PushPopStack(t *testing.T) {
	app := NewApp(api.NewClient("http://localhost:0", "t"), config.Default())

	next := newConfirm(app.shared, "hi", model.DefaultParams())
	app.Update(pushMsg{screen: next})
	if len(app.stack) != 2 {
		t.Fatalf("stack depth = %d, want 2", len(app.stack))
	}
	app.Update(popMsg{})
	if len(app.stack) != 1 {
		t.Fatalf("stack depth after pop = %d, want 1", len(app.stack))
	}
	// The root screen never pops.
	app.Update(popMsg{})
	if len(app.stack) != 1 {
		t.Error("root screen must not pop")
	}
}

func TestApp_DoubleCtrlCQuits(t *testing.T) {
	app := NewApp(api.NewClient("http://localhost:0", "t"), config.Default())
	ctrlC := tea.KeyMsg{Type: tea.KeyCtrlC}

	_, cmd := app.Update(ctrlC)
	if cmd != nil {
		t.Fatal("first ctrl+c should only arm the guard")
	}
	if !app.shared.toasts.HasToasts() {
		t.Error("expected a quit-guard toast")
	}

	_, cmd = app.Update(ctrlC)
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

// ============================================================================
// Shared rendering helpers
// ============================================================================

func TestTruncateForPreview(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short stays", "hello", 10, "hello"},
		{"trimmed", "  hi  ", 10, "hi"},
		{"long cut", "abcdefghij", 4, "abcd…"},
		{"wide runes cut on rune boundary", "日本語テスト", 3, "日本語…"},
		{"wide runes within limit", "日本語", 5, "日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateForPreview(tt.in, tt.limit); got != tt.want {
				t.Errorf("truncateForPreview(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestRenderSiblingPosition(t *testing.T) {
	theme := styles.NewTheme()
	if got := renderSiblingPosition(theme, 1, 1); got != "" {
		t.Errorf("lone turn should render nothing, got %q", got)
	}
	if got := renderSiblingPosition(theme, 2, 3); got == "" {
		t.Error("branching turn should render a position")
	}
}
