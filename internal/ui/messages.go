// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/config"
	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/nav"

	tea "github.com/charmbracelet/bubbletea"
)

// ============================================================================
// Screen stack messages
// ============================================================================

// pushMsg pushes a new screen onto the stack.
type pushMsg struct {
	screen screen
}

// popMsg removes the top screen. result, when non-nil, is delivered to
// the screen underneath so it can react to what the dismissed screen
// decided.
type popMsg struct {
	result tea.Msg
}

func pushScreen(s screen) tea.Cmd {
	return func() tea.Msg { return pushMsg{screen: s} }
}

func popScreen(result tea.Msg) tea.Cmd {
	return func() tea.Msg { return popMsg{result: result} }
}

// ============================================================================
// Data messages
// ============================================================================

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type projectCreatedMsg struct {
	project *model.Project
	err     error
}

type chatsLoadedMsg struct {
	chats []model.Chat
	err   error
}

type chatCreatedMsg struct {
	chat *model.Chat
	err  error
}

// navDoneMsg carries the outcome of a tree navigation attempt.
// Cancelled results are dropped by the browser; only the latest
// committed result reaches the display.
type navDoneMsg struct {
	result nav.Result
}

type turnCreatedMsg struct {
	resp *api.CreateTurnResponse
	err  error
}

// ============================================================================
// Screen result messages (delivered via popMsg.result)
// ============================================================================

type chatSelectedMsg struct {
	chat model.Chat
}

type confirmAction int

const (
	confirmSubmit confirmAction = iota
	confirmEditParams
	confirmCancel
)

// confirmResultMsg is returned by the confirmation screen.
type confirmResultMsg struct {
	action confirmAction
}

// paramsResultMsg is returned by the params editor. params is nil when
// the editor was cancelled.
type paramsResultMsg struct {
	params *model.RequestParams

	// reopenConfirm is set when the editor was opened from the
	// confirmation screen, so the browser re-shows it after editing.
	reopenConfirm bool
}

// streamFinishedMsg is returned by the streaming screen. turnID is the
// completed assistant turn, or empty when the stream was cancelled or
// failed; either way the browser re-fetches to pick up server state.
type streamFinishedMsg struct {
	turnID string
}

// ============================================================================
// Runtime messages
// ============================================================================

type streamTickMsg struct{}

// configReloadedMsg arrives from the fsnotify watcher when the config
// file changes on disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// ConfigReloaded wraps a freshly loaded config for delivery into the
// running program via tea.Program.Send.
func ConfigReloaded(cfg *config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}
