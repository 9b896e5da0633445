// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the shared binding set. Screens pick the subset they
// advertise in the status bar; the help text lives on the bindings
// themselves so screen footers stay consistent.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Back     key.Binding
	New      key.Binding
	Refresh  key.Binding
	Params   key.Binding
	Focus    key.Binding
	Quit     key.Binding
	ForceEnd key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("w", "up"),
		key.WithHelp("w/↑", "parent"),
	),
	Down: key.NewBinding(
		key.WithKeys("s", "down"),
		key.WithHelp("s/↓", "child"),
	),
	Left: key.NewBinding(
		key.WithKeys("a", "left"),
		key.WithHelp("a/←", "prev sibling"),
	),
	Right: key.NewBinding(
		key.WithKeys("d", "right"),
		key.WithHelp("d/→", "next sibling"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Params: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "params"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "compose"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	ForceEnd: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "interrupt"),
	),
}
