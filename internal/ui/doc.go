// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the meridian terminal interface on bubbletea.
//
// The root App model owns a stack of screens: project list, chat list,
// turn browser, submission confirmation, params editor, and the live
// streaming view. Screens are pushed and popped with typed result
// messages rather than callbacks, so each screen's Update can pattern
// match on what the dismissed screen returned.
//
// All network work runs in tea.Cmd goroutines; screens stay on the
// single event loop and mutate display state only from messages. The
// root model also owns the toast overlay and the double-ctrl+c quit
// guard.
package ui
