// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the meridian TUI:
// toast notifications, the status bar, the screen header, and the loading
// spinner. Components are plain render helpers or small bubbletea models;
// screens compose them and own the layout.
package components
