// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/config"
	"github.com/haowjy/meridian-tui/internal/ui/components"
	"github.com/haowjy/meridian-tui/internal/ui/styles"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// quitGuardWindow is how long a second ctrl+c counts as a quit
// confirmation.
const quitGuardWindow = 2 * time.Second

// screen is one entry on the App stack. Update returns the screen to
// keep on top, which lets screens replace themselves without reaching
// into the stack.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View() string
}

// ctrlCOwner is implemented by screens that consume ctrl+c themselves
// (the streaming screen uses it to interrupt instead of quitting).
type ctrlCOwner interface {
	ownsCtrlC() bool
}

// shared is the context handed to every screen: the API client, live
// config, theme, toasts, and the current terminal size.
type shared struct {
	client *api.Client
	cfg    *config.Config
	theme  *styles.Theme
	toasts *components.ToastManager

	width  int
	height int
}

// App is the root bubbletea model. It owns the screen stack, routes
// window sizing and toasts, and applies the double-ctrl+c quit guard.
type App struct {
	shared *shared
	stack  []screen

	lastCtrlC time.Time
	quitting  bool
}

// NewApp builds the root model with the project list as the initial
// screen.
func NewApp(client *api.Client, cfg *config.Config) *App {
	sh := &shared{
		client: client,
		cfg:    cfg,
		theme:  styles.NewTheme(),
		toasts: components.NewToastManager(),
	}
	switch cfg.UI.Theme {
	case "light":
		sh.theme.SetDarkBackground(false)
	case "dark":
		sh.theme.SetDarkBackground(true)
	}
	return &App{
		shared: sh,
		stack:  []screen{newProjectList(sh)},
	}
}

func (a *App) top() screen {
	return a.stack[len(a.stack)-1]
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.top().Init(), components.ToastTickCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.shared.width = msg.Width
		a.shared.height = msg.Height
		a.shared.theme.SetSize(msg.Width, msg.Height)
		// Every screen on the stack gets the new size so the ones
		// underneath are laid out correctly when revealed.
		var cmds []tea.Cmd
		for i, s := range a.stack {
			next, cmd := s.Update(msg)
			a.stack[i] = next
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if owner, ok := a.top().(ctrlCOwner); ok && owner.ownsCtrlC() {
				break // streaming screen interrupts instead
			}
			now := time.Now()
			if now.Sub(a.lastCtrlC) < quitGuardWindow {
				a.quitting = true
				return a, tea.Quit
			}
			a.lastCtrlC = now
			a.shared.toasts.AddStatus("press ctrl+c again to quit")
			return a, nil
		}

	case components.ToastTickMsg:
		a.shared.toasts.Tick()
		return a, components.ToastTickCmd()

	case pushMsg:
		a.stack = append(a.stack, msg.screen)
		return a, msg.screen.Init()

	case popMsg:
		if len(a.stack) > 1 {
			a.stack = a.stack[:len(a.stack)-1]
		}
		if msg.result == nil {
			return a, nil
		}
		next, cmd := a.top().Update(msg.result)
		a.stack[len(a.stack)-1] = next
		return a, cmd

	case configReloadedMsg:
		a.shared.cfg = msg.cfg
		a.shared.toasts.AddStatus("configuration reloaded")
		return a, nil
	}

	next, cmd := a.top().Update(msg)
	a.stack[len(a.stack)-1] = next
	return a, cmd
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	view := a.top().View()
	if a.shared.toasts.HasToasts() {
		stack := components.RenderToastStack(a.shared.toasts.Active(), a.shared.width, 0)
		view += "\n" + lipgloss.PlaceHorizontal(maxInt(a.shared.width, 1), lipgloss.Right, stack)
	}
	return view
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
