// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/ui/components"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// chatList shows the chats of one project.
type chatList struct {
	shared  *shared
	project model.Project

	chats   []model.Chat
	cursor  int
	loading bool
	spinner components.Spinner

	naming     bool
	titleInput textinput.Model
}

func newChatList(sh *shared, project model.Project) *chatList {
	input := textinput.New()
	input.Placeholder = "chat title"
	input.CharLimit = 200
	input.Width = 40

	return &chatList{
		shared:     sh,
		project:    project,
		loading:    true,
		spinner:    components.NewSpinner("loading chats"),
		titleInput: input,
	}
}

func (c *chatList) Init() tea.Cmd {
	return tea.Batch(c.spinner.Start(), c.loadCmd())
}

func (c *chatList) loadCmd() tea.Cmd {
	client := c.shared.client
	projectID := c.project.ID
	return func() tea.Msg {
		chats, err := client.Chats(context.Background(), projectID)
		return chatsLoadedMsg{chats: chats, err: err}
	}
}

func (c *chatList) createCmd(title string) tea.Cmd {
	client := c.shared.client
	projectID := c.project.ID
	return func() tea.Msg {
		chat, err := client.CreateChat(context.Background(), projectID, title)
		return chatCreatedMsg{chat: chat, err: err}
	}
}

func (c *chatList) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chatsLoadedMsg:
		c.loading = false
		c.spinner.Stop()
		if msg.err != nil {
			c.shared.toasts.AddError("loading chats failed: " + msg.err.Error())
			return c, nil
		}
		c.chats = msg.chats
		if c.cursor >= len(c.chats) {
			c.cursor = maxInt(len(c.chats)-1, 0)
		}
		return c, nil

	case chatCreatedMsg:
		c.loading = false
		c.spinner.Stop()
		if msg.err != nil {
			c.shared.toasts.AddError("creating chat failed: " + msg.err.Error())
			return c, nil
		}
		// Jump straight into the new chat.
		return c, pushScreen(newBrowser(c.shared, *msg.chat))

	case chatSelectedMsg:
		// Returning from a browser; refresh titles and timestamps.
		c.loading = true
		return c, tea.Batch(c.spinner.Start(), c.loadCmd())

	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	if cmd := c.spinner.Update(msg); cmd != nil {
		return c, cmd
	}
	return c, nil
}

func (c *chatList) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if c.naming {
		switch msg.String() {
		case "esc":
			c.naming = false
			c.titleInput.Reset()
			return c, nil
		case "enter":
			title := strings.TrimSpace(c.titleInput.Value())
			if title == "" {
				return c, nil
			}
			c.naming = false
			c.titleInput.Reset()
			c.loading = true
			c.spinner.SetMessage("creating chat")
			return c, tea.Batch(c.spinner.Start(), c.createCmd(title))
		}
		var cmd tea.Cmd
		c.titleInput, cmd = c.titleInput.Update(msg)
		return c, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.chats)-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.New):
		c.naming = true
		return c, c.titleInput.Focus()
	case key.Matches(msg, keys.Refresh):
		c.loading = true
		c.spinner.SetMessage("loading chats")
		return c, tea.Batch(c.spinner.Start(), c.loadCmd())
	case key.Matches(msg, keys.Back):
		return c, popScreen(nil)
	case key.Matches(msg, keys.Select):
		if len(c.chats) == 0 {
			return c, nil
		}
		return c, pushScreen(newBrowser(c.shared, c.chats[c.cursor]))
	}
	return c, nil
}

func (c *chatList) View() string {
	theme := c.shared.theme
	var b strings.Builder

	b.WriteString(components.RenderHeader(theme, c.project.Name, "chats", c.shared.width))
	b.WriteString("\n\n")

	switch {
	case c.loading:
		b.WriteString(c.spinner.View(theme))
	case len(c.chats) == 0:
		b.WriteString(theme.ListEmpty.Render("no chats yet - press n to start one"))
	default:
		for i, chat := range c.chats {
			title := chat.Title
			if title == "" {
				title = "(untitled)"
			}
			meta := theme.ListMeta.Render(chat.UpdatedAt.Format("2006-01-02 15:04"))
			if i == c.cursor {
				b.WriteString(theme.ListSelected.Render("> "+title) + " " + meta)
			} else {
				b.WriteString(theme.ListItem.Render("  "+title) + " " + meta)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if c.naming {
		b.WriteString(theme.InputPrompt.Render("new chat: "))
		b.WriteString(c.titleInput.View())
		b.WriteString("\n")
	}

	shortcuts := []components.Shortcut{
		{Key: "enter", Desc: "open"},
		{Key: "n", Desc: "new"},
		{Key: "r", Desc: "refresh"},
		{Key: "esc", Desc: "back"},
	}
	info := fmt.Sprintf("%d chats", len(c.chats))
	b.WriteString("\n")
	b.WriteString(components.RenderStatusBar(theme, shortcuts, info, c.shared.width))
	return b.String()
}
