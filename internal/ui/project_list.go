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

// projectList is the entry screen: every project on the server, newest
// activity first as the server returns them.
type projectList struct {
	shared *shared

	projects []model.Project
	cursor   int
	loading  bool
	spinner  components.Spinner

	// naming is set while the inline new-project prompt is open.
	naming    bool
	nameInput textinput.Model
}

func newProjectList(sh *shared) *projectList {
	input := textinput.New()
	input.Placeholder = "project name"
	input.CharLimit = 120
	input.Width = 40

	return &projectList{
		shared:    sh,
		loading:   true,
		spinner:   components.NewSpinner("loading projects"),
		nameInput: input,
	}
}

func (p *projectList) Init() tea.Cmd {
	return tea.Batch(p.spinner.Start(), p.loadCmd())
}

func (p *projectList) loadCmd() tea.Cmd {
	client := p.shared.client
	return func() tea.Msg {
		projects, err := client.Projects(context.Background())
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (p *projectList) createCmd(name string) tea.Cmd {
	client := p.shared.client
	return func() tea.Msg {
		project, err := client.CreateProject(context.Background(), name)
		return projectCreatedMsg{project: project, err: err}
	}
}

func (p *projectList) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		p.loading = false
		p.spinner.Stop()
		if msg.err != nil {
			p.shared.toasts.AddError("loading projects failed: " + msg.err.Error())
			return p, nil
		}
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = maxInt(len(p.projects)-1, 0)
		}
		return p, nil

	case projectCreatedMsg:
		p.loading = false
		p.spinner.Stop()
		if msg.err != nil {
			p.shared.toasts.AddError("creating project failed: " + msg.err.Error())
			return p, nil
		}
		p.shared.toasts.AddStatus("created project " + msg.project.Name)
		return p, tea.Batch(p.spinner.Start(), p.loadCmd())

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if cmd := p.spinner.Update(msg); cmd != nil {
		return p, cmd
	}
	return p, nil
}

func (p *projectList) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if p.naming {
		switch msg.String() {
		case "esc":
			p.naming = false
			p.nameInput.Reset()
			return p, nil
		case "enter":
			name := strings.TrimSpace(p.nameInput.Value())
			if name == "" {
				return p, nil
			}
			p.naming = false
			p.nameInput.Reset()
			p.loading = true
			p.spinner.SetMessage("creating project")
			return p, tea.Batch(p.spinner.Start(), p.createCmd(name))
		}
		var cmd tea.Cmd
		p.nameInput, cmd = p.nameInput.Update(msg)
		return p, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.New):
		p.naming = true
		return p, p.nameInput.Focus()
	case key.Matches(msg, keys.Refresh):
		p.loading = true
		p.spinner.SetMessage("loading projects")
		return p, tea.Batch(p.spinner.Start(), p.loadCmd())
	case key.Matches(msg, keys.Select):
		if len(p.projects) == 0 {
			return p, nil
		}
		project := p.projects[p.cursor]
		return p, pushScreen(newChatList(p.shared, project))
	}
	return p, nil
}

func (p *projectList) View() string {
	theme := p.shared.theme
	var b strings.Builder

	b.WriteString(components.RenderHeader(theme, "meridian", "projects", p.shared.width))
	b.WriteString("\n\n")

	switch {
	case p.loading:
		b.WriteString(p.spinner.View(theme))
	case len(p.projects) == 0:
		b.WriteString(theme.ListEmpty.Render("no projects yet - press n to create one"))
	default:
		for i, project := range p.projects {
			line := project.Name
			meta := theme.ListMeta.Render(project.UpdatedAt.Format("2006-01-02 15:04"))
			if i == p.cursor {
				b.WriteString(theme.ListSelected.Render("> "+line) + " " + meta)
			} else {
				b.WriteString(theme.ListItem.Render("  "+line) + " " + meta)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if p.naming {
		b.WriteString(theme.InputPrompt.Render("new project: "))
		b.WriteString(p.nameInput.View())
		b.WriteString("\n")
	}

	shortcuts := []components.Shortcut{
		{Key: "enter", Desc: "open"},
		{Key: "n", Desc: "new"},
		{Key: "r", Desc: "refresh"},
		{Key: "ctrl+c", Desc: "quit"},
	}
	info := fmt.Sprintf("%d projects", len(p.projects))
	b.WriteString("\n")
	b.WriteString(components.RenderStatusBar(theme, shortcuts, info, p.shared.width))
	return b.String()
}
