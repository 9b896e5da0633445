// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"
	"time"

	"github.com/haowjy/meridian-tui/internal/model"
	"github.com/haowjy/meridian-tui/internal/stream"
	"github.com/haowjy/meridian-tui/internal/ui/components"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// streamFrameInterval is how often the live transcript is repainted
// while events are flowing.
const streamFrameInterval = time.Second / 30

// streamDoneMsg carries the terminal result of the consumer goroutine.
type streamDoneMsg struct {
	result stream.Result
}

// streaming shows the just-sent user turn above the assistant's live
// transcript. The consumer runs in a single tea.Cmd goroutine; the
// screen only polls its transcript on a frame tick, so rendering never
// blocks the event stream.
type streaming struct {
	shared   *shared
	userTurn model.Turn
	consumer *stream.Consumer

	view      viewport.Model
	spinner   components.Spinner
	done      bool
	result    stream.Result
	interrupt bool

	// follow keeps the viewport pinned to the newest output until the
	// operator scrolls up.
	follow bool
}

func newStreaming(sh *shared, userTurn model.Turn, consumer *stream.Consumer) *streaming {
	s := &streaming{
		shared:   sh,
		userTurn: userTurn,
		consumer: consumer,
		spinner:  components.NewSpinner("waiting for response"),
		follow:   true,
	}
	s.view = viewport.New(maxInt(sh.width-2, 24), s.transcriptHeight(sh.height))
	return s
}

// transcriptHeight is the terminal rows left for the live transcript
// after the header, the user turn box, and the status bar.
func (s *streaming) transcriptHeight(total int) int {
	userBox := strings.Count(renderUserTurnBox(s.shared.theme, &s.userTurn, s.shared.width, s.shared.cfg.UI.ShowTurnIDs), "\n") + 1
	return maxInt(total-userBox-7, 3)
}

func (s *streaming) Init() tea.Cmd {
	consumer := s.consumer
	run := func() tea.Msg {
		return streamDoneMsg{result: consumer.Run(context.Background())}
	}
	return tea.Batch(s.spinner.Start(), run, frameTickCmd())
}

func frameTickCmd() tea.Cmd {
	return tea.Tick(streamFrameInterval, func(time.Time) tea.Msg {
		return streamTickMsg{}
	})
}

// ownsCtrlC keeps the root quit guard away while the stream is live so
// ctrl+c means interrupt, not quit.
func (s *streaming) ownsCtrlC() bool {
	return !s.done
}

// refreshTranscript pushes the consumer's current text into the
// viewport, following the tail unless the operator scrolled away.
func (s *streaming) refreshTranscript() {
	text := s.consumer.Transcript().Text()
	if text == "" {
		return
	}
	s.view.SetContent(s.shared.theme.StreamingText.Width(s.view.Width).Render(text))
	if s.follow {
		s.view.GotoBottom()
	}
}

func (s *streaming) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.view.Width = maxInt(msg.Width-2, 24)
		s.view.Height = s.transcriptHeight(msg.Height)
		s.refreshTranscript()
		return s, nil

	case streamTickMsg:
		if s.done {
			return s, nil
		}
		s.refreshTranscript()
		return s, frameTickCmd()

	case streamDoneMsg:
		s.done = true
		s.result = msg.result
		s.spinner.Stop()
		s.refreshTranscript()
		switch msg.result.Phase {
		case stream.PhaseCompleted:
			return s, popScreen(streamFinishedMsg{turnID: msg.result.TurnID})
		case stream.PhaseCancelled:
			s.shared.toasts.AddStatus("response interrupted")
			return s, popScreen(streamFinishedMsg{})
		default:
			if msg.result.Err != nil {
				s.shared.toasts.AddError("stream failed: " + msg.result.Err.Error())
			}
			return s, popScreen(streamFinishedMsg{})
		}

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceEnd) {
			if s.done || s.interrupt {
				return s, nil
			}
			s.interrupt = true
			s.spinner.SetMessage("interrupting")
			consumer := s.consumer
			// Cancel talks to the server; keep it off the event loop.
			return s, func() tea.Msg {
				consumer.Cancel()
				return nil
			}
		}
		switch msg.String() {
		case "up", "pgup", "k":
			s.follow = false
		case "down", "pgdown", "j":
			// Resume following once the operator returns to the tail.
			if s.view.AtBottom() {
				s.follow = true
			}
		}
		var cmd tea.Cmd
		s.view, cmd = s.view.Update(msg)
		if s.view.AtBottom() {
			s.follow = true
		}
		return s, cmd
	}

	if cmd := s.spinner.Update(msg); cmd != nil {
		return s, cmd
	}
	return s, nil
}

func (s *streaming) View() string {
	theme := s.shared.theme
	width := maxInt(s.shared.width, 40)
	var b strings.Builder

	b.WriteString(components.RenderHeader(theme, "streaming", "", width))
	b.WriteString("\n\n")
	b.WriteString(renderUserTurnBox(theme, &s.userTurn, width, s.shared.cfg.UI.ShowTurnIDs))
	b.WriteString("\n\n")

	if s.consumer.Transcript().Len() > 0 {
		b.WriteString(s.view.View())
		b.WriteString("\n")
	}
	if !s.done {
		b.WriteString(s.spinner.View(theme))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	shortcuts := []components.Shortcut{
		{Key: "esc", Desc: "interrupt"},
		{Key: "↑/↓", Desc: "scroll"},
	}
	info := s.consumer.Phase().String()
	b.WriteString(components.RenderStatusBar(theme, shortcuts, info, width))
	return b.String()
}
