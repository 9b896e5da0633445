// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// LIST STYLES (PROJECTS, CHATS)
	// ==========================================================================

	List         lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListMeta     lipgloss.Style
	ListEmpty    lipgloss.Style

	// ==========================================================================
	// TURN BROWSER STYLES
	// ==========================================================================

	TurnBox       lipgloss.Style
	TurnMeta      lipgloss.Style
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	ThinkingBlock lipgloss.Style
	BlockLabel    lipgloss.Style
	TurnError     lipgloss.Style
	NavHintOn     lipgloss.Style
	NavHintOff    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// STREAMING STYLES
	// ==========================================================================

	Spinner       lipgloss.Style
	StreamingText lipgloss.Style
	StreamWarning lipgloss.Style

	// ==========================================================================
	// DIALOG STYLES (CONFIRMATION, PARAMS EDITOR)
	// ==========================================================================

	DialogBox          lipgloss.Style
	DialogTitle        lipgloss.Style
	DialogButton       lipgloss.Style
	DialogButtonActive lipgloss.Style
	FieldLabel         lipgloss.Style
	FieldValue         lipgloss.Style
	FieldActive        lipgloss.Style
	FieldInvalid       lipgloss.Style

	// ==========================================================================
	// NOTIFICATION STYLES
	// ==========================================================================

	ErrorToast lipgloss.Style
	InfoToast  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// SetDarkBackground overrides the detected terminal background. Used
// when the config pins the theme to "dark" or "light" instead of
// "auto".
func (t *Theme) SetDarkBackground(dark bool) {
	t.IsDark = dark
	lipgloss.SetHasDarkBackground(dark)
	t.initStyles()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Lists
	t.List = lipgloss.NewStyle().Padding(0, 1)

	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ListSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ListEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Turn browser
	t.TurnBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.TurnMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.UserTurn = lipgloss.NewStyle().
		Foreground(UserTurnFg)

	t.AssistantTurn = lipgloss.NewStyle().
		Foreground(AssistantTurnFg)

	t.ThinkingBlock = lipgloss.NewStyle().
		Foreground(ThinkingFg).
		Italic(true)

	t.BlockLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true)

	t.TurnError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.NavHintOn = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.NavHintOff = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Streaming
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.StreamingText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StreamWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Dialogs
	t.DialogBox = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.DialogButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.DialogButtonActive = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 2)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(14)

	t.FieldValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FieldActive = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true)

	t.FieldInvalid = lipgloss.NewStyle().
		Foreground(Rose)

	// Notifications
	t.ErrorToast = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	t.InfoToast = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)
}

// SetSize updates the theme's layout dimensions on terminal resize.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
