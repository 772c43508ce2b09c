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
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style
	Title  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Attachment      lipgloss.Style
	StreamCursor    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	UploadPending    lipgloss.Style
	UploadReady      lipgloss.Style

	// ==========================================================================
	// CANVAS PANEL STYLES
	// ==========================================================================

	CanvasBorder   lipgloss.Style
	CanvasTitle    lipgloss.Style
	CanvasSkeleton lipgloss.Style
	CanvasFooter   lipgloss.Style
	VersionCounter lipgloss.Style
	DirtyMarker    lipgloss.Style
	Suggestion     lipgloss.Style

	// ==========================================================================
	// DIFF VIEW STYLES
	// ==========================================================================

	DiffAdded   lipgloss.Style
	DiffRemoved lipgloss.Style
	DiffContext lipgloss.Style
	DiffHeader  lipgloss.Style
	DiffStats   lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastStatus  lipgloss.Style
	ToastSuccess lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a theme adjusted to the terminal's capabilities.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	t.App = lipgloss.NewStyle().
		Background(Surface).
		Foreground(TextPrimary)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.UserBubble = lipgloss.NewStyle().
		Background(UserBubbleBg).
		Foreground(UserBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Background(AssistantBubbleBg).
		Foreground(AssistantBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.Attachment = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.StreamCursor = lipgloss.NewStyle().
		Foreground(Purple).
		Blink(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UploadPending = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.UploadReady = lipgloss.NewStyle().
		Foreground(Emerald)

	t.CanvasBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.CanvasTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.CanvasSkeleton = lipgloss.NewStyle().
		Foreground(Overlay)

	t.CanvasFooter = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.VersionCounter = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.DirtyMarker = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.Suggestion = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.DiffAdded = lipgloss.NewStyle().
		Background(DiffAddedBg).
		Foreground(DiffAddedFg)

	t.DiffRemoved = lipgloss.NewStyle().
		Background(DiffRemovedBg).
		Foreground(DiffRemovedFg)

	t.DiffContext = lipgloss.NewStyle().
		Foreground(DiffContextFg)

	t.DiffHeader = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.DiffStats = lipgloss.NewStyle().
		Foreground(TextMuted)

	toastBase := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Bold(true)

	t.ToastError = toastBase.BorderForeground(Rose).Foreground(Rose)
	t.ToastWarning = toastBase.BorderForeground(Amber).Foreground(Amber)
	t.ToastStatus = toastBase.BorderForeground(Cyan).Foreground(Cyan)
	t.ToastSuccess = toastBase.BorderForeground(Emerald).Foreground(Emerald)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	return t
}

// Resize records the current terminal dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
}
