// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/canvas"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/versions"
)

// Layout constants.
const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1

	// canvasShare is the fraction of the terminal the panel takes when open.
	canvasShare = 0.45

	minChatWidth = 30
)

// resize recomputes the layout for new terminal dimensions.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.Resize(width, height)

	chatHeight := height - headerHeight - inputHeight - statusHeight
	if chatHeight < 3 {
		chatHeight = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.chatWidth(), chatHeight)
	} else {
		m.viewport.Width = m.chatWidth()
		m.viewport.Height = chatHeight
	}
	m.input.Width = width - 6

	m.panel.SetAnchor(canvas.Anchor{
		X:      width - m.canvasWidth(),
		Y:      headerHeight,
		Width:  m.canvasWidth(),
		Height: chatHeight,
	})
}

// chatWidth returns the width available to the conversation column.
func (m *Model) chatWidth() int {
	w := m.width
	if m.panel.Visibility() == canvas.Visible {
		w = m.width - m.canvasWidth()
	}
	if w < minChatWidth {
		w = minChatWidth
	}
	return w
}

// canvasWidth returns the panel column width.
func (m *Model) canvasWidth() int {
	w := int(float64(m.width) * canvasShare)
	if w < 30 {
		w = 30
	}
	return w
}

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// rebuildViewport re-renders the conversation into the viewport and pins
// the scroll position to the bottom.
func (m *Model) rebuildViewport() {
	m.viewport.Width = m.chatWidth()
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation draws every message as a bubble.
func (m *Model) renderConversation() string {
	messages := m.consumer.Messages()
	if len(messages) == 0 {
		return m.theme.ShortcutDesc.Render("\n  Start a conversation, or /help for commands.\n")
	}

	width := m.chatWidth() - 4
	var sb strings.Builder

	for _, msg := range messages {
		var bubble lipgloss.Style
		switch msg.Role {
		case model.RoleUser:
			bubble = m.theme.UserBubble
		default:
			bubble = m.theme.AssistantBubble
		}

		content := msg.DisplayContent()
		if msg.Role != model.RoleUser {
			content = m.markdown.Render(content, width-2)
			content = strings.TrimRight(content, "\n")
		}
		if msg.IsStreaming {
			content += m.theme.StreamCursor.Render("▌")
		}

		header := m.theme.ShortcutDesc.Render(msg.Role.DisplayName())
		if marker := m.voteFor(msg); marker != "" {
			header += " " + m.theme.Title.Render(marker)
		}

		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(bubble.MaxWidth(width).Render(content))
		sb.WriteString("\n")

		for _, att := range msg.Attachments {
			sb.WriteString(m.theme.Attachment.Render("  📎 " + att.Name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders one frame.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Starting inkwell…"
	}

	header := m.renderHeader()

	chat := m.viewport.View()
	main := chat
	if m.panel.Visibility() == canvas.Visible {
		main = lipgloss.JoinHorizontal(lipgloss.Top, chat, m.renderCanvas())
	}

	input := m.renderInput()
	status := m.renderStatusBar()

	view := lipgloss.JoinVertical(lipgloss.Left, header, main, input, status)

	if toasts := m.toasts.Render(m.theme, m.width/2); toasts != "" {
		view += "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts)
	}
	return view
}

// renderHeader draws the top bar.
func (m *Model) renderHeader() string {
	title := m.theme.Title.Render("inkwell")
	sub := m.theme.ShortcutDesc.Render(" · " + m.cfg.Backend.ModelID)
	return m.theme.Header.Width(m.width).Render(title + sub)
}

// renderCanvas assembles the panel props from the state machine and the
// version store and hands them to the renderer.
func (m *Model) renderCanvas() string {
	docID := m.panel.DocumentID()
	index, total := m.store.Index(docID)
	diffMode := m.store.Mode(docID) == versions.ModeDiff

	props := components.CanvasProps{
		Title:     m.panel.Title(),
		Streaming: m.panel.IsStreaming(),
		DiffMode:  diffMode,
		Dirty:     m.store.Dirty(docID),
		Index:     index,
		Total:     total,
		Width:     m.canvasWidth(),
		Height:    m.viewport.Height,
	}
	props.Suggestions = m.suggestions[docID]
	if m.editingCanvas {
		props.RawBody = m.editor.View()
	}

	if m.panel.IsStreaming() {
		props.Content = m.panel.Content()
	} else {
		props.Content = m.store.Content(docID)
	}
	if diffMode {
		props.OldContent, props.Content = m.store.DiffPair(docID)
	}

	return m.canvasView.Render(props)
}

// renderInput draws the composer with the upload queue above it.
func (m *Model) renderInput() string {
	var lines []string

	if pending := m.uploads.Pending(); len(pending) > 0 {
		lines = append(lines,
			m.theme.UploadPending.Render("Uploading: "+strings.Join(pending, ", ")))
	}
	if ready := m.uploads.Ready(); len(ready) > 0 {
		names := make([]string, len(ready))
		for i, a := range ready {
			names[i] = a.Name
		}
		lines = append(lines,
			m.theme.UploadReady.Render("Attached: "+strings.Join(names, ", ")))
	}

	lines = append(lines, m.input.View())
	return m.theme.InputContainer.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

// renderStatusBar draws the bottom bar with shortcuts and stream state.
func (m *Model) renderStatusBar() string {
	var left string
	if m.consumer.IsStreaming() {
		left = m.spinner.View() + " generating… " +
			m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" stop")
	} else {
		left = m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send  ") +
			m.theme.ShortcutKey.Render("ctrl+o") + m.theme.ShortcutDesc.Render(" canvas  ") +
			m.theme.ShortcutKey.Render("ctrl+d") + m.theme.ShortcutDesc.Render(" diff  ") +
			m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit")
	}
	return m.theme.StatusBar.Width(m.width).Render(left)
}
