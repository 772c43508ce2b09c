// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/canvas"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/versions"
)

// Update is the Bubble Tea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.rebuildViewport()

	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if handled {
			return m, tea.Batch(append(cmds, cmd)...)
		}
		before := m.input.Value()
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			// Write-through: a killed process must not lose the draft.
			_ = m.drafts.Write(v)
		}
		cmds = append(cmds, inputCmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	// ----- streaming ---------------------------------------------------------

	// Produced by submitCmd, not the event pump: no re-arm here.
	case ConversationChangedMsg:
		m.rebuildViewport()
		if m.consumer.IsStreaming() {
			cmds = append(cmds, streamTickCmd())
		}

	case StreamTickMsg:
		if m.coalescer.TakeIfDue() {
			m.rebuildViewport()
		}
		if m.consumer.IsStreaming() {
			cmds = append(cmds, streamTickCmd())
		}

	case StreamDoneMsg:
		// Final render with whatever the coalescer still holds.
		m.coalescer.ForceTake()
		m.rebuildViewport()
		// The panel settles even when the finish event never arrived.
		m.panel.StreamEnded()
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.toasts.Add(components.NewErrorToast("Generation failed: " + msg.Err.Error()))
		}
		cmds = append(cmds, m.waitForEvent())

	// ----- canvas ------------------------------------------------------------

	case CanvasChangedMsg:
		// Panel state is read directly in View; nothing to copy here.
		cmds = append(cmds, m.waitForEvent())

	case CanvasSettledMsg:
		// A settled canvas stream means the backend wrote snapshots: adopt
		// the streamed content as the baseline and refetch the history.
		if msg.DocumentID != "" {
			m.store.SetBaseline(msg.DocumentID, m.panel.Content())
			if title := m.panel.Title(); title != "" {
				m.store.SetTitle(msg.DocumentID, title)
			}
			m.store.Refresh(context.Background(), msg.DocumentID)
		}
		cmds = append(cmds, m.waitForEvent())

	// ----- version store -----------------------------------------------------

	case StoreChangedMsg:
		cmds = append(cmds, m.waitForEvent())

	case SuggestionsMsg:
		m.suggestions[msg.DocumentID] = msg.Suggestions
		cmds = append(cmds, m.waitForEvent())

	// ----- uploads -----------------------------------------------------------

	case UploadsChangedMsg:
		cmds = append(cmds, m.waitForEvent())

	case UploadResultMsg:
		if msg.Err != nil {
			m.toasts.Add(components.NewErrorToast("Upload failed: " + msg.Name))
		} else {
			m.toasts.Add(components.NewSuccessToast("Attached " + msg.Name))
		}
		cmds = append(cmds, m.waitForEvent())

	// ----- auxiliary ---------------------------------------------------------

	case VotesMsg:
		m.votes = make(map[string]bool, len(msg.Votes))
		for _, v := range msg.Votes {
			m.votes[v.MessageID] = v.IsUpvoted
		}
		m.rebuildViewport()
		cmds = append(cmds, m.waitForEvent())

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.applyConfig(msg.Config)
		}
		m.toasts.Add(components.NewStatusToast("Configuration reloaded"))
		cmds = append(cmds, m.waitForEvent())

	case ErrMsg:
		if msg.Err != nil {
			m.toasts.Add(components.NewErrorToast(msg.Err.Error()))
		}
		cmds = append(cmds, m.waitForEvent())

	case ToastTickMsg:
		m.toasts.Prune()
		cmds = append(cmds, toastTickCmd())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes global shortcuts. Unhandled keys fall through to the
// input field (or the document editor while editing).
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	docID := m.panel.DocumentID()

	if m.editingCanvas {
		return m.handleEditorKey(msg, docID), true
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keys.EditCanvas):
		m.enterCanvasEdit(docID)
		return nil, true

	case key.Matches(msg, m.keys.Submit):
		return m.submit(), true

	case key.Matches(msg, m.keys.Stop):
		if m.consumer.IsStreaming() {
			m.consumer.Stop()
			return nil, true
		}
		if m.panel.Visibility() == canvas.Visible {
			m.panel.Dismiss()
			return nil, true
		}
		return nil, false

	case key.Matches(msg, m.keys.TogglePanel):
		if m.panel.Visibility() == canvas.Visible {
			m.panel.Dismiss()
		} else {
			m.panel.Reopen()
		}
		return nil, true

	case key.Matches(msg, m.keys.ToggleDiff):
		if docID != "" {
			m.store.ToggleMode(docID)
		}
		return nil, true

	case key.Matches(msg, m.keys.PrevVersion):
		if docID != "" {
			m.store.Navigate(docID, versions.Prev)
		}
		return nil, true

	case key.Matches(msg, m.keys.NextVersion):
		if docID != "" {
			m.store.Navigate(docID, versions.Next)
		}
		return nil, true

	case key.Matches(msg, m.keys.Latest):
		if docID != "" {
			m.store.Navigate(docID, versions.Latest)
		}
		return nil, true

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return nil, true

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return nil, true
	}

	return nil, false
}

// enterCanvasEdit switches keystrokes to the document editor. Editing is
// only allowed on the latest version of a settled document.
func (m *Model) enterCanvasEdit(docID string) {
	if docID == "" || !m.panel.CanEdit() {
		m.toasts.Add(components.NewStatusToast("Document not editable right now"))
		return
	}
	if !m.store.AtLatest(docID) {
		m.toasts.Add(components.NewStatusToast("Jump to the latest version to edit"))
		return
	}
	if m.store.Mode(docID) == versions.ModeDiff {
		m.store.ToggleMode(docID)
	}

	m.editor.SetValue(m.store.Content(docID))
	m.editor.SetWidth(m.canvasWidth() - 6)
	m.editor.SetHeight(m.viewport.Height - 4)
	m.editor.Focus()
	m.input.Blur()
	m.editingCanvas = true
}

// handleEditorKey routes keys while the document editor is focused. Every
// content change feeds the write-behind save.
func (m *Model) handleEditorKey(msg tea.KeyMsg, docID string) tea.Cmd {
	if key.Matches(msg, m.keys.Stop) {
		m.editingCanvas = false
		m.editor.Blur()
		m.input.Focus()
		return nil
	}
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	// The store debounces and no-ops on unchanged content.
	m.store.SaveContent(docID, m.editor.Value())
	return cmd
}

// submit handles the enter key: slash commands run locally, anything else
// becomes a chat message.
func (m *Model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return nil
	}

	if cmd, handled := m.handleCommand(line); handled {
		m.input.Reset()
		return cmd
	}

	if m.consumer.IsStreaming() {
		m.toasts.Add(components.NewStatusToast("Wait for the current response to finish"))
		return nil
	}
	if m.uploads.Busy() {
		m.toasts.Add(components.NewStatusToast("Uploads still in progress"))
		return nil
	}

	m.input.Reset()
	// The submitted message replaces the draft.
	_ = m.drafts.Write("")
	return m.submitCmd(line)
}
