// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
)

// =============================================================================
// EVENT PUMP
// =============================================================================

// waitForEvent blocks on the manager event channel and hands the next
// event to Update. Update re-issues it after every delivery.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// submitCmd sends the composed message through the stream consumer.
// Ready attachments ride along and the pending queue clears for the next
// message.
func (m *Model) submitCmd(content string) tea.Cmd {
	attachments := m.uploads.Take()
	return func() tea.Msg {
		if err := m.consumer.Submit(context.Background(), content, attachments); err != nil {
			return ErrMsg{Err: err}
		}
		return ConversationChangedMsg{}
	}
}

// fetchVotesCmd loads the vote set for message display.
func (m *Model) fetchVotesCmd() tea.Cmd {
	return func() tea.Msg {
		votes, err := m.client.FetchVotes(context.Background(), m.cfg.Backend.ChatID)
		if err != nil {
			// Votes are decoration; a failed fetch is not worth a toast.
			return VotesMsg{}
		}
		return VotesMsg{Votes: votes}
	}
}

// suggestionsCmd fetches suggestion annotations for the canvas document.
// The store rate limits the underlying request.
func (m *Model) suggestionsCmd(documentID string) tea.Cmd {
	return func() tea.Msg {
		suggestions, err := m.store.Suggestions(context.Background(), documentID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SuggestionsMsg{DocumentID: documentID, Suggestions: suggestions}
	}
}

// uploadCmd starts a batch of attachment uploads and drains per-file
// results into the update loop.
func (m *Model) uploadCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		results := m.uploads.Enqueue(context.Background(), paths)
		go func() {
			for res := range results {
				m.push(UploadResultMsg{Name: res.Name, Err: res.Err})
			}
		}()
		return UploadsChangedMsg{}
	}
}

// =============================================================================
// SLASH COMMAND REGISTRY
// =============================================================================

// CommandHandler handles one slash command. It returns the follow-up
// command to run, if any.
type CommandHandler func(m *Model, args []string) tea.Cmd

// commandHandlers maps command names to handlers.
var commandHandlers = map[string]CommandHandler{
	"help":        handleHelpCommand,
	"h":           handleHelpCommand,
	"?":           handleHelpCommand,
	"quit":        handleQuitCommand,
	"q":           handleQuitCommand,
	"exit":        handleQuitCommand,
	"attach":      handleAttachCommand,
	"a":           handleAttachCommand,
	"clear":       handleClearCommand,
	"suggestions": handleSuggestionsCommand,
	"sug":         handleSuggestionsCommand,
	"canvas":      handleCanvasCommand,
}

// handleCommand dispatches a "/name args..." input line. Returns false when
// the input is not a command.
func (m *Model) handleCommand(line string) (tea.Cmd, bool) {
	if !strings.HasPrefix(line, "/") {
		return nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return nil, false
	}

	handler, ok := commandHandlers[strings.ToLower(fields[0])]
	if !ok {
		m.toasts.Add(NewUnknownCommandToast(fields[0]))
		return nil, true
	}
	return handler(m, fields[1:]), true
}

func handleHelpCommand(m *Model, args []string) tea.Cmd {
	m.toasts.Add(helpToast())
	return nil
}

func handleQuitCommand(m *Model, args []string) tea.Cmd {
	m.quitting = true
	return tea.Quit
}

// handleAttachCommand queues file uploads: /attach notes.pdf chart.png
func handleAttachCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.toasts.Add(usageToast("/attach <file> [file...]"))
		return nil
	}
	return m.uploadCmd(args)
}

// handleClearCommand drops pending and ready attachments.
func handleClearCommand(m *Model, args []string) tea.Cmd {
	m.uploads.Clear()
	return nil
}

// handleSuggestionsCommand fetches suggestions for the open document.
func handleSuggestionsCommand(m *Model, args []string) tea.Cmd {
	id := m.panel.DocumentID()
	if id == "" {
		m.toasts.Add(usageToast("no document open"))
		return nil
	}
	return m.suggestionsCmd(id)
}

// handleCanvasCommand reopens a dismissed panel.
func handleCanvasCommand(m *Model, args []string) tea.Cmd {
	m.panel.Reopen()
	return nil
}

// =============================================================================
// TOAST HELPERS
// =============================================================================

func helpToast() components.Toast {
	return components.NewStatusToast(
		"/attach <file> upload · /suggestions fetch · /canvas reopen · /quit exit")
}

func usageToast(usage string) components.Toast {
	return components.NewStatusToast(usage)
}

// NewUnknownCommandToast builds the toast for an unrecognized command.
func NewUnknownCommandToast(name string) components.Toast {
	return components.NewErrorToast("Unknown command: /" + name)
}

// =============================================================================
// VOTE LOOKUP
// =============================================================================

// voteFor returns the vote marker for a message, empty when unvoted.
func (m *Model) voteFor(msg *model.Message) string {
	up, ok := m.votes[msg.ID]
	if !ok {
		return ""
	}
	if up {
		return "▲"
	}
	return "▼"
}
