// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/canvas"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/draft"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/stream"
	"github.com/jeranaias/inkwell-tui/internal/ui/components"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/upload"
	"github.com/jeranaias/inkwell-tui/internal/versions"
)

// eventBuffer is the capacity of the manager-to-UI event channel. Manager
// callbacks never block on a full buffer; redraw-only events are safe to
// drop because the next tick repaints anyway.
const eventBuffer = 256

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the inkwell chat view.
type Model struct {
	cfg   *config.Config
	theme *styles.Theme

	width  int
	height int

	// Backend-facing managers
	client   *api.Client
	consumer *stream.Consumer
	store    *versions.Store
	panel    *canvas.Panel
	uploads  *upload.Manager
	drafts   *draft.Store

	// Vote display, message id -> upvoted
	votes map[string]bool

	// Last fetched suggestions per document
	suggestions map[string][]model.Suggestion

	// Rendering
	markdown   *components.MarkdownRenderer
	canvasView *components.CanvasView
	coalescer  *RenderCoalescer
	toasts     *components.ToastManager

	// Bubbles
	viewport viewport.Model
	input    textinput.Model
	editor   textarea.Model
	spinner  spinner.Model

	// editingCanvas routes keystrokes to the document editor instead of
	// the composer.
	editingCanvas bool

	keys KeyMap

	// events carries manager callback notifications into the update loop.
	events chan tea.Msg

	quitting bool
}

// New wires the chat model together from its managers.
func New(cfg *config.Config, client *api.Client, drafts *draft.Store) *Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask anything, or /help"
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	editor := textarea.New()
	editor.Placeholder = "Document content"
	editor.ShowLineNumbers = false

	m := &Model{
		cfg:         cfg,
		theme:       theme,
		client:      client,
		consumer:    stream.NewConsumer(client, cfg.Backend.ChatID, cfg.Backend.ModelID),
		store:       versions.NewStoreWithIntervals(client, cfg.SaveDebounce(), cfg.SuggestionInterval()),
		panel:       canvas.NewPanel(),
		uploads:     upload.NewManager(client),
		drafts:      drafts,
		votes:       make(map[string]bool),
		suggestions: make(map[string][]model.Suggestion),
		markdown:    components.NewMarkdownRenderer(theme.IsDark),
		coalescer:   NewRenderCoalescer(),
		toasts:      components.NewToastManager(cfg.UI.MaxToasts),
		input:       input,
		editor:      editor,
		spinner:     sp,
		keys:        DefaultKeyMap(),
		events:      make(chan tea.Msg, eventBuffer),
	}
	m.canvasView = components.NewCanvasView(theme, m.markdown)

	if !cfg.Editor.SanitizeOnCancel {
		m.consumer.SetSanitizePolicy(stream.KeepAll)
	}

	// Manager callbacks run on their own goroutines; everything funnels
	// through the event channel back into the update loop.
	m.consumer.SetCanvasSink(func(ev api.StreamEvent) {
		m.panel.Apply(ev)
		m.push(CanvasChangedMsg{})
	})
	m.consumer.OnChange(func() {
		m.coalescer.Note()
	})
	m.consumer.OnDone(func(err error) {
		m.push(StreamDoneMsg{Err: err})
	})
	m.panel.OnSettle(func(documentID string) {
		m.push(CanvasSettledMsg{DocumentID: documentID})
	})
	m.store.OnChange(func(documentID string) {
		m.push(StoreChangedMsg{DocumentID: documentID})
	})
	m.store.OnError(func(err error) {
		m.push(ErrMsg{Err: err})
	})
	m.uploads.OnChange(func() {
		m.push(UploadsChangedMsg{})
	})

	return m
}

// applyConfig swaps in a hot-reloaded configuration. Timing and the
// sanitize policy take effect immediately; backend identity (base URL,
// chat id) needs a restart.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.store.SetIntervals(cfg.SaveDebounce(), cfg.SuggestionInterval())
	m.toasts.SetLimit(cfg.UI.MaxToasts)
	if cfg.Editor.SanitizeOnCancel {
		m.consumer.SetSanitizePolicy(stream.DropUnfinished)
	} else {
		m.consumer.SetSanitizePolicy(stream.KeepAll)
	}
}

// push delivers an event to the update loop without ever blocking a
// manager goroutine. Dropped events only cost a repaint.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// Init hydrates the draft, starts the tickers, and kicks off the initial
// vote fetch.
func (m *Model) Init() tea.Cmd {
	if content, err := m.drafts.Hydrate(); err == nil && content != "" {
		m.input.SetValue(content)
	}

	return tea.Batch(
		m.waitForEvent(),
		m.fetchVotesCmd(),
		m.spinner.Tick,
		toastTickCmd(),
	)
}

// Events returns the channel external senders (config watcher) use to
// reach the update loop.
func (m *Model) Events() chan<- tea.Msg {
	return m.events
}

// Shutdown persists the draft and flushes any pending document save.
// Called on quit, outside the Bubble Tea loop.
func (m *Model) Shutdown() {
	m.consumer.Stop()
	if id := m.panel.DocumentID(); id != "" {
		m.store.Flush(id)
	}
	// Draft write failures are non-fatal on the way out.
	_ = m.drafts.Write(m.input.Value())
}
