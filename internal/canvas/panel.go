// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package canvas

import (
	"strings"
	"sync"

	"github.com/jeranaias/inkwell-tui/internal/api"
)

// Visibility is the panel's display state.
type Visibility int

const (
	// Hidden means no panel is shown.
	Hidden Visibility = iota
	// Visible means the panel is open on a document.
	Visible
)

// String returns the visibility name for logs.
func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Anchor is the terminal cell region the panel animates from when opening.
// Opaque to the state machine; the renderer sets and reads it.
type Anchor struct {
	X, Y, Width, Height int
}

// =============================================================================
// PANEL
// =============================================================================

// Panel is the document side panel state machine.
//
// States: hidden, visible+streaming, visible+idle. Stream events drive the
// transitions; user actions (dismiss, edit, version navigation) are only
// honored in states where they are meaningful.
type Panel struct {
	mu sync.Mutex

	visibility Visibility
	streaming  bool

	documentID string
	title      string
	content    strings.Builder

	anchor Anchor

	// onSettle fires on the streaming-to-idle transition, at most once per
	// stream. Called outside the lock.
	onSettle func(documentID string)
	settled  bool
}

// NewPanel creates a hidden, idle panel.
func NewPanel() *Panel {
	return &Panel{}
}

// OnSettle registers the hook fired when a canvas stream finishes.
func (p *Panel) OnSettle(fn func(documentID string)) {
	p.mu.Lock()
	p.onSettle = fn
	p.mu.Unlock()
}

// =============================================================================
// EVENT APPLICATION
// =============================================================================

// Apply feeds one side-channel event through the state machine. Non-canvas
// events are ignored, so the whole stream can be piped through.
func (p *Panel) Apply(event api.StreamEvent) {
	if !event.IsCanvas() {
		return
	}

	p.mu.Lock()
	var settle func(string)
	var settleID string

	switch event.Kind {
	case api.EventCanvasID:
		// Binding to a document opens the panel and starts a fresh stream.
		p.documentID = event.Content
		p.visibility = Visible
		p.streaming = true
		p.settled = false

	case api.EventCanvasTitle:
		p.title = event.Content

	case api.EventCanvasClear:
		p.content.Reset()

	case api.EventCanvasDelta:
		// Deltas may arrive before the id on some backends; they still open
		// the panel in streaming state.
		if p.visibility == Hidden {
			p.visibility = Visible
		}
		p.streaming = true
		p.content.WriteString(event.Content)

	case api.EventCanvasFinish:
		if p.streaming && !p.settled {
			p.settled = true
			settle = p.onSettle
			settleID = p.documentID
		}
		p.streaming = false
	}
	p.mu.Unlock()

	if settle != nil {
		settle(settleID)
	}
}

// StreamEnded marks the outer generation stream as finished. A stream that
// was cancelled before its finish event still settles the panel, firing the
// settle hook if it has not fired yet.
func (p *Panel) StreamEnded() {
	p.mu.Lock()
	var settle func(string)
	var settleID string
	if p.streaming && !p.settled {
		p.settled = true
		settle = p.onSettle
		settleID = p.documentID
	}
	p.streaming = false
	p.mu.Unlock()

	if settle != nil {
		settle(settleID)
	}
}

// =============================================================================
// USER ACTIONS
// =============================================================================

// Dismiss hides the panel. Content and binding survive so reopening shows
// the same document.
func (p *Panel) Dismiss() {
	p.mu.Lock()
	p.visibility = Hidden
	p.mu.Unlock()
}

// Reopen shows the panel again on its bound document. No-op when the panel
// was never bound.
func (p *Panel) Reopen() {
	p.mu.Lock()
	if p.documentID != "" {
		p.visibility = Visible
	}
	p.mu.Unlock()
}

// SetAnchor records the cell region the panel opens from.
func (p *Panel) SetAnchor(a Anchor) {
	p.mu.Lock()
	p.anchor = a
	p.mu.Unlock()
}

// =============================================================================
// QUERIES
// =============================================================================

// Visibility returns the panel's display state.
func (p *Panel) Visibility() Visibility {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibility
}

// IsStreaming reports whether canvas content is still arriving.
func (p *Panel) IsStreaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streaming
}

// CanEdit reports whether the document is editable right now: the panel
// must be visible and the stream settled.
func (p *Panel) CanEdit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibility == Visible && !p.streaming
}

// DocumentID returns the bound document id, empty when unbound.
func (p *Panel) DocumentID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.documentID
}

// Title returns the document title streamed so far.
func (p *Panel) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// Content returns the streamed document content.
func (p *Panel) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content.String()
}

// Anchor returns the recorded opening region.
func (p *Panel) Anchor() Anchor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.anchor
}
