// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER COALESCER
// =============================================================================

// RenderCoalescer batches streaming change notifications.
//
// Deltas note a pending change; the Bubble Tea loop asks TakeIfDue on each
// stream tick and rebuilds the viewport only when a change is pending and
// the frame interval has elapsed.
//
// Thread-safety: notes arrive from the streaming goroutine while takes
// happen on the update loop, so everything is mutex-guarded.
type RenderCoalescer struct {
	mu        sync.Mutex
	pending   int
	lastFlush time.Time

	batchSize   int           // Pending notes that force a flush regardless of timing
	minInterval time.Duration // Min time between flushes (1000ms / maxFPS)
}

// NewRenderCoalescer creates a coalescer with the default configuration:
// 15-note batches at a 30fps cap.
func NewRenderCoalescer() *RenderCoalescer {
	const (
		defaultBatchSize = 15
		defaultMaxFPS    = 30
	)
	return &RenderCoalescer{
		batchSize:   defaultBatchSize,
		minInterval: time.Second / defaultMaxFPS,
		lastFlush:   time.Now(),
	}
}

// Note records one pending change. Called per delta from the stream.
func (rc *RenderCoalescer) Note() {
	rc.mu.Lock()
	rc.pending++
	rc.mu.Unlock()
}

// TakeIfDue consumes the pending changes when a flush is due, returning
// whether the caller should re-render.
func (rc *RenderCoalescer) TakeIfDue() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.pending == 0 {
		return false
	}
	if rc.pending < rc.batchSize && time.Since(rc.lastFlush) < rc.minInterval {
		return false
	}

	rc.pending = 0
	rc.lastFlush = time.Now()
	return true
}

// ForceTake consumes any pending changes unconditionally. Used when the
// stream ends to render the final state.
func (rc *RenderCoalescer) ForceTake() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	had := rc.pending > 0
	rc.pending = 0
	rc.lastFlush = time.Now()
	return had
}

// Pending returns the number of unfetched change notes.
func (rc *RenderCoalescer) Pending() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.pending
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd drives the render loop at ~30fps while streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// toastTickCmd prunes toasts once a second.
func toastTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}
