// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
package chat

import (
	"time"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// ConversationChangedMsg signals that the message history mutated (new
// delta applied, message appended, or sanitize ran).
type ConversationChangedMsg struct{}

// StreamDoneMsg signals that the generation stream ended. Err is nil on
// normal completion and context.Canceled after a user stop.
type StreamDoneMsg struct {
	Err error
}

// StreamTickMsg drives the capped-rate re-render during streaming.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// CANVAS MESSAGES
// =============================================================================

// CanvasChangedMsg signals that the canvas panel state changed.
type CanvasChangedMsg struct{}

// CanvasSettledMsg fires when a canvas stream finishes; the version store
// refetches on this signal.
type CanvasSettledMsg struct {
	DocumentID string
}

// =============================================================================
// VERSION STORE MESSAGES
// =============================================================================

// StoreChangedMsg signals a version store transition for a document.
type StoreChangedMsg struct {
	DocumentID string
}

// SuggestionsMsg delivers fetched suggestion annotations.
type SuggestionsMsg struct {
	DocumentID  string
	Suggestions []model.Suggestion
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadsChangedMsg signals upload queue progress.
type UploadsChangedMsg struct{}

// UploadResultMsg reports one finished upload.
type UploadResultMsg struct {
	Name string
	Err  error
}

// =============================================================================
// AUXILIARY DATA MESSAGES
// =============================================================================

// VotesMsg delivers the vote set for the chat.
type VotesMsg struct {
	Votes []model.Vote
}

// ConfigReloadedMsg carries a config file change picked up by the watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// UI HOUSEKEEPING
// =============================================================================

// ToastTickMsg prunes expired toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ErrMsg surfaces a background failure as a toast.
type ErrMsg struct {
	Err error
}
