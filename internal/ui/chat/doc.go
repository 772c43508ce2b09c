// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the inkwell TUI.
//
// The model wires the backend-facing managers together: the stream
// consumer feeding the conversation, the canvas panel reacting to
// side-channel events, the version store behind the panel, and the upload
// manager behind the composer. Manager callbacks are pumped into the
// Bubble Tea loop through a single event channel so all state reads in
// View happen on the update goroutine.
package chat
