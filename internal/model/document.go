// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and documents.
package model

import "time"

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// Document is one immutable snapshot of a canvas document.
//
// A snapshot is never mutated after creation: saving an edit appends a new
// Document to the sequence for the same DocumentID. Snapshots for a given
// DocumentID are strictly ordered by CreatedAt; the last element of the
// sequence is the latest version.
type Document struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// =============================================================================
// VOTE TYPE
// =============================================================================

// Vote is reader feedback on a message. Votes are an external, read-only
// input: the client displays them but never derives state from them.
type Vote struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	IsUpvoted bool   `json:"isUpvoted"`
}

// =============================================================================
// SUGGESTION TYPE
// =============================================================================

// Suggestion is an inline annotation attached to a document. The payload is
// opaque to the client; only the caching policy around fetching matters.
type Suggestion struct {
	ID            string `json:"id"`
	DocumentID    string `json:"documentId"`
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
	Description   string `json:"description,omitempty"`
	IsResolved    bool   `json:"isResolved"`
}
