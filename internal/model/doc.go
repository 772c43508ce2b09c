// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and documents.
//
// This package defines the core domain types used throughout the application
// for representing the chat transcript, file attachments, and the versioned
// documents produced by model tool calls.
//
// # Key Types
//
//   - Message: Single chat message with role, content, and attachments
//   - Attachment: Uploaded file reference (URL, name, content type)
//   - Document: One immutable snapshot of a canvas document
//   - Vote: Reader feedback on a message (read-only input)
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create messages for the transcript:
//
//	msg := model.NewUserMessage("Write a haiku")
//	reply := model.NewAssistantMessage()
//	reply.AppendDelta("Autumn ")
//
// Documents are immutable snapshots; an edit appends a new Document to the
// sequence for its DocumentID rather than mutating an existing one.
package model
