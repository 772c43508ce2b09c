// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the inkwell chat backend.
//
// The backend exposes a small request/response API plus one streaming
// endpoint. This package implements:
//
//   - ChatStream: SSE consumption of /generate-chat-stream, producing an
//     ordered sequence of message content deltas and side-channel canvas
//     events (distinguished by a type discriminant on the wire)
//   - FetchDocuments / SaveDocument: the document snapshot API
//   - FetchSuggestions, FetchVotes, UploadFile: auxiliary endpoints
//
// All operations take a context and surface failures as typed errors;
// nothing here is fatal to the caller.
package api
