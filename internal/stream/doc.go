// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream drives a chat generation from submission to completion.
//
// The Consumer owns the running message history. Submitting appends the
// user message optimistically, opens the backend stream, and applies
// message content deltas to a trailing assistant message as they arrive.
// Canvas side-channel events pass through untouched to a registered sink;
// the consumer never interprets them.
//
// Stopping a stream cancels the request and keeps all content received so
// far, then applies a sanitize policy that may drop unusable trailing
// assistant messages (empty, or cut off mid tool call).
package stream
