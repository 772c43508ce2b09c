// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package draft persists the chat input draft between sessions.
//
// The draft is process-wide state with an explicit lifecycle: Hydrate reads
// the previous session's draft at startup, and Write stores the current
// input on every change. Writes are last-write-wins; no ordering guarantee
// beyond that is needed or provided.
package draft
