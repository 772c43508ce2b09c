// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package versions maintains the snapshot history of canvas documents.
//
// Every save appends an immutable snapshot; nothing is edited in place.
// The store tracks, per document: the ordered snapshot sequence, a version
// cursor for history navigation, a working copy of the latest content, and
// the edit/diff view mode.
//
// Saves are write-behind: edits land in the working copy immediately and a
// trailing debounce window coalesces them into one backend save. A document
// with unsaved edits is dirty; refreshes never clobber dirty content, and
// stale fetch responses (superseded by a newer refresh) are dropped.
package versions
