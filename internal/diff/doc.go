// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff provides diff computation and formatting for document versions.
//
// The canvas panel shows changes between adjacent snapshots of a document.
// Compute produces a line-based diff between two versions using an LCS
// (Longest Common Subsequence) algorithm, grouped into hunks with context.
// The first version of a document diffs against an empty baseline.
package diff
