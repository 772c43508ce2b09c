// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the inkwell TUI:
// toast notifications, markdown and code rendering, and the canvas
// document panel with its edit and diff views.
package components
