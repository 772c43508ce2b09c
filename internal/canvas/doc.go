// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package canvas holds the state machine for the document side panel.
//
// The panel reacts to side-channel events from the generation stream: an
// id event binds it to a document and opens it in streaming state, title
// and clear prepare the capture, text-delta events grow the content, and
// finish settles the panel back to idle. With no canvas events in a
// stream the panel never appears.
//
// The panel is a pure state holder; rendering and persistence live
// elsewhere. A settle hook fires exactly once per stream when streaming
// ends, which is where version refetches hang off.
package canvas
