// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders markdown for message bubbles and the canvas
// edit view. Renderers are cached per width since glamour construction is
// expensive.
type MarkdownRenderer struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	dark      bool
}

// NewMarkdownRenderer creates a renderer for the given background.
func NewMarkdownRenderer(dark bool) *MarkdownRenderer {
	return &MarkdownRenderer{
		renderers: make(map[int]*glamour.TermRenderer),
		dark:      dark,
	}
}

// Render renders markdown wrapped to the given width. On any rendering
// failure the raw markdown is returned, never an error: a chat message must
// always display something.
func (m *MarkdownRenderer) Render(markdown string, width int) string {
	if width < 10 {
		width = 10
	}

	r, err := m.renderer(width)
	if err != nil {
		return markdown
	}

	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// renderer returns the cached renderer for a width, building it on first use.
func (m *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r, nil
	}

	style := "light"
	if m.dark {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}
