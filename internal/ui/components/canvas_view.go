// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/inkwell-tui/internal/diff"
	"github.com/jeranaias/inkwell-tui/internal/model"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// CANVAS VIEW
// =============================================================================

// CanvasProps is everything the canvas panel needs to draw one frame. The
// caller assembles it from the panel state machine and the version store so
// this component stays render-only.
type CanvasProps struct {
	Title     string
	Content   string
	Streaming bool
	DiffMode  bool
	Dirty     bool

	// Version cursor
	Index int
	Total int

	// Diff mode inputs
	OldContent string

	// RawBody, when set, replaces the rendered markdown body. Used to show
	// the live editor widget while the document is being edited.
	RawBody string

	Suggestions []model.Suggestion

	Width  int
	Height int
}

// CanvasView renders the document side panel.
type CanvasView struct {
	theme    *styles.Theme
	markdown *MarkdownRenderer
}

// NewCanvasView creates the canvas renderer.
func NewCanvasView(theme *styles.Theme, markdown *MarkdownRenderer) *CanvasView {
	return &CanvasView{theme: theme, markdown: markdown}
}

// Render draws the full panel: title bar, body (edit or diff view), and the
// version footer.
func (v *CanvasView) Render(p CanvasProps) string {
	innerWidth := p.Width - 4 // Border + padding
	if innerWidth < 10 {
		innerWidth = 10
	}

	header := v.renderHeader(p, innerWidth)

	var body string
	switch {
	case p.RawBody != "":
		body = p.RawBody
	case p.Streaming && p.Content == "":
		body = v.renderSkeleton(innerWidth)
	case p.DiffMode:
		body = v.renderDiff(p, innerWidth)
	default:
		body = v.markdown.Render(p.Content, innerWidth)
	}

	if len(p.Suggestions) > 0 && !p.Streaming {
		body += "\n" + v.renderSuggestions(p.Suggestions, innerWidth)
	}

	footer := v.renderFooter(p, innerWidth)

	panel := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return v.theme.CanvasBorder.Width(p.Width - 2).Render(panel)
}

// renderHeader draws the title line with a streaming indicator.
func (v *CanvasView) renderHeader(p CanvasProps, width int) string {
	title := p.Title
	if title == "" {
		title = "Untitled"
	}
	title = util.TruncateWidth(title, width-4)

	line := v.theme.CanvasTitle.Render(title)
	if p.Streaming {
		line += " " + v.theme.Spinner.Render("…")
	}
	if p.Dirty {
		line += " " + v.theme.DirtyMarker.Render("●")
	}
	return line
}

// renderSkeleton draws placeholder bars while the first content streams in.
func (v *CanvasView) renderSkeleton(width int) string {
	bar := strings.Repeat("░", width)
	short := strings.Repeat("░", width*2/3)
	lines := []string{bar, bar, short, "", bar, short}
	for i, l := range lines {
		lines[i] = v.theme.CanvasSkeleton.Render(l)
	}
	return strings.Join(lines, "\n")
}

// renderDiff draws the current version against its predecessor.
func (v *CanvasView) renderDiff(p CanvasProps, width int) string {
	d := diff.Compute("", p.OldContent, p.Content)

	var sb strings.Builder
	sb.WriteString(v.theme.DiffHeader.Render("Changes in this version"))
	sb.WriteString("  ")
	sb.WriteString(v.theme.DiffStats.Render(d.Summary()))
	sb.WriteString("\n")

	for hi, hunk := range d.Hunks {
		if hi > 0 {
			sb.WriteString(v.theme.DiffContext.Render("  ⋯"))
			sb.WriteString("\n")
		}
		for _, line := range hunk.Lines {
			text := util.TruncateWidth(line.Type.Prefix()+line.Content, width)
			// Pad so added/removed backgrounds span the full panel width.
			text = util.PadWidth(text, width)
			switch line.Type {
			case diff.LineAdded:
				sb.WriteString(v.theme.DiffAdded.Render(text))
			case diff.LineRemoved:
				sb.WriteString(v.theme.DiffRemoved.Render(text))
			default:
				sb.WriteString(v.theme.DiffContext.Render(text))
			}
			sb.WriteString("\n")
		}
	}

	if len(d.Hunks) == 0 {
		sb.WriteString(v.theme.DiffContext.Render("No changes"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderSuggestions draws unresolved suggestion annotations under the body.
func (v *CanvasView) renderSuggestions(suggestions []model.Suggestion, width int) string {
	var sb strings.Builder
	for _, s := range suggestions {
		if s.IsResolved {
			continue
		}
		text := "✎ " + s.Description
		if s.Description == "" {
			text = "✎ " + s.SuggestedText
		}
		sb.WriteString(v.theme.Suggestion.Render(util.TruncateWidth(text, width)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderFooter draws the version counter and the navigation hints.
func (v *CanvasView) renderFooter(p CanvasProps, width int) string {
	var counter string
	if p.Total > 0 {
		counter = "Version " + util.IntToString(p.Index+1) + " of " + util.IntToString(p.Total)
	} else {
		counter = "No saved versions"
	}

	hints := v.theme.ShortcutKey.Render("[/]") +
		v.theme.ShortcutDesc.Render(" versions ") +
		v.theme.ShortcutKey.Render("d") +
		v.theme.ShortcutDesc.Render(" diff ")
	if p.Index < p.Total-1 {
		hints += v.theme.ShortcutKey.Render("L") +
			v.theme.ShortcutDesc.Render(" latest ")
	}

	left := v.theme.VersionCounter.Render(counter)
	gap := width - runewidth.StringWidth(counter) - lipgloss.Width(hints)
	if gap < 1 {
		gap = 1
	}
	return v.theme.CanvasFooter.Render(left + strings.Repeat(" ", gap) + hints)
}
