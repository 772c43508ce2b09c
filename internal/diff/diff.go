// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff provides diff computation and formatting for document versions.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// DIFF TYPES
// =============================================================================

// LineType represents the type of a diff line.
type LineType int

const (
	// LineContext represents unchanged context lines
	LineContext LineType = iota
	// LineAdded represents added lines
	LineAdded
	// LineRemoved represents removed lines
	LineRemoved
)

// String returns the string representation of a diff line type.
func (t LineType) String() string {
	switch t {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Prefix returns the diff prefix character for this line type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// =============================================================================
// DIFF LINE
// =============================================================================

// Line represents a single line in a diff.
type Line struct {
	Type    LineType // Type of line (added, removed, context)
	Content string   // The actual line content
	OldLine int      // Line number in the older version (0 if added)
	NewLine int      // Line number in the newer version (0 if removed)
}

// =============================================================================
// DIFF HUNK
// =============================================================================

// Hunk represents a contiguous section of changes.
type Hunk struct {
	OldStart int    // Starting line in the older version
	OldCount int    // Number of lines from the older version
	NewStart int    // Starting line in the newer version
	NewCount int    // Number of lines from the newer version
	Lines    []Line // The actual diff lines
}

// =============================================================================
// DIFF STATS
// =============================================================================

// Stats holds statistics about a version diff.
type Stats struct {
	Additions int    // Number of added lines
	Deletions int    // Number of removed lines
	Mode      string // "initial", "modified", "emptied"
}

// =============================================================================
// DIFF
// =============================================================================

// Diff represents a complete diff between two document versions.
type Diff struct {
	Label      string // Display label, typically the document title
	OldContent string // Older version content ("" for the empty baseline)
	NewContent string // Newer version content
	Hunks      []Hunk // The diff hunks
	Stats      Stats  // Statistics
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

// Compute creates a diff between two versions of a document using a
// line-by-line LCS comparison. Passing oldContent == "" diffs the newer
// version against the empty baseline, which is how the first snapshot of a
// document is presented.
func Compute(label, oldContent, newContent string) *Diff {
	d := &Diff{
		Label:      label,
		OldContent: oldContent,
		NewContent: newContent,
	}

	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	switch {
	case oldContent == "" && newContent != "":
		d.Stats.Mode = "initial"
	case oldContent != "" && newContent == "":
		d.Stats.Mode = "emptied"
	default:
		d.Stats.Mode = "modified"
	}

	lines := computeLineDiff(oldLines, newLines)
	d.Hunks = groupIntoHunks(lines)

	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			d.Stats.Additions++
		case LineRemoved:
			d.Stats.Deletions++
		}
	}

	return d
}

// splitLines splits content into lines, dropping a trailing empty line
// produced by a final newline.
func splitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// computeLineDiff computes line-by-line differences via LCS alignment.
func computeLineDiff(oldLines, newLines []string) []Line {
	var result []Line

	if len(oldLines) == 0 && len(newLines) == 0 {
		return result
	}

	// Only additions (first version of a document)
	if len(oldLines) == 0 {
		for i, line := range newLines {
			result = append(result, Line{Type: LineAdded, Content: line, NewLine: i + 1})
		}
		return result
	}

	// Only deletions (content emptied)
	if len(newLines) == 0 {
		for i, line := range oldLines {
			result = append(result, Line{Type: LineRemoved, Content: line, OldLine: i + 1})
		}
		return result
	}

	lcs := computeLCS(oldLines, newLines)

	oldIdx := 0
	newIdx := 0
	lcsIdx := 0

	for oldIdx < len(oldLines) || newIdx < len(newLines) {
		if lcsIdx < len(lcs) &&
			oldIdx < len(oldLines) && newIdx < len(newLines) &&
			oldLines[oldIdx] == newLines[newIdx] &&
			oldLines[oldIdx] == lcs[lcsIdx] {
			// Context line (unchanged)
			result = append(result, Line{
				Type:    LineContext,
				Content: oldLines[oldIdx],
				OldLine: oldIdx + 1,
				NewLine: newIdx + 1,
			})
			oldIdx++
			newIdx++
			lcsIdx++
		} else if oldIdx < len(oldLines) && (lcsIdx >= len(lcs) || oldLines[oldIdx] != lcs[lcsIdx]) {
			result = append(result, Line{
				Type:    LineRemoved,
				Content: oldLines[oldIdx],
				OldLine: oldIdx + 1,
			})
			oldIdx++
		} else if newIdx < len(newLines) {
			result = append(result, Line{
				Type:    LineAdded,
				Content: newLines[newIdx],
				NewLine: newIdx + 1,
			})
			newIdx++
		}
	}

	return result
}

// computeLCS computes the Longest Common Subsequence of two string slices.
func computeLCS(a, b []string) []string {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	// Backtrack to find the LCS
	var lcs []string
	i, j := m, n
	for i > 0 && j > 0 {
		if a[i-1] == b[j-1] {
			lcs = append([]string{a[i-1]}, lcs...)
			i--
			j--
		} else if dp[i-1][j] > dp[i][j-1] {
			i--
		} else {
			j--
		}
	}

	return lcs
}

// groupIntoHunks groups diff lines into hunks with surrounding context.
func groupIntoHunks(lines []Line) []Hunk {
	if len(lines) == 0 {
		return nil
	}

	const contextLines = 3 // Context lines before/after changes

	var hunks []Hunk
	var current *Hunk

	for i, line := range lines {
		isChange := line.Type != LineContext

		if current == nil && isChange {
			current = &Hunk{}

			// Add context before the first change
			contextStart := max(0, i-contextLines)
			for j := contextStart; j < i; j++ {
				current.Lines = append(current.Lines, lines[j])
				if lines[j].OldLine > 0 {
					current.OldCount++
				}
				if lines[j].NewLine > 0 {
					current.NewCount++
				}
			}

			if len(current.Lines) > 0 {
				first := current.Lines[0]
				if first.OldLine > 0 {
					current.OldStart = first.OldLine
				} else {
					current.OldStart = line.OldLine
				}
				if first.NewLine > 0 {
					current.NewStart = first.NewLine
				} else {
					current.NewStart = line.NewLine
				}
			} else {
				current.OldStart = line.OldLine
				current.NewStart = line.NewLine
			}
		}

		if current != nil {
			current.Lines = append(current.Lines, line)
			if line.OldLine > 0 {
				current.OldCount++
			}
			if line.NewLine > 0 {
				current.NewCount++
			}

			// Close the hunk once enough trailing context follows the change
			contextAfter := 0
			for j := i + 1; j < len(lines) && j < i+1+contextLines; j++ {
				if lines[j].Type != LineContext {
					contextAfter = -1 // More changes coming
					break
				}
				contextAfter++
			}

			if contextAfter >= 0 && (i == len(lines)-1 || contextAfter < contextLines) {
				for j := i + 1; j <= i+contextAfter && j < len(lines); j++ {
					current.Lines = append(current.Lines, lines[j])
					if lines[j].OldLine > 0 {
						current.OldCount++
					}
					if lines[j].NewLine > 0 {
						current.NewCount++
					}
				}
				hunks = append(hunks, *current)
				current = nil
			}
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}

	return hunks
}

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// FormatUnified returns the diff in standard unified diff format.
func FormatUnified(d *Diff) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- a/%s\n", d.Label))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", d.Label))

	for _, hunk := range d.Hunks {
		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldCount,
			hunk.NewStart, hunk.NewCount))

		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.Prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary returns a human-readable summary of the diff.
func (d *Diff) Summary() string {
	var parts []string

	switch d.Stats.Mode {
	case "initial":
		parts = append(parts, "Initial version")
	case "emptied":
		parts = append(parts, "Content removed")
	default:
		parts = append(parts, "Modified")
	}

	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}

	return strings.Join(parts, " ")
}
