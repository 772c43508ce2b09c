// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"
)

func TestCompute_InitialVersion(t *testing.T) {
	d := Compute("Notes", "", "line1\nline2\nline3")

	if d.Stats.Mode != "initial" {
		t.Errorf("Expected mode 'initial', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Additions != 3 {
		t.Errorf("Expected 3 additions, got %d", d.Stats.Additions)
	}
	if d.Stats.Deletions != 0 {
		t.Errorf("Expected 0 deletions, got %d", d.Stats.Deletions)
	}
}

func TestCompute_Emptied(t *testing.T) {
	d := Compute("Notes", "line1\nline2", "")

	if d.Stats.Mode != "emptied" {
		t.Errorf("Expected mode 'emptied', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Deletions != 2 {
		t.Errorf("Expected 2 deletions, got %d", d.Stats.Deletions)
	}
}

func TestCompute_Modified(t *testing.T) {
	d := Compute("Notes", "line1\nline2\nline3", "line1\nchanged\nline3\nline4")

	if d.Stats.Mode != "modified" {
		t.Errorf("Expected mode 'modified', got '%s'", d.Stats.Mode)
	}
	if d.Stats.Additions != 2 {
		t.Errorf("Expected 2 additions, got %d", d.Stats.Additions)
	}
	if d.Stats.Deletions != 1 {
		t.Errorf("Expected 1 deletion, got %d", d.Stats.Deletions)
	}
}

func TestCompute_NoChanges(t *testing.T) {
	content := "line1\nline2\nline3"
	d := Compute("Notes", content, content)

	if d.Stats.Additions != 0 || d.Stats.Deletions != 0 {
		t.Errorf("Expected no changes, got +%d -%d", d.Stats.Additions, d.Stats.Deletions)
	}
	if len(d.Hunks) != 0 {
		t.Errorf("Expected no hunks, got %d", len(d.Hunks))
	}
}

func TestLineType_Prefix(t *testing.T) {
	tests := []struct {
		lineType LineType
		expected string
	}{
		{LineContext, " "},
		{LineAdded, "+"},
		{LineRemoved, "-"},
	}

	for _, tt := range tests {
		if got := tt.lineType.Prefix(); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}
}

func TestFormatUnified(t *testing.T) {
	d := Compute("Notes", "line1\nline2\nline3", "line1\nchanged\nline3")
	unified := FormatUnified(d)

	if !strings.Contains(unified, "--- a/Notes") {
		t.Error("Missing old version header")
	}
	if !strings.Contains(unified, "+++ b/Notes") {
		t.Error("Missing new version header")
	}
	if !strings.Contains(unified, "@@") {
		t.Error("Missing hunk header")
	}
	if !strings.Contains(unified, "-line2") || !strings.Contains(unified, "+changed") {
		t.Error("Missing changed lines")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name       string
		oldContent string
		newContent string
		expected   string
	}{
		{"initial version", "", "line1\nline2", "Initial version +2"},
		{"content removed", "line1\nline2", "", "Content removed -2"},
		{"modified", "line1\nline2\nline3", "line1\nchanged\nline3\nline4", "Modified +2 -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compute("Notes", tt.oldContent, tt.newContent)
			if got := d.Summary(); got != tt.expected {
				t.Errorf("Expected summary '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single line", "line1", []string{"line1"}},
		{"trailing newline dropped", "line1\nline2\n", []string{"line1", "line2"}},
		{"multiple lines", "a\nb\nc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.content)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d lines, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Line %d: expected '%s', got '%s'", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

func TestComputeLCS(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected []string
	}{
		{"identical", []string{"a", "b", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"disjoint", []string{"a", "b"}, []string{"x", "y"}, []string{}},
		{"partial", []string{"a", "b", "c", "d"}, []string{"a", "x", "c", "d"}, []string{"a", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeLCS(tt.a, tt.b)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected LCS length %d, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("LCS[%d]: expected '%s', got '%s'", i, tt.expected[i], result[i])
				}
			}
		})
	}
}
