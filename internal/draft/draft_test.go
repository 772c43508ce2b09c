// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package draft

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHydrate_Empty(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "draft.txt"))

	content, err := s.Hydrate()
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if content != "" {
		t.Errorf("Expected empty draft, got '%s'", content)
	}
}

func TestWriteThenHydrate(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "draft.txt"))

	if err := s.Write("half-typed message"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, err := s.Hydrate()
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	if content != "half-typed message" {
		t.Errorf("Expected draft round trip, got '%s'", content)
	}
}

func TestWrite_LastWriteWins(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "draft.txt"))

	for _, content := range []string{"a", "ab", "abc"} {
		if err := s.Write(content); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	content, _ := s.Hydrate()
	if content != "abc" {
		t.Errorf("Expected last write 'abc', got '%s'", content)
	}
}

func TestWrite_EmptyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.txt")
	s := NewStoreWithPath(path)

	s.Write("something")
	if err := s.Write(""); err != nil {
		t.Fatalf("Write empty failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected draft file to be removed")
	}
}
