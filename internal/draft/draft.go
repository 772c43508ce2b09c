// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package draft persists the chat input draft between sessions.
package draft

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// DRAFT STORE
// =============================================================================

// Store persists the input draft to a single file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a draft store rooted in the user's inkwell directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(homeDir, ".inkwell", "draft.txt")}, nil
}

// NewStoreWithPath creates a draft store at a custom path.
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Hydrate reads the draft saved by a previous session.
// A missing file yields an empty draft, not an error.
func (s *Store) Hydrate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Write stores the current input draft. Called on every input change;
// the last write wins.
func (s *Store) Write(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content == "" {
		// An empty draft removes the file rather than leaving an empty one.
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	// RELIABILITY: Atomic write so a crash never leaves a torn draft
	return util.AtomicWriteFile(s.path, []byte(content), 0600)
}
