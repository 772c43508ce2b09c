// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// Uploader performs a single file upload. Satisfied by api.Client.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, r io.Reader) (model.Attachment, error)
}

// Result reports the outcome of a single file in a batch.
type Result struct {
	Name       string
	Attachment model.Attachment
	Err        error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager tracks in-flight attachment uploads for the composer.
//
// Pending filenames are kept in selection order for display. Uploads run
// concurrently; each completed upload moves its file from the pending queue
// to the ready attachment list. Attachments accumulate in resolution order,
// which may differ from selection order.
type Manager struct {
	mu       sync.Mutex
	client   Uploader
	pending  []string
	ready    []model.Attachment
	inFlight int
	batch    int // Incremented by Clear; stale resolutions are discarded

	// onChange is notified after every queue transition so the UI can
	// redraw. Called outside the lock.
	onChange func()
}

// NewManager creates an upload manager backed by the given uploader.
func NewManager(client Uploader) *Manager {
	return &Manager{client: client}
}

// OnChange registers a callback invoked whenever the pending queue or the
// ready attachment list changes.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Pending returns the filenames currently uploading, in selection order.
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.pending))
	copy(out, m.pending)
	return out
}

// Ready returns the attachments whose uploads have completed, in resolution
// order.
func (m *Manager) Ready() []model.Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Attachment, len(m.ready))
	copy(out, m.ready)
	return out
}

// Busy reports whether any upload is still in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight > 0
}

// Enqueue starts uploads for the given file paths. All files upload
// concurrently; per-file results arrive on the returned channel, which is
// closed after the last file resolves. A failed file never aborts the rest
// of the batch.
func (m *Manager) Enqueue(ctx context.Context, paths []string) <-chan Result {
	results := make(chan Result, len(paths))

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}

	m.mu.Lock()
	m.pending = append(m.pending, names...)
	m.inFlight += len(paths)
	batch := m.batch
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			name := filepath.Base(path)
			att, err := m.uploadOne(ctx, path)
			m.resolve(batch, name, att, err)
			results <- Result{Name: name, Attachment: att, Err: err}
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// uploadOne opens and uploads a single file.
func (m *Manager) uploadOne(ctx context.Context, path string) (model.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return m.client.UploadFile(ctx, filepath.Base(path), f)
}

// resolve removes a file from the pending queue and, on success, appends its
// attachment to the ready list. Resolutions from a cleared batch are dropped.
func (m *Manager) resolve(batch int, name string, att model.Attachment, err error) {
	m.mu.Lock()
	m.inFlight--
	if batch != m.batch {
		m.mu.Unlock()
		return
	}
	for i, n := range m.pending {
		if n == name {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	if err == nil {
		m.ready = append(m.ready, att)
	}
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Take returns the ready attachments and clears them, for attaching to a
// message being sent.
func (m *Manager) Take() []model.Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.ready
	m.ready = nil
	return out
}

// Clear drops all ready attachments and pending display entries. In-flight
// uploads still complete but their results are discarded.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.ready = nil
	m.pending = nil
	m.batch++
	notify := m.onChange
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}
