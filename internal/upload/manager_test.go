// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// fakeUploader returns canned results per filename.
type fakeUploader struct {
	mu   sync.Mutex
	fail map[string]bool
	seen []string

	// gate, when non-nil, blocks uploads until closed.
	gate chan struct{}
}

func (f *fakeUploader) UploadFile(ctx context.Context, filename string, r io.Reader) (model.Attachment, error) {
	if f.gate != nil {
		<-f.gate
	}
	io.Copy(io.Discard, r)

	f.mu.Lock()
	f.seen = append(f.seen, filename)
	failed := f.fail[filename]
	f.mu.Unlock()

	if failed {
		return model.Attachment{}, errors.New("upload rejected")
	}
	return model.Attachment{
		URL:         "https://files.example.com/" + filename,
		Name:        filename,
		ContentType: "application/octet-stream",
	}, nil
}

// writeTempFiles creates files with the given names and returns their paths.
func writeTempFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("data-"+name), 0o644); err != nil {
			t.Fatalf("Failed to write temp file: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestEnqueue_AllSucceed(t *testing.T) {
	paths := writeTempFiles(t, "a.png", "b.pdf")
	m := NewManager(&fakeUploader{})

	results := m.Enqueue(context.Background(), paths)
	for range results {
	}

	ready := m.Ready()
	if len(ready) != 2 {
		t.Fatalf("Expected 2 attachments, got %d", len(ready))
	}
	if len(m.Pending()) != 0 {
		t.Errorf("Expected empty pending queue, got %v", m.Pending())
	}
	if m.Busy() {
		t.Error("Expected manager idle after batch completes")
	}
}

func TestEnqueue_PendingNamesInSelectionOrder(t *testing.T) {
	paths := writeTempFiles(t, "first.txt", "second.txt", "third.txt")

	gate := make(chan struct{})
	m := NewManager(&fakeUploader{gate: gate})

	results := m.Enqueue(context.Background(), paths)

	pending := m.Pending()
	want := []string{"first.txt", "second.txt", "third.txt"}
	if len(pending) != len(want) {
		t.Fatalf("Expected %d pending, got %d", len(want), len(pending))
	}
	for i, name := range want {
		if pending[i] != name {
			t.Errorf("Pending[%d]: expected %s, got %s", i, name, pending[i])
		}
	}

	close(gate)
	for range results {
	}
}

func TestEnqueue_FailureDoesNotAbortBatch(t *testing.T) {
	paths := writeTempFiles(t, "good.png", "bad.png")
	m := NewManager(&fakeUploader{fail: map[string]bool{"bad.png": true}})

	var failures int
	for res := range m.Enqueue(context.Background(), paths) {
		if res.Err != nil {
			failures++
			if res.Name != "bad.png" {
				t.Errorf("Expected bad.png to fail, got %s", res.Name)
			}
		}
	}

	if failures != 1 {
		t.Fatalf("Expected 1 failure, got %d", failures)
	}
	ready := m.Ready()
	if len(ready) != 1 || ready[0].Name != "good.png" {
		t.Errorf("Expected only good.png attached, got %+v", ready)
	}
	if len(m.Pending()) != 0 {
		t.Error("Failed upload must still leave the pending queue")
	}
}

func TestEnqueue_MissingFile(t *testing.T) {
	m := NewManager(&fakeUploader{})

	var res Result
	for r := range m.Enqueue(context.Background(), []string{"/nonexistent/file.bin"}) {
		res = r
	}

	if res.Err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(res.Err.Error(), "file.bin") {
		t.Errorf("Error should name the file: %v", res.Err)
	}
	if len(m.Ready()) != 0 {
		t.Error("Missing file must not produce an attachment")
	}
}

func TestTake_ClearsReady(t *testing.T) {
	paths := writeTempFiles(t, "a.png")
	m := NewManager(&fakeUploader{})

	for range m.Enqueue(context.Background(), paths) {
	}

	got := m.Take()
	if len(got) != 1 {
		t.Fatalf("Expected 1 attachment, got %d", len(got))
	}
	if len(m.Ready()) != 0 {
		t.Error("Take must clear the ready list")
	}
}

func TestClear_DiscardsInFlightResults(t *testing.T) {
	paths := writeTempFiles(t, "slow.png")

	gate := make(chan struct{})
	m := NewManager(&fakeUploader{gate: gate})

	results := m.Enqueue(context.Background(), paths)

	m.Clear()
	close(gate)
	for range results {
	}

	if len(m.Ready()) != 0 {
		t.Error("Cleared batch must not surface late attachments")
	}
	if len(m.Pending()) != 0 {
		t.Error("Clear must empty the pending queue")
	}
}

func TestOnChange_Notified(t *testing.T) {
	paths := writeTempFiles(t, "a.png")
	m := NewManager(&fakeUploader{})

	var mu sync.Mutex
	calls := 0
	m.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	for range m.Enqueue(context.Background(), paths) {
	}

	mu.Lock()
	defer mu.Unlock()
	if calls < 2 { // enqueue + resolve
		t.Errorf("Expected at least 2 change notifications, got %d", calls)
	}
}
