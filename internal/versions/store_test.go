// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package versions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// fakeBackend is an in-memory document backend with call counting.
type fakeBackend struct {
	mu          sync.Mutex
	docs        map[string][]model.Document
	suggestions map[string][]model.Suggestion

	fetchCalls      int
	saveCalls       int
	suggestionCalls int
	savedContents   []string

	saveErr error

	// fetchGate, when non-nil, blocks FetchDocuments until it receives.
	fetchGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		docs:        make(map[string][]model.Document),
		suggestions: make(map[string][]model.Suggestion),
	}
}

func (f *fakeBackend) seed(documentID string, contents ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range contents {
		f.docs[documentID] = append(f.docs[documentID], model.Document{
			DocumentID: documentID,
			Title:      "Notes",
			Content:    c,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func (f *fakeBackend) FetchDocuments(ctx context.Context, documentID string) ([]model.Document, error) {
	// Snapshot the data at call time so a gated response carries what the
	// backend held when the fetch started, not when it was released.
	f.mu.Lock()
	f.fetchCalls++
	out := make([]model.Document, len(f.docs[documentID]))
	copy(out, f.docs[documentID])
	gate := f.fetchGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return out, nil
}

func (f *fakeBackend) SaveDocument(ctx context.Context, documentID, title, content string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.savedContents = append(f.savedContents, content)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	doc := model.Document{
		DocumentID: documentID,
		Title:      title,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	f.docs[documentID] = append(f.docs[documentID], doc)
	return &doc, nil
}

func (f *fakeBackend) FetchSuggestions(ctx context.Context, documentID string) ([]model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestionCalls++
	return f.suggestions[documentID], nil
}

func (f *fakeBackend) counts() (fetch, save, sugg int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.saveCalls, f.suggestionCalls
}

// waitChange blocks until the store reports a change for the document.
func waitChange(t *testing.T, ch <-chan string, documentID string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case id := <-ch:
			if id == documentID {
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for store change")
		}
	}
}

func changeChan(s *Store) <-chan string {
	ch := make(chan string, 64)
	s.OnChange(func(id string) {
		select {
		case ch <- id:
		default:
		}
	})
	return ch
}

// =============================================================================
// REFRESH
// =============================================================================

func TestRefresh_PopulatesSnapshots(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2", "v3")

	s := NewStore(backend)
	ch := changeChan(s)

	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	snapshots := s.Snapshots("doc1")
	require.Len(t, snapshots, 3)

	index, total := s.Index("doc1")
	assert.Equal(t, 2, index, "cursor should sit on the newest version")
	assert.Equal(t, 3, total)
	assert.True(t, s.AtLatest("doc1"))
	assert.Equal(t, "v3", s.Content("doc1"))
	assert.Equal(t, "Notes", s.Title("doc1"))
}

func TestRefresh_StaleResponseDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "old")
	backend.fetchGate = make(chan struct{})

	s := NewStore(backend)
	ch := changeChan(s)

	// First refresh blocks on the gate.
	s.Refresh(context.Background(), "doc1")

	// Backend state advances; second refresh supersedes the first.
	backend.seed("doc1", "new")
	s.Refresh(context.Background(), "doc1")

	// Release both fetches: second completes with the full data, then the
	// first (stale) response arrives and must be dropped.
	backend.fetchGate <- struct{}{}
	backend.fetchGate <- struct{}{}

	waitChange(t, ch, "doc1")

	// Only the superseding refresh may apply. Retry briefly since goroutine
	// completion order is not deterministic.
	require.Eventually(t, func() bool {
		return len(s.Snapshots("doc1")) == 2
	}, 5*time.Second, 5*time.Millisecond, "stale single-snapshot response must not win")
	assert.Equal(t, "new", s.Content("doc1"))
}

func TestRefresh_DirtyContentNotClobbered(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "saved")

	s := NewStoreWithIntervals(backend, time.Hour, 0) // Debounce never fires
	ch := changeChan(s)

	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.SaveContent("doc1", "local edits")
	require.True(t, s.Dirty("doc1"))

	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	assert.Equal(t, "local edits", s.Content("doc1"), "refresh must not clobber dirty content")
	assert.True(t, s.Dirty("doc1"))
}

// =============================================================================
// DEBOUNCED SAVES
// =============================================================================

func TestSaveContent_DebouncesToSingleWrite(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1")

	s := NewStoreWithIntervals(backend, 30*time.Millisecond, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	// A burst of edits inside the window coalesces into one save.
	for i := 0; i < 10; i++ {
		s.SaveContent("doc1", fmt.Sprintf("edit %d", i))
	}

	require.Eventually(t, func() bool {
		_, saves, _ := backend.counts()
		return saves == 1
	}, 5*time.Second, 5*time.Millisecond)

	backend.mu.Lock()
	saved := backend.savedContents[0]
	backend.mu.Unlock()
	assert.Equal(t, "edit 9", saved, "only the final content in the window is written")

	assert.Eventually(t, func() bool {
		return !s.Dirty("doc1")
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSaveContent_AppendsSnapshotWithoutRefetch(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1")

	s := NewStoreWithIntervals(backend, 10*time.Millisecond, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	fetchesBefore, _, _ := backend.counts()

	s.SaveContent("doc1", "v2")
	require.Eventually(t, func() bool {
		return len(s.Snapshots("doc1")) == 2
	}, 5*time.Second, 5*time.Millisecond)

	fetchesAfter, _, _ := backend.counts()
	assert.Equal(t, fetchesBefore, fetchesAfter, "save must append locally, not refetch")

	index, total := s.Index("doc1")
	assert.Equal(t, 1, index)
	assert.Equal(t, 2, total)
	assert.Equal(t, "v2", s.Content("doc1"))
}

func TestSaveContent_UnchangedIsNoOp(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "same")

	s := NewStoreWithIntervals(backend, 10*time.Millisecond, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.SaveContent("doc1", "same")
	assert.False(t, s.Dirty("doc1"))

	time.Sleep(50 * time.Millisecond)
	_, saves, _ := backend.counts()
	assert.Equal(t, 0, saves, "saving unchanged content must not hit the backend")
}

func TestSaveContent_RevertedEditSkipsWrite(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1")

	s := NewStoreWithIntervals(backend, 20*time.Millisecond, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	// Edit away and revert before the window closes: the coalesced write
	// would carry content identical to the latest snapshot.
	s.SaveContent("doc1", "v1 edited")
	s.SaveContent("doc1", "v1")

	require.Eventually(t, func() bool {
		return !s.Dirty("doc1")
	}, 5*time.Second, 5*time.Millisecond)

	_, saves, _ := backend.counts()
	assert.Equal(t, 0, saves, "reverted content must not hit the backend")
	assert.Len(t, s.Snapshots("doc1"), 1, "no duplicate snapshot for unchanged content")
}

func TestSaveContent_IgnoredOffLatest(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2")

	s := NewStoreWithIntervals(backend, 10*time.Millisecond, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.Navigate("doc1", Prev)
	require.False(t, s.AtLatest("doc1"))

	s.SaveContent("doc1", "edit on history")
	assert.False(t, s.Dirty("doc1"))
	assert.Equal(t, "v1", s.Content("doc1"))
}

func TestSaveContent_FailureStaysDirty(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1")
	backend.saveErr = errors.New("backend down")

	s := NewStoreWithIntervals(backend, 10*time.Millisecond, 0)
	ch := changeChan(s)

	var mu sync.Mutex
	var gotErr error
	s.OnError(func(err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})

	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.SaveContent("doc1", "doomed edit")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, 5*time.Second, 5*time.Millisecond)

	assert.True(t, s.Dirty("doc1"), "failed save keeps the document dirty")
	assert.Equal(t, "doomed edit", s.Content("doc1"))
	assert.Len(t, s.Snapshots("doc1"), 1, "failed save must not append a snapshot")
}

func TestFlush_SavesImmediately(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1")

	s := NewStoreWithIntervals(backend, time.Hour, 0)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.SaveContent("doc1", "shutdown edit")
	s.Flush("doc1")

	_, saves, _ := backend.counts()
	assert.Equal(t, 1, saves)
	assert.False(t, s.Dirty("doc1"))
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestNavigate_Clamped(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2", "v3")

	s := NewStore(backend)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	// Walk past the oldest version: clamped at 0.
	for i := 0; i < 5; i++ {
		s.Navigate("doc1", Prev)
	}
	index, _ := s.Index("doc1")
	assert.Equal(t, 0, index)
	assert.False(t, s.AtLatest("doc1"))
	assert.Equal(t, "v1", s.Content("doc1"))

	// Walk past the newest: clamped at the end.
	for i := 0; i < 5; i++ {
		s.Navigate("doc1", Next)
	}
	index, _ = s.Index("doc1")
	assert.Equal(t, 2, index)
	assert.True(t, s.AtLatest("doc1"))
}

func TestNavigate_LatestJumps(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2", "v3")

	s := NewStore(backend)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.Navigate("doc1", Prev)
	s.Navigate("doc1", Prev)
	s.ToggleMode("doc1")
	s.Navigate("doc1", Latest)

	index, _ := s.Index("doc1")
	assert.Equal(t, 2, index)
	assert.True(t, s.AtLatest("doc1"))
	assert.Equal(t, ModeEdit, s.Mode("doc1"), "latest jump should leave diff mode")
}

func TestNavigate_EmptyHistoryIsNoOp(t *testing.T) {
	s := NewStore(newFakeBackend())
	s.Navigate("doc1", Prev) // Must not panic
	index, total := s.Index("doc1")
	assert.Equal(t, 0, index)
	assert.Equal(t, 0, total)
}

// =============================================================================
// DIFF PAIRS
// =============================================================================

func TestDiffPair_FirstVersionAgainstEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2")

	s := NewStore(backend)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	s.Navigate("doc1", Prev) // Cursor on v1
	oldC, newC := s.DiffPair("doc1")
	assert.Equal(t, "", oldC, "first version diffs against an empty baseline")
	assert.Equal(t, "v1", newC)
}

func TestDiffPair_AgainstPredecessor(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("doc1", "v1", "v2", "v3")

	s := NewStore(backend)
	ch := changeChan(s)
	s.Refresh(context.Background(), "doc1")
	waitChange(t, ch, "doc1")

	oldC, newC := s.DiffPair("doc1")
	assert.Equal(t, "v2", oldC)
	assert.Equal(t, "v3", newC)
}

func TestToggleMode(t *testing.T) {
	s := NewStore(newFakeBackend())
	assert.Equal(t, ModeEdit, s.Mode("doc1"))

	s.ToggleMode("doc1")
	assert.Equal(t, ModeDiff, s.Mode("doc1"))

	s.ToggleMode("doc1")
	assert.Equal(t, ModeEdit, s.Mode("doc1"))
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

func TestSuggestions_RateLimited(t *testing.T) {
	backend := newFakeBackend()
	backend.suggestions["doc1"] = []model.Suggestion{
		{ID: "s1", DocumentID: "doc1", SuggestedText: "tighter phrasing"},
	}

	s := NewStoreWithIntervals(backend, 0, time.Hour)

	first, err := s.Suggestions(context.Background(), "doc1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Inside the window: served from cache, no second fetch.
	second, err := s.Suggestions(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, _, fetches := backend.counts()
	assert.Equal(t, 1, fetches, "second call inside the window must hit the cache")
}

func TestSuggestions_WindowReopens(t *testing.T) {
	backend := newFakeBackend()
	s := NewStoreWithIntervals(backend, 0, 20*time.Millisecond)

	s.Suggestions(context.Background(), "doc1")
	time.Sleep(40 * time.Millisecond)
	s.Suggestions(context.Background(), "doc1")

	_, _, fetches := backend.counts()
	assert.Equal(t, 2, fetches)
}

func TestSetIntervals_ShrinksSuggestionWindow(t *testing.T) {
	backend := newFakeBackend()
	s := NewStoreWithIntervals(backend, 0, time.Hour)

	// Exhausts the hour-long window.
	s.Suggestions(context.Background(), "doc1")

	s.SetIntervals(0, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.Suggestions(context.Background(), "doc1")

	_, _, fetches := backend.counts()
	assert.Equal(t, 2, fetches, "existing limiters must pick up the new window")
}
