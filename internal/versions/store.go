// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package versions

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// Configuration constants for the version store.
const (
	// DefaultSaveDebounce is the quiet window before an edit batch is saved.
	DefaultSaveDebounce = 2 * time.Second

	// DefaultSuggestionInterval caps how often suggestions are refetched
	// for one document.
	DefaultSuggestionInterval = 5 * time.Second

	// saveTimeout bounds a single background save request.
	saveTimeout = 30 * time.Second
)

// Backend is the subset of the API client the store needs.
// Satisfied by api.Client.
type Backend interface {
	FetchDocuments(ctx context.Context, documentID string) ([]model.Document, error)
	SaveDocument(ctx context.Context, documentID, title, content string) (*model.Document, error)
	FetchSuggestions(ctx context.Context, documentID string) ([]model.Suggestion, error)
}

// Mode is the canvas view mode for a document.
type Mode string

const (
	// ModeEdit shows the editable document content.
	ModeEdit Mode = "edit"
	// ModeDiff shows the current version against its predecessor.
	ModeDiff Mode = "diff"
)

// =============================================================================
// PER-DOCUMENT STATE
// =============================================================================

// docState is the tracked state for one document. Guarded by the store mutex.
type docState struct {
	snapshots []model.Document
	index     int  // Version cursor into snapshots
	atLatest  bool // Cursor follows new snapshots when true
	mode      Mode

	title   string
	content string // Working copy of the latest content
	dirty   bool   // Working copy differs from the last saved snapshot

	fetchSeq int // Bumped per refresh; stale responses are dropped

	saveTimer *time.Timer
	saving    bool

	suggestions []model.Suggestion
	sugLimiter  *rate.Limiter
}

// =============================================================================
// STORE
// =============================================================================

// Store tracks snapshot histories for every document the session touches.
type Store struct {
	mu     sync.Mutex
	client Backend

	debounce           time.Duration
	suggestionInterval time.Duration

	docs map[string]*docState

	// onChange fires after any visible state transition, with the document
	// id. Called outside the lock.
	onChange func(documentID string)
	// onError surfaces background save/fetch failures. Called outside the
	// lock.
	onError func(err error)
}

// NewStore creates a store with default debounce and suggestion intervals.
func NewStore(client Backend) *Store {
	return &Store{
		client:             client,
		debounce:           DefaultSaveDebounce,
		suggestionInterval: DefaultSuggestionInterval,
		docs:               make(map[string]*docState),
	}
}

// NewStoreWithIntervals creates a store with custom timing, for configs and
// tests.
func NewStoreWithIntervals(client Backend, debounce, suggestionInterval time.Duration) *Store {
	s := NewStore(client)
	if debounce > 0 {
		s.debounce = debounce
	}
	if suggestionInterval > 0 {
		s.suggestionInterval = suggestionInterval
	}
	return s
}

// SetIntervals applies new debounce and suggestion timings, typically
// after a config reload. Existing per-document rate limiters pick up the
// new suggestion window; an already armed save timer keeps its old delay.
func (s *Store) SetIntervals(debounce, suggestionInterval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if debounce > 0 {
		s.debounce = debounce
	}
	if suggestionInterval > 0 {
		s.suggestionInterval = suggestionInterval
		for _, d := range s.docs {
			d.sugLimiter.SetLimit(rate.Every(suggestionInterval))
		}
	}
}

// OnChange registers a callback fired after state transitions.
func (s *Store) OnChange(fn func(documentID string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// OnError registers a callback for background failures.
func (s *Store) OnError(fn func(err error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// doc returns (creating if needed) the state for a document.
// Caller must hold the lock.
func (s *Store) doc(documentID string) *docState {
	d, ok := s.docs[documentID]
	if !ok {
		d = &docState{
			atLatest:   true,
			mode:       ModeEdit,
			sugLimiter: rate.NewLimiter(rate.Every(s.suggestionInterval), 1),
		}
		s.docs[documentID] = d
	}
	return d
}

// notify fires the change callback outside the lock.
func (s *Store) notify(documentID string) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(documentID)
	}
}

// fail fires the error callback outside the lock.
func (s *Store) fail(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Snapshots returns a copy of the snapshot sequence for a document.
func (s *Store) Snapshots(documentID string) []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.doc(documentID)
	out := make([]model.Document, len(d.snapshots))
	copy(out, d.snapshots)
	return out
}

// Index returns the current version cursor and the total version count.
func (s *Store) Index(documentID string) (index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.doc(documentID)
	return d.index, len(d.snapshots)
}

// AtLatest reports whether the cursor is on the newest version.
func (s *Store) AtLatest(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc(documentID).atLatest
}

// Mode returns the current view mode for a document.
func (s *Store) Mode(documentID string) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc(documentID).mode
}

// Dirty reports whether a document has unsaved edits.
func (s *Store) Dirty(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc(documentID).dirty
}

// Title returns the document title.
func (s *Store) Title(documentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc(documentID).title
}

// SetTitle records the document title locally. The title rides along with
// the next content save.
func (s *Store) SetTitle(documentID, title string) {
	s.mu.Lock()
	s.doc(documentID).title = title
	s.mu.Unlock()
	s.notify(documentID)
}

// Content returns what the cursor points at: the working copy when on the
// latest version, the historical snapshot content otherwise.
func (s *Store) Content(documentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.doc(documentID)
	if d.atLatest {
		return d.content
	}
	if d.index >= 0 && d.index < len(d.snapshots) {
		return d.snapshots[d.index].Content
	}
	return d.content
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh fetches the snapshot sequence in the background.
//
// Two guards protect local state: a response superseded by a newer Refresh
// call is dropped, and a dirty working copy is never clobbered (the
// snapshot list still updates so history navigation sees new versions).
func (s *Store) Refresh(ctx context.Context, documentID string) {
	s.mu.Lock()
	d := s.doc(documentID)
	d.fetchSeq++
	seq := d.fetchSeq
	s.mu.Unlock()

	go func() {
		docs, err := s.client.FetchDocuments(ctx, documentID)
		if err != nil {
			s.fail(err)
			return
		}

		s.mu.Lock()
		d := s.doc(documentID)
		if seq != d.fetchSeq {
			// A newer refresh superseded this one.
			s.mu.Unlock()
			return
		}

		d.snapshots = docs
		if len(docs) > 0 {
			latest := docs[len(docs)-1]
			if d.title == "" {
				d.title = latest.Title
			}
			if !d.dirty {
				d.content = latest.Content
			}
			if d.atLatest {
				d.index = len(docs) - 1
			} else if d.index >= len(docs) {
				d.index = len(docs) - 1
			}
		}
		s.mu.Unlock()
		s.notify(documentID)
	}()
}

// =============================================================================
// SAVES (WRITE-BEHIND)
// =============================================================================

// SaveContent records an edit to the working copy and arms the trailing
// debounce window. Consecutive edits within the window coalesce into one
// save carrying the final content. Saving content identical to the latest
// snapshot is a no-op.
func (s *Store) SaveContent(documentID, content string) {
	s.mu.Lock()
	d := s.doc(documentID)

	if !d.atLatest {
		// Editing is only valid on the latest version.
		s.mu.Unlock()
		return
	}

	latest := ""
	if len(d.snapshots) > 0 {
		latest = d.snapshots[len(d.snapshots)-1].Content
	}
	if content == latest && !d.dirty {
		s.mu.Unlock()
		return
	}

	d.content = content
	d.dirty = true

	// Trailing debounce: every edit replaces the pending save, so the
	// window restarts and only the final content is written.
	if d.saveTimer != nil {
		d.saveTimer.Stop()
	}
	d.saveTimer = time.AfterFunc(s.debounce, func() {
		s.flush(documentID)
	})
	s.mu.Unlock()
	s.notify(documentID)
}

// SetBaseline installs streamed content as the working copy without arming
// a save. Used while the backend itself is writing the document; the
// backend's own save is the source of truth.
func (s *Store) SetBaseline(documentID, content string) {
	s.mu.Lock()
	d := s.doc(documentID)
	d.content = content
	d.dirty = false
	s.mu.Unlock()
	s.notify(documentID)
}

// Flush performs any pending save immediately. Used on shutdown.
func (s *Store) Flush(documentID string) {
	s.mu.Lock()
	d := s.doc(documentID)
	pending := d.dirty && d.saveTimer != nil
	if d.saveTimer != nil {
		d.saveTimer.Stop()
		d.saveTimer = nil
	}
	s.mu.Unlock()

	if pending {
		s.flush(documentID)
	}
}

// flush writes the current working copy to the backend and appends the
// resulting snapshot locally. No refetch: the local append keeps the
// sequence consistent with what the backend now holds.
func (s *Store) flush(documentID string) {
	s.mu.Lock()
	d := s.doc(documentID)
	if !d.dirty || d.saving {
		s.mu.Unlock()
		return
	}
	latest := ""
	if len(d.snapshots) > 0 {
		latest = d.snapshots[len(d.snapshots)-1].Content
	}
	if d.content == latest {
		// The edit round-tripped back to the stored content within the
		// window; nothing to persist.
		d.dirty = false
		d.saveTimer = nil
		s.mu.Unlock()
		s.notify(documentID)
		return
	}
	d.saving = true
	d.saveTimer = nil
	title := d.title
	content := d.content
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	doc, err := s.client.SaveDocument(ctx, documentID, title, content)

	s.mu.Lock()
	d = s.doc(documentID)
	d.saving = false
	if err != nil {
		// Stay dirty; the next edit re-arms the window and retries.
		s.mu.Unlock()
		s.fail(err)
		return
	}

	d.snapshots = append(d.snapshots, *doc)
	if d.atLatest {
		d.index = len(d.snapshots) - 1
	}
	// Edits made while the save was in flight keep the document dirty.
	if d.content == content {
		d.dirty = false
	}
	s.mu.Unlock()
	s.notify(documentID)
}

// =============================================================================
// VERSION NAVIGATION
// =============================================================================

// Direction selects a version navigation move.
type Direction int

const (
	// Prev moves the cursor one version back.
	Prev Direction = iota
	// Next moves the cursor one version forward.
	Next
	// Latest jumps the cursor to the newest version.
	Latest
)

// Navigate moves the version cursor. Moves are clamped to the snapshot
// range; navigating away from the latest version disables editing until
// the cursor returns.
func (s *Store) Navigate(documentID string, dir Direction) {
	s.mu.Lock()
	d := s.doc(documentID)
	if len(d.snapshots) == 0 {
		s.mu.Unlock()
		return
	}

	switch dir {
	case Prev:
		if d.index > 0 {
			d.index--
		}
	case Next:
		if d.index < len(d.snapshots)-1 {
			d.index++
		}
	case Latest:
		d.index = len(d.snapshots) - 1
		// Jumping back to the newest version always lands in edit mode.
		d.mode = ModeEdit
	}
	d.atLatest = d.index == len(d.snapshots)-1
	s.mu.Unlock()
	s.notify(documentID)
}

// ToggleMode flips between edit and diff views.
func (s *Store) ToggleMode(documentID string) {
	s.mu.Lock()
	d := s.doc(documentID)
	if d.mode == ModeEdit {
		d.mode = ModeDiff
	} else {
		d.mode = ModeEdit
	}
	s.mu.Unlock()
	s.notify(documentID)
}

// DiffPair resolves the contents compared in diff view at the current
// cursor: the version under the cursor against its predecessor. The first
// version diffs against an empty baseline.
func (s *Store) DiffPair(documentID string) (oldContent, newContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.doc(documentID)
	if len(d.snapshots) == 0 {
		return "", d.content
	}

	idx := d.index
	if idx >= len(d.snapshots) {
		idx = len(d.snapshots) - 1
	}
	newContent = d.snapshots[idx].Content
	if d.atLatest {
		// The working copy may be ahead of the stored snapshot.
		newContent = d.content
	}
	if idx > 0 {
		oldContent = d.snapshots[idx-1].Content
	}
	return oldContent, newContent
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// Suggestions returns suggestion annotations for a document. Fetches are
// rate limited to one per interval; within the window the cached result is
// returned.
func (s *Store) Suggestions(ctx context.Context, documentID string) ([]model.Suggestion, error) {
	s.mu.Lock()
	d := s.doc(documentID)
	limiter := d.sugLimiter
	cached := make([]model.Suggestion, len(d.suggestions))
	copy(cached, d.suggestions)
	s.mu.Unlock()

	if !limiter.Allow() {
		return cached, nil
	}

	suggestions, err := s.client.FetchSuggestions(ctx, documentID)
	if err != nil {
		// Serve the cache on transient failure.
		return cached, err
	}

	s.mu.Lock()
	s.doc(documentID).suggestions = suggestions
	s.mu.Unlock()
	return suggestions, nil
}
