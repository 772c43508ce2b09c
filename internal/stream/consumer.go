// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// ErrStreamInProgress is returned when a submission overlaps an active stream.
var ErrStreamInProgress = errors.New("a generation is already in progress")

// Streamer opens a generation stream. Satisfied by api.Client.
type Streamer interface {
	ChatStream(ctx context.Context, req api.StreamRequest, callback api.StreamCallback) error
}

// CanvasSink receives canvas side-channel events in arrival order.
type CanvasSink func(event api.StreamEvent)

// SanitizePolicy decides whether a trailing assistant message should be
// dropped after a cancelled stream. Returning true drops the message.
type SanitizePolicy func(m *model.Message) bool

// DropUnfinished is the default sanitize policy: drop assistant messages
// that ended up empty or were cut off in the middle of a tool call.
func DropUnfinished(m *model.Message) bool {
	if m.Role != model.RoleAssistant {
		return false
	}
	return m.IsEmpty() || m.ToolCall == model.ToolCallPending
}

// KeepAll is a sanitize policy that never drops messages.
func KeepAll(m *model.Message) bool { return false }

// =============================================================================
// CONSUMER
// =============================================================================

// Consumer owns the conversation history and the active stream lifecycle.
//
// All mutation happens under the mutex; callbacks run outside the lock on
// the streaming goroutine. UI layers adapt the callbacks into their own
// event loop.
type Consumer struct {
	mu        sync.Mutex
	client    Streamer
	chatID    string
	modelID   string
	messages  []*model.Message
	streaming bool
	cancelMgr *cancelManager
	sanitize  SanitizePolicy

	canvasSink CanvasSink
	onChange   func()
	onDone     func(err error)
}

// NewConsumer creates a consumer for the given chat.
func NewConsumer(client Streamer, chatID, modelID string) *Consumer {
	return &Consumer{
		client:    client,
		chatID:    chatID,
		modelID:   modelID,
		cancelMgr: newCancelManager(),
		sanitize:  DropUnfinished,
	}
}

// SetSanitizePolicy overrides the post-cancel cleanup policy.
func (c *Consumer) SetSanitizePolicy(p SanitizePolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p != nil {
		c.sanitize = p
	}
}

// SetCanvasSink registers the receiver for canvas side-channel events.
func (c *Consumer) SetCanvasSink(sink CanvasSink) {
	c.mu.Lock()
	c.canvasSink = sink
	c.mu.Unlock()
}

// OnChange registers a callback invoked after each applied content delta
// and after history mutations.
func (c *Consumer) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// OnDone registers a callback invoked once when a stream ends. err is nil
// on normal completion and context.Canceled after a Stop.
func (c *Consumer) OnDone(fn func(err error)) {
	c.mu.Lock()
	c.onDone = fn
	c.mu.Unlock()
}

// Messages returns a snapshot of the conversation history.
func (c *Consumer) Messages() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// IsStreaming reports whether a generation is in flight.
func (c *Consumer) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// SetHistory replaces the conversation history. Rejected while streaming.
func (c *Consumer) SetHistory(messages []*model.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		return ErrStreamInProgress
	}
	c.messages = messages
	return nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit appends the user message optimistically and starts the generation
// stream in a background goroutine. The message appears in history before
// any network activity; a failed stream keeps it.
func (c *Consumer) Submit(ctx context.Context, content string, attachments []model.Attachment) error {
	c.mu.Lock()
	if c.streaming {
		c.mu.Unlock()
		return ErrStreamInProgress
	}

	userMsg := model.NewUserMessage(content, attachments)
	c.messages = append(c.messages, userMsg)
	c.streaming = true
	req := api.NewStreamRequest(c.chatID, c.modelID, c.messages)
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}

	streamCtx, cancel := context.WithCancel(ctx)
	c.cancelMgr.set(cancel)

	go c.run(streamCtx, req)
	return nil
}

// run consumes the stream until completion, cancellation, or error.
func (c *Consumer) run(ctx context.Context, req api.StreamRequest) {
	err := c.client.ChatStream(ctx, req, c.dispatch)
	c.finish(err)
}

// dispatch routes one event: content deltas mutate the trailing assistant
// message, canvas events pass through to the sink untouched.
func (c *Consumer) dispatch(event api.StreamEvent) {
	if event.IsCanvas() {
		c.mu.Lock()
		sink := c.canvasSink
		// Track tool call progress on the trailing assistant message so a
		// cancel mid-call can recognize it.
		c.markToolCallLocked(event.Kind)
		c.mu.Unlock()
		if sink != nil {
			sink(event)
		}
		return
	}

	if event.Kind != api.EventMessageDelta {
		return // Unknown kinds are skipped, same as malformed events
	}

	c.mu.Lock()
	c.applyDeltaLocked(event.Content)
	notify := c.onChange
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// applyDeltaLocked extends the trailing streaming assistant message,
// creating it on the first delta.
func (c *Consumer) applyDeltaLocked(delta string) {
	last := c.lastLocked()
	if last == nil || last.Role != model.RoleAssistant || !last.IsStreaming {
		last = model.NewAssistantMessage()
		c.messages = append(c.messages, last)
	}
	last.AppendDelta(delta)
}

// markToolCallLocked records tool call progress on the assistant message.
func (c *Consumer) markToolCallLocked(kind api.EventKind) {
	last := c.lastLocked()
	if last == nil || last.Role != model.RoleAssistant || !last.IsStreaming {
		last = model.NewAssistantMessage()
		c.messages = append(c.messages, last)
	}
	switch kind {
	case api.EventCanvasID, api.EventCanvasTitle, api.EventCanvasClear, api.EventCanvasDelta:
		if last.ToolCall == model.ToolCallNone {
			last.ToolCall = model.ToolCallPending
		}
	case api.EventCanvasFinish:
		last.ToolCall = model.ToolCallComplete
	}
}

// finish finalizes the stream state and fires the done callback exactly once
// per stream.
func (c *Consumer) finish(err error) {
	cancelled := errors.Is(err, context.Canceled)

	c.mu.Lock()
	c.streaming = false
	if last := c.lastLocked(); last != nil && last.IsStreaming {
		last.FinalizeStream()
		if last.ToolCall == model.ToolCallPending && !cancelled {
			last.ToolCall = model.ToolCallComplete
		}
	}
	if cancelled {
		c.sanitizeLocked()
	}
	notify := c.onChange
	done := c.onDone
	c.mu.Unlock()

	c.cancelMgr.cancel()

	if notify != nil {
		notify()
	}
	if done != nil {
		done(err)
	}
}

// sanitizeLocked drops trailing assistant messages the policy rejects.
// Only the tail is considered; settled history is never rewritten.
func (c *Consumer) sanitizeLocked() {
	for len(c.messages) > 0 {
		last := c.messages[len(c.messages)-1]
		if last.Role != model.RoleAssistant || !c.sanitize(last) {
			break
		}
		c.messages = c.messages[:len(c.messages)-1]
	}
}

// lastLocked returns the trailing message or nil.
func (c *Consumer) lastLocked() *model.Message {
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// =============================================================================
// CANCELLATION
// =============================================================================

// Stop cancels the active stream. Content received so far stays in the
// trailing assistant message unless the sanitize policy drops it. Safe to
// call when no stream is active.
func (c *Consumer) Stop() {
	c.cancelMgr.cancel()
}
