// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/model"
)

// scriptedStreamer replays a fixed event sequence through the callback.
// When hold is non-nil it blocks after holdAfter events until cancelled.
type scriptedStreamer struct {
	events    []api.StreamEvent
	holdAfter int
	hold      chan struct{}
}

func (s *scriptedStreamer) ChatStream(ctx context.Context, req api.StreamRequest, cb api.StreamCallback) error {
	for i, ev := range s.events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cb(ev)
		if s.hold != nil && i+1 == s.holdAfter {
			select {
			case <-s.hold:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// waitDone runs Submit and blocks until the stream completes.
func waitDone(t *testing.T, c *Consumer, content string) error {
	t.Helper()
	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })

	if err := c.Submit(context.Background(), content, nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for stream completion")
		return nil
	}
}

func delta(content string) api.StreamEvent {
	return api.StreamEvent{Kind: api.EventMessageDelta, Content: content}
}

func TestSubmit_OptimisticUserMessage(t *testing.T) {
	streamer := &scriptedStreamer{}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	waitDone(t, c, "hello")

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("Unexpected message: %+v", msgs[0])
	}
}

func TestSubmit_DeltasConcatenateInOrder(t *testing.T) {
	streamer := &scriptedStreamer{events: []api.StreamEvent{
		delta("The "), delta("quick "), delta("fox"),
	}}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	if err := waitDone(t, c, "go"); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	assistant := msgs[1]
	if assistant.Role != model.RoleAssistant {
		t.Fatalf("Expected assistant message, got %s", assistant.Role)
	}
	if assistant.DisplayContent() != "The quick fox" {
		t.Errorf("Expected 'The quick fox', got '%s'", assistant.DisplayContent())
	}
	if assistant.IsStreaming {
		t.Error("Assistant message must be finalized after completion")
	}
}

func TestSubmit_RejectsOverlap(t *testing.T) {
	hold := make(chan struct{})
	streamer := &scriptedStreamer{
		events:    []api.StreamEvent{delta("x")},
		holdAfter: 1,
		hold:      hold,
	}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })
	if err := c.Submit(context.Background(), "first", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Wait for the stream to be in flight before overlapping.
	deadline := time.After(5 * time.Second)
	for !c.IsStreaming() {
		select {
		case <-deadline:
			t.Fatal("Stream never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := c.Submit(context.Background(), "second", nil); err != ErrStreamInProgress {
		t.Errorf("Expected ErrStreamInProgress, got %v", err)
	}

	close(hold)
	<-done
}

func TestCanvasEvents_RoutedToSink(t *testing.T) {
	streamer := &scriptedStreamer{events: []api.StreamEvent{
		delta("I made "),
		{Kind: api.EventCanvasID, Content: "doc1"},
		{Kind: api.EventCanvasTitle, Content: "Notes"},
		{Kind: api.EventCanvasClear},
		{Kind: api.EventCanvasDelta, Content: "Hel"},
		delta("a doc."),
		{Kind: api.EventCanvasDelta, Content: "lo"},
		{Kind: api.EventCanvasFinish},
	}}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	var mu sync.Mutex
	var canvas []api.StreamEvent
	c.SetCanvasSink(func(ev api.StreamEvent) {
		mu.Lock()
		canvas = append(canvas, ev)
		mu.Unlock()
	})

	waitDone(t, c, "make a doc")

	mu.Lock()
	defer mu.Unlock()
	if len(canvas) != 6 {
		t.Fatalf("Expected 6 canvas events, got %d", len(canvas))
	}
	wantKinds := []api.EventKind{
		api.EventCanvasID, api.EventCanvasTitle, api.EventCanvasClear,
		api.EventCanvasDelta, api.EventCanvasDelta, api.EventCanvasFinish,
	}
	for i, kind := range wantKinds {
		if canvas[i].Kind != kind {
			t.Errorf("Canvas event %d: expected %s, got %s", i, kind, canvas[i].Kind)
		}
	}

	// Message channel unaffected by interleaved canvas events
	msgs := c.Messages()
	if got := msgs[len(msgs)-1].DisplayContent(); got != "I made a doc." {
		t.Errorf("Expected 'I made a doc.', got '%s'", got)
	}

	// Completed tool call marks the assistant message
	if msgs[len(msgs)-1].ToolCall != model.ToolCallComplete {
		t.Errorf("Expected complete tool call, got '%s'", msgs[len(msgs)-1].ToolCall)
	}
}

func TestStop_KeepsPartialContent(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	streamer := &scriptedStreamer{
		events:    []api.StreamEvent{delta("partial answer")},
		holdAfter: 1,
		hold:      hold,
	}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })
	if err := c.Submit(context.Background(), "q", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Wait until the delta has been applied
	deadline := time.After(5 * time.Second)
	for {
		msgs := c.Messages()
		if len(msgs) == 2 && msgs[1].DisplayContent() == "partial answer" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Delta never applied")
		case <-time.After(time.Millisecond):
		}
	}

	c.Stop()
	err := <-done
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected partial message kept, got %d messages", len(msgs))
	}
	if msgs[1].DisplayContent() != "partial answer" {
		t.Errorf("Partial content lost: '%s'", msgs[1].DisplayContent())
	}
	if msgs[1].IsStreaming {
		t.Error("Cancelled message must be finalized")
	}
}

func TestStop_SanitizesEmptyAssistant(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	streamer := &scriptedStreamer{
		// Tool call opened, no message content: sanitize should drop it
		events: []api.StreamEvent{
			{Kind: api.EventCanvasID, Content: "doc1"},
			{Kind: api.EventCanvasDelta, Content: "Hel"},
		},
		holdAfter: 2,
		hold:      hold,
	}
	c := NewConsumer(streamer, "chat1", "gpt-test")
	c.SetCanvasSink(func(api.StreamEvent) {})

	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })
	if err := c.Submit(context.Background(), "q", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for len(c.Messages()) < 2 {
		select {
		case <-deadline:
			t.Fatal("Assistant placeholder never created")
		case <-time.After(time.Millisecond):
		}
	}

	c.Stop()
	<-done

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected empty assistant message dropped, got %d messages", len(msgs))
	}
	if msgs[0].Role != model.RoleUser {
		t.Errorf("User message must survive sanitize, got %s", msgs[0].Role)
	}
}

func TestStop_KeepAllPolicy(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	streamer := &scriptedStreamer{
		events:    []api.StreamEvent{{Kind: api.EventCanvasID, Content: "doc1"}},
		holdAfter: 1,
		hold:      hold,
	}
	c := NewConsumer(streamer, "chat1", "gpt-test")
	c.SetCanvasSink(func(api.StreamEvent) {})
	c.SetSanitizePolicy(KeepAll)

	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })
	c.Submit(context.Background(), "q", nil)

	deadline := time.After(5 * time.Second)
	for len(c.Messages()) < 2 {
		select {
		case <-deadline:
			t.Fatal("Assistant placeholder never created")
		case <-time.After(time.Millisecond):
		}
	}

	c.Stop()
	<-done

	if len(c.Messages()) != 2 {
		t.Errorf("KeepAll policy must preserve the empty assistant message")
	}
}

func TestStop_Idempotent(t *testing.T) {
	c := NewConsumer(&scriptedStreamer{}, "chat1", "gpt-test")
	c.Stop()
	c.Stop() // No stream active, must not panic
}

func TestSetHistory_RejectedWhileStreaming(t *testing.T) {
	hold := make(chan struct{})
	streamer := &scriptedStreamer{
		events:    []api.StreamEvent{delta("x")},
		holdAfter: 1,
		hold:      hold,
	}
	c := NewConsumer(streamer, "chat1", "gpt-test")

	done := make(chan error, 1)
	c.OnDone(func(err error) { done <- err })
	c.Submit(context.Background(), "q", nil)

	deadline := time.After(5 * time.Second)
	for !c.IsStreaming() {
		select {
		case <-deadline:
			t.Fatal("Stream never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := c.SetHistory(nil); err != ErrStreamInProgress {
		t.Errorf("Expected ErrStreamInProgress, got %v", err)
	}

	close(hold)
	<-done

	if err := c.SetHistory(nil); err != nil {
		t.Errorf("SetHistory after stream should succeed: %v", err)
	}
}
