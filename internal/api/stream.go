// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the inkwell chat backend.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// STREAMING: SSE parsing for interleaved content deltas and canvas events

// MaxChunkSize is the maximum allowed size for a single SSE chunk (64KB)
const MaxChunkSize = 64 * 1024

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// EventKind discriminates the events on the generation stream. Message
// content deltas and side-channel canvas events share one wire stream but
// are logically separate sequences.
type EventKind string

const (
	// EventMessageDelta extends the assistant message content.
	EventMessageDelta EventKind = "message-delta"

	// EventCanvasID binds the canvas panel to a document and opens it.
	EventCanvasID EventKind = "id"
	// EventCanvasTitle sets the canvas document title.
	EventCanvasTitle EventKind = "title"
	// EventCanvasClear resets the canvas content for a fresh capture.
	EventCanvasClear EventKind = "clear"
	// EventCanvasDelta appends to the canvas content.
	EventCanvasDelta EventKind = "text-delta"
	// EventCanvasFinish marks the end of the canvas tool call.
	EventCanvasFinish EventKind = "finish"
)

// StreamEvent is a single parsed event from the generation stream.
type StreamEvent struct {
	Kind    EventKind `json:"type"`
	Content string    `json:"content"`
	Error   error     `json:"-"` // Set for channel-based streaming failures
}

// IsCanvas reports whether the event belongs to the canvas side channel
// rather than the chat message content.
func (e StreamEvent) IsCanvas() bool {
	switch e.Kind {
	case EventCanvasID, EventCanvasTitle, EventCanvasClear, EventCanvasDelta, EventCanvasFinish:
		return true
	}
	return false
}

// StreamCallback is called for each event received, in arrival order.
type StreamCallback func(event StreamEvent)

// =============================================================================
// STREAM REQUEST
// =============================================================================

// WireMessage is the message shape sent to the generation endpoint.
type WireMessage struct {
	ID          string             `json:"id"`
	Role        string             `json:"role"`
	Content     string             `json:"content"`
	Attachments []model.Attachment `json:"experimental_attachments,omitempty"`
}

// StreamRequest is the body for /generate-chat-stream.
type StreamRequest struct {
	ID       string        `json:"id"`
	ModelID  string        `json:"modelId"`
	Messages []WireMessage `json:"messages"`
}

// NewStreamRequest builds a generation request from the full running
// message history.
func NewStreamRequest(chatID, modelID string, messages []*model.Message) StreamRequest {
	wire := make([]WireMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, WireMessage{
			ID:          m.ID,
			Role:        m.Role.String(),
			Content:     m.DisplayContent(),
			Attachments: m.Attachments,
		})
	}
	return StreamRequest{ID: chatID, ModelID: modelID, Messages: wire}
}

// =============================================================================
// STREAM ERROR
// =============================================================================

// StreamError represents an error that occurred during streaming,
// preserving any partial content received before the error.
type StreamError struct {
	Partial string // Content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, data, and any error.
// Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	var total int

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// If we have data, return it before EOF
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		total += len(line)
		if total > MaxChunkSize {
			return "", nil, fmt.Errorf("chunk too large: %d bytes", total)
		}

		// Trim trailing newline and carriage return
		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		// Parse field
		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			data := bytes.TrimSpace(line[5:])
			dataLines = append(dataLines, data)
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream opens a streamed generation bound to the given message history.
// The callback is invoked for each event in arrival order: message deltas
// and canvas side-channel events interleaved as the backend emits them.
// Supports context cancellation; a cancelled stream returns ctx.Err().
func (c *Client) ChatStream(ctx context.Context, req StreamRequest, callback StreamCallback) error {
	endpoint := c.baseURL + "/generate-chat-stream"

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Connection", "keep-alive")

	// PERFORMANCE: Shared streaming client with connection pooling
	// (timeout handled via context)
	resp, err := c.streaming.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	return c.processStream(ctx, resp.Body, callback)
}

// processStream reads and processes the SSE stream.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		// Check for [DONE] signal
		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		// Parse the event
		var event StreamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Skip malformed events
			continue
		}

		callback(event)
	}
}

// =============================================================================
// CHANNEL-BASED STREAMING
// =============================================================================

// ChatStreamChan performs a streaming generation and returns a channel of
// events. The channel is closed when streaming completes or fails; failures
// are delivered on the error channel.
func (c *Client) ChatStreamChan(ctx context.Context, req StreamRequest) (<-chan StreamEvent, <-chan error) {
	eventChan := make(chan StreamEvent, 64)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		err := c.ChatStream(ctx, req, func(event StreamEvent) {
			select {
			case eventChan <- event:
			case <-ctx.Done():
			}
		})

		if err != nil {
			select {
			case errChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	return eventChan, errChan
}
