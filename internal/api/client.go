// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the inkwell chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for all request/response endpoints.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests
	// (no timeout, cancellation is context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
)

// Error variables for common backend errors.
var (
	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// BackendError represents an error response from the backend.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (%d)", e.Status)
}

// Is allows BackendError to match sentinel errors.
func (e *BackendError) Is(target error) bool {
	if target == ErrNotFound {
		return e.Status == http.StatusNotFound
	}
	return false
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the inkwell backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	streaming  *http.Client
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: sharedHTTPClient,
		streaming:  sharedStreamingClient,
	}
}

// WithTimeout overrides the request timeout for non-streaming calls.
// Returns the client for chaining.
func (c *Client) WithTimeout(d time.Duration) *Client {
	// Copy the shared client rather than mutating it.
	hc := *c.httpClient
	hc.Timeout = d
	c.httpClient = &hc
	return c
}

// BaseURL returns the configured backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// DOCUMENT API
// =============================================================================

// FetchDocuments returns the ordered snapshot sequence for a document.
// A document with no snapshots yields an empty slice, not an error.
// Snapshots are returned ordered by creation time, oldest first.
func (c *Client) FetchDocuments(ctx context.Context, documentID string) ([]model.Document, error) {
	endpoint := c.baseURL + "/document?id=" + url.QueryEscape(documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Absent data is an empty result, not an error.
		return []model.Document{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var docs []model.Document
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	// The backend should already order snapshots, but creation-time order is
	// an invariant downstream, so enforce it here.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	return docs, nil
}

// saveDocumentRequest is the wire body for document saves.
type saveDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SaveDocument appends a new snapshot for a document and returns it.
func (c *Client) SaveDocument(ctx context.Context, documentID, title, content string) (*model.Document, error) {
	endpoint := c.baseURL + "/document?id=" + url.QueryEscape(documentID)

	body, err := json.Marshal(saveDocumentRequest{Title: title, Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.handleErrorResponse(resp)
	}

	doc := &model.Document{
		DocumentID: documentID,
		Title:      title,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	// The backend echoes the created snapshot; fall back to the local view
	// when the body is empty.
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if len(data) > 0 {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to decode saved document: %w", err)
		}
	}

	return doc, nil
}

// =============================================================================
// SUGGESTIONS API
// =============================================================================

// FetchSuggestions returns inline suggestion annotations for a document.
// Callers are expected to rate limit fetches; see versions.Store.
func (c *Client) FetchSuggestions(ctx context.Context, documentID string) ([]model.Suggestion, error) {
	endpoint := c.baseURL + "/suggestions?documentId=" + url.QueryEscape(documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []model.Suggestion{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var suggestions []model.Suggestion
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return suggestions, nil
}

// =============================================================================
// VOTES API
// =============================================================================

// FetchVotes returns the votes for a chat. Read-only display input.
func (c *Client) FetchVotes(ctx context.Context, chatID string) ([]model.Vote, error) {
	endpoint := c.baseURL + "/vote?chatId=" + url.QueryEscape(chatID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []model.Vote{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var votes []model.Vote
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&votes); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}
	return votes, nil
}

// =============================================================================
// FILE UPLOAD API
// =============================================================================

// uploadResponse is the wire shape returned by the upload endpoint.
type uploadResponse struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// UploadFile uploads a single file as multipart form data and returns the
// resulting attachment. Failures are independent per file; the caller
// decides how to surface them.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (model.Attachment, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.Attachment{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return model.Attachment{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	endpoint := c.baseURL + "/files/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Attachment{}, c.handleErrorResponse(resp)
	}

	var ur uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&ur); err != nil {
		return model.Attachment{}, fmt.Errorf("failed to decode upload response: %w", err)
	}

	name := ur.Pathname
	if name == "" {
		name = filename
	}
	return model.Attachment{
		URL:         ur.URL,
		Name:        name,
		ContentType: ur.ContentType,
	}, nil
}

// =============================================================================
// ERROR HANDLING
// =============================================================================

// errorPayload is the backend's error body shape.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleErrorResponse converts a non-OK response into a typed error.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))

	var payload errorPayload
	message := ""
	if json.Unmarshal(data, &payload) == nil {
		message = payload.Error
		if message == "" {
			message = payload.Message
		}
	}

	return &BackendError{
		Status:  resp.StatusCode,
		Message: message,
	}
}
