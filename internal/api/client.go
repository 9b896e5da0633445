// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP + SSE client for the Meridian service.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/haowjy/meridian-tui/internal/model"
)

// Configuration constants for the Meridian API.
const (
	// DefaultTimeout bounds ordinary (non-streaming) requests.
	DefaultTimeout = 30 * time.Second

	// DefaultStreamTimeout bounds a whole SSE stream; generation latency is
	// measured in minutes, not seconds.
	DefaultStreamTimeout = 5 * time.Minute

	// DefaultMaxRetries is the retry budget for idempotent requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// defaultRequestsPerSecond is the client-side rate limit; key repeat on
	// navigation can otherwise hammer the turns endpoint.
	defaultRequestsPerSecond = 20
)

var (
	// sharedHTTPClient is used for all ordinary requests. No client timeout;
	// each request carries its own context deadline (see requestContext).
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	// sharedStreamingClient is used for SSE requests. No client timeout;
	// streams are bounded by their context deadline.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// Sentinel errors for conditions callers branch on.
var (
	// ErrRateLimited indicates the server rejected the request with HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-2xx response from the Meridian service.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("meridian API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("meridian API error (HTTP %d)", e.Status)
}

// apiErrorResponse is the error envelope the server renders on failure.
type apiErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a typed client for the Meridian HTTP API.
type Client struct {
	baseURL        string
	maxRetries     int
	requestTimeout time.Duration
	streamTimeout  time.Duration
	limiter        *rate.Limiter
	sessionID      string
	userAgent      string
}

// NewClient creates a client for the service at baseURL. The session id is
// sent with every request so server logs can correlate one TUI session.
func NewClient(baseURL, sessionID string) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		maxRetries:     DefaultMaxRetries,
		requestTimeout: DefaultTimeout,
		streamTimeout:  DefaultStreamTimeout,
		limiter:        rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		sessionID:      sessionID,
		userAgent:      "meridian-tui/0.1.0",
	}
}

// WithMaxRetries sets the retry budget for idempotent requests.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithRequestTimeout sets the deadline for ordinary (non-streaming)
// requests. The retry budget for a request shares this deadline.
func (c *Client) WithRequestTimeout(d time.Duration) *Client {
	c.requestTimeout = d
	return c
}

// WithStreamTimeout sets the per-stream context deadline.
func (c *Client) WithStreamTimeout(d time.Duration) *Client {
	c.streamTimeout = d
	return c
}

// WithRateLimit replaces the client-side request rate limit.
func (c *Client) WithRateLimit(perSecond float64) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	return c
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setHeaders sets the headers common to every request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.sessionID != "" {
		req.Header.Set("X-Client-Session", c.sessionID)
	}
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

// Projects fetches all projects. GET /api/projects.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.getJSON(ctx, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a new project. POST /api/projects.
func (c *Client) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	var project model.Project
	body := map[string]string{"name": name}
	if err := c.postJSON(ctx, "/api/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// Chats fetches all chats for a project. GET /api/chats?project_id=.
func (c *Client) Chats(ctx context.Context, projectID string) ([]model.Chat, error) {
	query := url.Values{"project_id": {projectID}}
	var chats []model.Chat
	if err := c.getJSON(ctx, "/api/chats", query, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a new chat in a project. POST /api/chats.
func (c *Client) CreateChat(ctx context.Context, projectID, title string) (*model.Chat, error) {
	var chat model.Chat
	body := map[string]string{"project_id": projectID, "title": title}
	if err := c.postJSON(ctx, "/api/chats", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// =============================================================================
// TURN ENDPOINTS
// =============================================================================

// Direction selects which side of the anchor a turns page covers.
type Direction string

const (
	DirectionAfter  Direction = "after"
	DirectionBefore Direction = "before"
)

// TurnQuery describes one paginated turns fetch. A zero FromTurnID anchors
// the page at the first turn of the chat.
type TurnQuery struct {
	FromTurnID string
	Limit      int
	Direction  Direction
}

// GetTurns fetches one anchored page of turns.
// GET /api/chats/{chat_id}/turns?limit=&direction=&from_turn_id=.
func (c *Client) GetTurns(ctx context.Context, chatID string, q TurnQuery) (*model.TurnPage, error) {
	if q.Limit <= 0 {
		q.Limit = 1
	}
	if q.Direction == "" {
		q.Direction = DirectionAfter
	}
	query := url.Values{
		"limit":     {strconv.Itoa(q.Limit)},
		"direction": {string(q.Direction)},
	}
	if q.FromTurnID != "" {
		query.Set("from_turn_id", q.FromTurnID)
	}

	var page model.TurnPage
	if err := c.getJSON(ctx, "/api/chats/"+chatID+"/turns", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NewTurnBlock is one content block of a turn being created.
type NewTurnBlock struct {
	BlockType   string `json:"block_type"`
	TextContent string `json:"text_content"`
}

// CreateTurnRequest is the body of POST /api/chats/{chat_id}/turns.
type CreateTurnRequest struct {
	PrevTurnID    *string             `json:"prev_turn_id"`
	Role          model.Role          `json:"role"`
	TurnBlocks    []NewTurnBlock      `json:"turn_blocks"`
	RequestParams model.RequestParams `json:"request_params"`
}

// CreateTurnResponse carries the created user turn, the assistant turn the
// server will stream into, and the stream URL for it.
type CreateTurnResponse struct {
	UserTurn      model.Turn `json:"user_turn"`
	AssistantTurn model.Turn `json:"assistant_turn"`
	StreamURL     string     `json:"stream_url"`
}

// CreateTurn submits a user message. The server creates both the user turn
// and a pending assistant turn in one call.
func (c *Client) CreateTurn(ctx context.Context, chatID string, prevTurnID *string, content string, params model.RequestParams) (*CreateTurnResponse, error) {
	body := CreateTurnRequest{
		PrevTurnID:    prevTurnID,
		Role:          model.RoleUser,
		TurnBlocks:    []NewTurnBlock{{BlockType: model.BlockText, TextContent: content}},
		RequestParams: params,
	}
	var resp CreateTurnResponse
	if err := c.postJSON(ctx, "/api/chats/"+chatID+"/turns", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InterruptTurn asks the server to stop generating a turn.
// POST /api/turns/{turn_id}/interrupt. Idempotent from the client's side.
func (c *Client) InterruptTurn(ctx context.Context, turnID string) error {
	return c.postJSON(ctx, "/api/turns/"+turnID+"/interrupt", nil, nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// requestContext derives the per-request deadline for ordinary requests.
// The shared http.Client carries no timeout of its own.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// getJSON performs a GET with retries and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// postJSON performs a single POST (no retries; creation is not idempotent)
// and decodes the JSON response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if in != nil {
		bodyBytes, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	log.Printf("API Request: POST %s", path)
	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleErrorResponse(resp.StatusCode, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// doWithRetry performs an idempotent request with exponential backoff.
// Retries on transport errors and 5xx; never on 4xx or context cancellation.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		reqCopy := req.Clone(ctx)
		log.Printf("API Request: %s %s", reqCopy.Method, reqCopy.URL.Path)
		start := time.Now()
		resp, err := sharedHTTPClient.Do(reqCopy)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = err
			continue
		}
		log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, time.Since(start))

		if resp.StatusCode < 500 {
			return resp, nil
		}
		body, _ := readResponse(resp)
		resp.Body.Close()
		lastErr = handleErrorResponse(resp.StatusCode, body)
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-2xx response into a Go error.
func handleErrorResponse(statusCode int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		message = apiErr.Error
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return &APIError{Status: statusCode, Message: message}
	}
}

// calculateBackoff returns the delay before retry number attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
