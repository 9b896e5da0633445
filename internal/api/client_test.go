// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haowjy/meridian-tui/internal/model"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "test-session").WithRateLimit(1000)
}

// =============================================================================
// PROJECT / CHAT ENDPOINT TESTS
// =============================================================================

func TestClient_Projects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "test-session", r.Header.Get("X-Client-Session"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1","name":"alpha"},{"id":"p2","name":"beta"}]`))
	}))
	defer server.Close()

	projects, err := newTestClient(server.URL).Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
}

func TestClient_CreateChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chats", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["project_id"])
		assert.Equal(t, "my chat", body["title"])

		w.Write([]byte(`{"id":"c1","title":"my chat","project_id":"p1"}`))
	}))
	defer server.Close()

	chat, err := newTestClient(server.URL).CreateChat(context.Background(), "p1", "my chat")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
}

// =============================================================================
// TURN ENDPOINT TESTS
// =============================================================================

func TestClient_GetTurns_QueryParams(t *testing.T) {
	tests := []struct {
		name       string
		query      TurnQuery
		wantParams map[string]string
	}{
		{
			name:       "anchored fetch",
			query:      TurnQuery{FromTurnID: "t9", Limit: 1, Direction: DirectionAfter},
			wantParams: map[string]string{"from_turn_id": "t9", "limit": "1", "direction": "after"},
		},
		{
			name:       "initial load has no anchor",
			query:      TurnQuery{},
			wantParams: map[string]string{"limit": "1", "direction": "after"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/chats/c1/turns", r.URL.Path)
				for k, v := range tc.wantParams {
					assert.Equal(t, v, r.URL.Query().Get(k), "param %s", k)
				}
				if _, anchored := tc.wantParams["from_turn_id"]; !anchored {
					assert.Empty(t, r.URL.Query().Get("from_turn_id"))
				}
				w.Write([]byte(`{"turns":[],"has_more_before":false,"has_more_after":false}`))
			}))
			defer server.Close()

			page, err := newTestClient(server.URL).GetTurns(context.Background(), "c1", tc.query)
			require.NoError(t, err)
			assert.True(t, page.IsEmpty())
		})
	}
}

func TestClient_CreateTurn_BodyShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body CreateTurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		require.NotNil(t, body.PrevTurnID)
		assert.Equal(t, "t1", *body.PrevTurnID)
		assert.Equal(t, model.RoleUser, body.Role)
		require.Len(t, body.TurnBlocks, 1)
		assert.Equal(t, model.BlockText, body.TurnBlocks[0].BlockType)
		assert.Equal(t, "hello", body.TurnBlocks[0].TextContent)
		assert.Equal(t, "anthropic", body.RequestParams.Provider)

		w.Write([]byte(`{
			"user_turn": {"id":"u1","chat_id":"c1","role":"user","status":"completed"},
			"assistant_turn": {"id":"a1","chat_id":"c1","role":"assistant","status":"pending"},
			"stream_url": "/api/turns/a1/stream"
		}`))
	}))
	defer server.Close()

	prev := "t1"
	resp, err := newTestClient(server.URL).CreateTurn(
		context.Background(), "c1", &prev, "hello", model.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.UserTurn.ID)
	assert.Equal(t, "a1", resp.AssistantTurn.ID)
	assert.Equal(t, "/api/turns/a1/stream", resp.StreamURL)
}

func TestClient_InterruptTurn(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/turns/a1/interrupt", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).InterruptTurn(context.Background(), "a1"))
	assert.True(t, called.Load())
}

// =============================================================================
// ERROR HANDLING TESTS
// =============================================================================

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantIs   error
		wantText string
	}{
		{"not found", http.StatusNotFound, `{"error":"no such chat"}`, ErrNotFound, "no such chat"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, ErrRateLimited, "slow down"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Chats(context.Background(), "p1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantIs), "want errors.Is(%v)", tc.wantIs)
			assert.Contains(t, err.Error(), tc.wantText)
		})
	}
}

func TestClient_BadRequestIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"title required"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateChat(context.Background(), "p1", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "title required", apiErr.Message)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Projects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"gone"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Projects(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RequestTimeoutApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	short := newTestClient(server.URL).WithMaxRetries(1).WithRequestTimeout(50 * time.Millisecond)
	_, err := short.Projects(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "want deadline exceeded, got %v", err)

	generous := newTestClient(server.URL).WithMaxRetries(1).WithRequestTimeout(2 * time.Second)
	_, err = generous.Projects(context.Background())
	require.NoError(t, err)
}
