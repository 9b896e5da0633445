// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP + SSE client for the Meridian service.
//
// This file handles the turn streaming endpoint: SSE framing, the typed
// event union, and the channel-based stream reader.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// MaxFrameSize is the maximum allowed size for a single SSE frame.
const MaxFrameSize = 64 * 1024

// SSE event names the client acts on. Any other name is carried through as
// EventUnknown and ignored by consumers.
const (
	eventBlockStart   = "block_start"
	eventBlockDelta   = "block_delta"
	eventTurnComplete = "turn_complete"
)

// Delta types within a block_delta event. The set is open; unrecognized
// delta types never abort the stream.
const (
	DeltaText      = "text_delta"
	DeltaThinking  = "thinking_delta"
	DeltaInputJSON = "input_json_delta"
)

// =============================================================================
// STREAM EVENT UNION
// =============================================================================

// EventKind discriminates the StreamEvent union.
type EventKind int

const (
	// EventUnknown is any event name the client does not recognize.
	EventUnknown EventKind = iota
	// EventBlockStart begins a new content block.
	EventBlockStart
	// EventBlockDelta appends content to the open block.
	EventBlockDelta
	// EventTurnComplete marks the logical end of assistant output.
	EventTurnComplete
)

// BlockStart is the payload of a block_start event.
type BlockStart struct {
	BlockType string `json:"block_type"`
}

// BlockDelta is the payload of a block_delta event. BlockType is optional;
// some servers set it on deltas instead of emitting an explicit block_start.
type BlockDelta struct {
	DeltaType      string `json:"delta_type"`
	BlockType      string `json:"block_type,omitempty"`
	TextDelta      string `json:"text_delta,omitempty"`
	InputJSONDelta string `json:"input_json_delta,omitempty"`
}

// TurnComplete is the payload of a turn_complete event.
type TurnComplete struct {
	TurnID       string `json:"turn_id"`
	StopReason   string `json:"stop_reason"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// StreamEvent is one typed event from a turn stream. Exactly one payload
// pointer is set for the recognized kinds; Err is set instead when the
// transport fails mid-stream, after which the channel closes.
type StreamEvent struct {
	Kind         EventKind
	Name         string // raw SSE event name
	BlockStart   *BlockStart
	BlockDelta   *BlockDelta
	TurnComplete *TurnComplete
	Err          error
}

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses Server-Sent Events frames from a stream. A frame is one
// or more field lines terminated by a blank line; multiple data: lines are
// joined with newlines before the payload is parsed.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// readFrame reads the next SSE frame, returning the event name and the
// joined data payload. Returns io.EOF when the stream ends.
func (s *sseReader) readFrame() (string, []byte, error) {
	var eventName string
	var dataLines [][]byte
	var frameSize int

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				return eventName, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}

		frameSize += len(line)
		if frameSize > MaxFrameSize {
			return "", nil, fmt.Errorf("SSE frame too large: %d bytes", frameSize)
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates the frame.
		if len(line) == 0 {
			if eventName != "" || len(dataLines) > 0 {
				return eventName, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventName = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Other fields (id:, retry:, comments) are ignored.
	}
}

// =============================================================================
// STREAMING TURNS
// =============================================================================

// StreamTurn opens the SSE stream for a turn and returns a channel of typed
// events. GET /api/turns/{turn_id}/stream.
//
// The channel closes when the server ends the response, the context is
// cancelled, or the transport fails; a transport failure is delivered as a
// final event with Err set. Malformed frames are dropped with a logged
// warning and the stream continues.
//
// The returned cancel function releases the connection; callers must invoke
// it once done.
func (c *Client) StreamTurn(ctx context.Context, turnID string) (<-chan StreamEvent, context.CancelFunc, error) {
	streamCtx, cancel := context.WithTimeout(ctx, c.streamTimeout)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.baseURL+"/api/turns/"+turnID+"/stream", nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if err := c.limiter.Wait(streamCtx); err != nil {
		cancel()
		return nil, nil, err
	}

	log.Printf("API Request: GET /api/turns/%s/stream (SSE)", turnID)
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("stream request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		resp.Body.Close()
		cancel()
		return nil, nil, handleErrorResponse(resp.StatusCode, body)
	}

	events := make(chan StreamEvent, 64)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		reader := newSSEReader(resp.Body)
		for {
			name, data, err := reader.readFrame()
			if err != nil {
				if err == io.EOF {
					log.Printf("SSE stream ended for turn %s", turnID)
					return
				}
				// Context cancellation surfaces as a read error on the
				// aborted connection; report it as-is.
				select {
				case events <- StreamEvent{Err: err}:
				case <-streamCtx.Done():
				}
				return
			}

			event, ok := parseStreamEvent(name, data)
			if !ok {
				continue // malformed frame, already logged
			}

			select {
			case events <- event:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	return events, cancel, nil
}

// parseStreamEvent decodes one SSE frame into the typed union. Returns
// ok=false for frames whose JSON payload does not parse.
func parseStreamEvent(name string, data []byte) (StreamEvent, bool) {
	event := StreamEvent{Name: name}

	switch name {
	case eventBlockStart:
		var payload BlockStart
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("SSE malformed %s frame dropped: %v", name, err)
			return event, false
		}
		event.Kind = EventBlockStart
		event.BlockStart = &payload

	case eventBlockDelta:
		var payload BlockDelta
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("SSE malformed %s frame dropped: %v", name, err)
			return event, false
		}
		event.Kind = EventBlockDelta
		event.BlockDelta = &payload

	case eventTurnComplete:
		var payload TurnComplete
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("SSE malformed %s frame dropped: %v", name, err)
			return event, false
		}
		event.Kind = EventTurnComplete
		event.TurnComplete = &payload

	default:
		// Unrecognized event names are tolerated and passed through for
		// consumers to ignore.
		event.Kind = EventUnknown
	}

	return event, true
}
