// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/haowjy/meridian-tui/internal/api"
)

// =============================================================================
// PHASES AND RESULTS
// =============================================================================

// Phase is the consumer's position in its lifecycle. Exactly one of the
// three terminal phases is reached per stream.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseStreaming
	PhaseCompleted
	PhaseCancelled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseStreaming:
		return "streaming"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the consumer's terminal outcome. TurnID is the assistant
// turn to re-fetch on completion; it is empty on cancellation and
// failure. Err is set only when Phase is PhaseFailed.
type Result struct {
	Phase  Phase
	TurnID string
	Err    error
}

const (
	// errorGracePeriod keeps an inline stream error visible before the
	// consumer signals completion, so the operator can read it.
	errorGracePeriod = 3 * time.Second

	// emptyStreamPause holds an empty-response warning on screen before
	// finishing; a stream that closes with zero events shouldn't vanish
	// silently.
	emptyStreamPause = 1500 * time.Millisecond

	// interruptTimeout bounds the best-effort interrupt call issued on
	// operator cancel.
	interruptTimeout = 5 * time.Second
)

// =============================================================================
// CONSUMER
// =============================================================================

// StreamClient is the slice of the API client the consumer uses.
// *api.Client satisfies it.
type StreamClient interface {
	StreamTurn(ctx context.Context, turnID string) (<-chan api.StreamEvent, context.CancelFunc, error)
	InterruptTurn(ctx context.Context, turnID string) error
}

// Consumer drives one assistant turn's event stream into a Transcript.
// Run blocks until a terminal phase; Cancel may be called from another
// goroutine at any point and wins over any event still in flight.
type Consumer struct {
	client     StreamClient
	turnID     string
	transcript *Transcript

	mu           sync.Mutex
	phase        Phase
	cancelStream context.CancelFunc
	cancelled    bool

	errorGrace time.Duration
	emptyPause time.Duration
}

// NewConsumer prepares a consumer for one assistant turn. The transcript
// is readable immediately; it fills once Run starts.
func NewConsumer(client StreamClient, turnID string) *Consumer {
	return &Consumer{
		client:     client,
		turnID:     turnID,
		transcript: NewTranscript(),
		phase:      PhaseConnecting,
		errorGrace: errorGracePeriod,
		emptyPause: emptyStreamPause,
	}
}

// Transcript returns the live transcript for rendering.
func (c *Consumer) Transcript() *Transcript {
	return c.transcript
}

// Phase returns the consumer's current phase.
func (c *Consumer) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Run connects and consumes the stream to a terminal phase. It never
// returns a bare error: failures are rendered inline, held for a grace
// period, and folded into the Result.
func (c *Consumer) Run(ctx context.Context) Result {
	events, cancelStream, err := c.client.StreamTurn(ctx, c.turnID)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("stream connect: %w", err))
	}

	c.mu.Lock()
	if c.cancelled {
		// Cancel raced the connect; tear down before consuming anything.
		c.mu.Unlock()
		cancelStream()
		return Result{Phase: PhaseCancelled}
	}
	c.cancelStream = cancelStream
	c.phase = PhaseStreaming
	c.mu.Unlock()
	defer cancelStream()

	for ev := range events {
		if c.isCancelled() {
			// Buffered events after a cancel are drained but never rendered.
			continue
		}
		if ev.Err != nil {
			return c.fail(ctx, ev.Err)
		}
		c.transcript.Apply(ev)
		if ev.Kind == api.EventTurnComplete {
			log.Printf("Stream %s: turn_complete (stop_reason=%s)", c.turnID, ev.TurnComplete.StopReason)
		}
	}

	if c.isCancelled() {
		return Result{Phase: PhaseCancelled}
	}

	if c.transcript.EventCount() == 0 {
		log.Printf("WARNING: stream %s closed with zero events", c.turnID)
		c.transcript.AppendNotice("warning: the server returned an empty response")
		c.pause(ctx, c.emptyPause)
	}

	c.setPhase(PhaseCompleted)
	return Result{Phase: PhaseCompleted, TurnID: c.turnID}
}

// Cancel interrupts the stream. The transcript freezes immediately, a
// best-effort interrupt is sent to the server, and the local stream is
// torn down whatever the interrupt call returns. Run settles with
// PhaseCancelled.
func (c *Consumer) Cancel() {
	c.mu.Lock()
	if c.cancelled || c.phase > PhaseStreaming {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	c.phase = PhaseCancelled
	cancelStream := c.cancelStream
	c.mu.Unlock()

	c.transcript.Freeze()

	ctx, cancel := context.WithTimeout(context.Background(), interruptTimeout)
	defer cancel()
	if err := c.client.InterruptTurn(ctx, c.turnID); err != nil {
		log.Printf("Interrupt for turn %s failed (stream torn down regardless): %v", c.turnID, err)
	}

	if cancelStream != nil {
		cancelStream()
	}
}

func (c *Consumer) fail(ctx context.Context, err error) Result {
	if c.isCancelled() {
		// An abort provoked by our own cancel is not a failure.
		return Result{Phase: PhaseCancelled}
	}
	log.Printf("Stream %s failed: %v", c.turnID, err)
	c.transcript.AppendNotice(fmt.Sprintf("error: %v", err))
	c.pause(ctx, c.errorGrace)
	c.setPhase(PhaseFailed)
	return Result{Phase: PhaseFailed, Err: err}
}

func (c *Consumer) pause(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (c *Consumer) isCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

func (c *Consumer) setPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase <= PhaseStreaming {
		c.phase = p
	}
}
