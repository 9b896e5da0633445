// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/model"
)

// =============================================================================
// OUTCOMES
// =============================================================================

// Outcome is the terminal result of one navigation attempt.
type Outcome int

const (
	// OutcomeCommitted means the fetch succeeded and the displayed turn
	// and navigation state were replaced together.
	OutcomeCommitted Outcome = iota

	// OutcomeCancelled means the attempt was superseded by a later
	// navigation or its context was cancelled. Nothing was mutated and
	// the result must be discarded. Not an error.
	OutcomeCancelled

	// OutcomeFailed means the fetch failed. The previously displayed
	// turn remains current; the error is transient, never fatal.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result carries one navigation attempt's outcome. Current and Page are
// set only when Outcome is OutcomeCommitted and the chat is non-empty;
// Err only when OutcomeFailed.
type Result struct {
	Outcome Outcome
	Current *model.Turn
	Page    *model.TurnPage
	State   State
	Err     error
}

// Empty reports whether a committed result landed on a chat with no turns.
func (r Result) Empty() bool {
	return r.Outcome == OutcomeCommitted && r.Current == nil
}

// =============================================================================
// CONTROLLER
// =============================================================================

// TurnFetcher is the one remote call the controller needs. *api.Client
// satisfies it.
type TurnFetcher interface {
	GetTurns(ctx context.Context, chatID string, q api.TurnQuery) (*model.TurnPage, error)
}

// Controller owns the displayed (turn, state) pair for one chat and the
// single in-flight navigation that may replace it. All mutation happens
// in the commit step, reached by at most one non-superseded attempt at
// a time.
type Controller struct {
	fetcher TurnFetcher
	chatID  string

	mu      sync.Mutex
	seq     uint64             // bumped per attempt; only the latest may commit
	cancel  context.CancelFunc // aborts the in-flight fetch
	done    chan struct{}      // closed when the in-flight attempt settles
	current *model.Turn
	state   State
}

// NewController returns a controller for one chat's turn tree.
func NewController(fetcher TurnFetcher, chatID string) *Controller {
	return &Controller{fetcher: fetcher, chatID: chatID}
}

// Current returns the displayed turn, nil before the initial load or for
// an empty chat.
func (c *Controller) Current() *model.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// State returns the navigation state for the displayed turn.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NavigateTo fetches turnID's page (the turn plus its children) and, on
// success, commits it as the displayed turn. Blocks until the attempt
// settles; safe to call from concurrent goroutines, in which case only
// the most recently issued call may commit.
func (c *Controller) NavigateTo(ctx context.Context, turnID string) Result {
	return c.navigate(ctx, api.TurnQuery{
		FromTurnID: turnID,
		Limit:      1,
		Direction:  api.DirectionAfter,
	})
}

// LoadInitial is the degenerate navigation performed on chat open: fetch
// the chat's first turn with no anchor. An empty chat commits an explicit
// empty state with every direction disabled.
func (c *Controller) LoadInitial(ctx context.Context) Result {
	return c.navigate(ctx, api.TurnQuery{Limit: 1, Direction: api.DirectionAfter})
}

func (c *Controller) navigate(ctx context.Context, q api.TurnQuery) Result {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	prev := c.done

	c.seq++
	seq := c.seq
	attemptCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	defer cancel()
	defer close(done)

	// The superseded attempt must settle before we fetch, so two attempts
	// never interleave their commit steps.
	if prev != nil {
		<-prev
	}

	page, err := c.fetcher.GetTurns(attemptCtx, c.chatID, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		// Superseded while in flight. Whatever the fetch produced, a later
		// navigation owns the display now.
		return Result{Outcome: OutcomeCancelled}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{Outcome: OutcomeCancelled}
		}
		log.Printf("Navigation failed (from_turn_id=%q): %v", q.FromTurnID, err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	if page.IsEmpty() {
		c.current = nil
		c.state = State{}
		return Result{Outcome: OutcomeCommitted, Page: page}
	}

	current := page.Anchor()
	state := NewState(current, page)
	c.current = current
	c.state = state
	return Result{Outcome: OutcomeCommitted, Current: current, Page: page, State: state}
}
