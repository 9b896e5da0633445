// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"log"

	"github.com/haowjy/meridian-tui/internal/model"
)

// =============================================================================
// NAVIGATION STATE
// =============================================================================

// State answers direction queries for one displayed turn. It is computed
// once per navigation commit from the turn and the page anchored on it,
// and never mutated afterwards. The zero value disables all directions,
// which is the correct state for an empty chat.
type State struct {
	current *model.Turn
	page    *model.TurnPage

	siblingIndex int
	siblingFound bool
}

// NewState computes the navigation state for current given the page
// fetched with current as anchor. A turn whose own id is missing from
// its sibling list is a server-side data integrity violation; the state
// degrades to sibling index 0 and the anomaly is logged rather than
// treated as fatal.
func NewState(current *model.Turn, page *model.TurnPage) State {
	if current == nil {
		return State{}
	}
	index, found := current.SiblingIndex()
	if !found && len(current.SiblingIDs) > 0 {
		log.Printf("WARNING: turn %s missing from its own sibling_ids (%d siblings); defaulting to index 0",
			current.ID, len(current.SiblingIDs))
	}
	return State{
		current:      current,
		page:         page,
		siblingIndex: index,
		siblingFound: found,
	}
}

// Up returns the parent turn id. Enabled iff the current turn has a
// predecessor.
func (s State) Up() (string, bool) {
	if s.current == nil || s.current.PrevTurnID == nil {
		return "", false
	}
	return *s.current.PrevTurnID, true
}

// Down returns the first child's turn id. The page's first element is the
// anchor itself, so children exist iff the page holds more than one turn.
func (s State) Down() (string, bool) {
	if s.page == nil || len(s.page.Turns) < 2 {
		return "", false
	}
	return s.page.Turns[1].ID, true
}

// Left returns the previous sibling's turn id.
func (s State) Left() (string, bool) {
	if s.current == nil || s.siblingIndex <= 0 {
		return "", false
	}
	return s.current.SiblingIDs[s.siblingIndex-1], true
}

// Right returns the next sibling's turn id.
func (s State) Right() (string, bool) {
	if s.current == nil || s.siblingIndex >= len(s.current.SiblingIDs)-1 {
		return "", false
	}
	return s.current.SiblingIDs[s.siblingIndex+1], true
}

// SiblingPosition reports the 1-based sibling position and the sibling
// count, for "sibling i of n" display. A lone turn reports (1, 1).
func (s State) SiblingPosition() (int, int) {
	if s.current == nil {
		return 0, 0
	}
	total := len(s.current.SiblingIDs)
	if total == 0 {
		return 1, 1
	}
	return s.siblingIndex + 1, total
}

// ChildCount reports how many children the current turn has.
func (s State) ChildCount() int {
	if s.page == nil {
		return 0
	}
	return len(s.page.Children())
}
