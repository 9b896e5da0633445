// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"testing"

	"github.com/haowjy/meridian-tui/internal/model"
)

func strPtr(s string) *string { return &s }

func pageFor(turns ...model.Turn) *model.TurnPage {
	return &model.TurnPage{Turns: turns}
}

func TestState_SiblingQueries(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		siblings  []string
		wantLeft  string
		wantRight string
	}{
		{"lone turn", "a", nil, "", ""},
		{"single sibling list", "a", []string{"a"}, "", ""},
		{"first of three", "a", []string{"a", "b", "c"}, "", "b"},
		{"middle of three", "b", []string{"a", "b", "c"}, "a", "c"},
		{"last of three", "c", []string{"a", "b", "c"}, "b", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			turn := model.Turn{ID: tc.id, SiblingIDs: tc.siblings}
			state := NewState(&turn, pageFor(turn))

			left, ok := state.Left()
			if ok != (tc.wantLeft != "") || left != tc.wantLeft {
				t.Errorf("Left() = %q, %v; want %q", left, ok, tc.wantLeft)
			}
			right, ok := state.Right()
			if ok != (tc.wantRight != "") || right != tc.wantRight {
				t.Errorf("Right() = %q, %v; want %q", right, ok, tc.wantRight)
			}
		})
	}
}

func TestState_UpDown(t *testing.T) {
	root := model.Turn{ID: "root"}
	child := model.Turn{ID: "a", PrevTurnID: strPtr("root"), SiblingIDs: []string{"a"}}

	// Root with one child: down enabled, up disabled.
	state := NewState(&root, pageFor(root, child))
	if _, ok := state.Up(); ok {
		t.Error("Up() enabled at root")
	}
	down, ok := state.Down()
	if !ok || down != "a" {
		t.Errorf("Down() = %q, %v; want a", down, ok)
	}

	// Leaf child: up enabled, down disabled.
	state = NewState(&child, pageFor(child))
	up, ok := state.Up()
	if !ok || up != "root" {
		t.Errorf("Up() = %q, %v; want root", up, ok)
	}
	if _, ok := state.Down(); ok {
		t.Error("Down() enabled on a leaf")
	}
}

// Chain root -> a -> b, with a having children b and c.
func TestState_SiblingChainScenario(t *testing.T) {
	b := model.Turn{ID: "b", PrevTurnID: strPtr("a"), SiblingIDs: []string{"b", "c"}}
	c := model.Turn{ID: "c", PrevTurnID: strPtr("a"), SiblingIDs: []string{"b", "c"}}

	fromB := NewState(&b, pageFor(b))
	if up, ok := fromB.Up(); !ok || up != "a" {
		t.Errorf("from b: Up() = %q, %v; want a", up, ok)
	}
	if _, ok := fromB.Left(); ok {
		t.Error("from b: Left() enabled for first sibling")
	}
	if right, ok := fromB.Right(); !ok || right != "c" {
		t.Errorf("from b: Right() = %q, %v; want c", right, ok)
	}

	fromC := NewState(&c, pageFor(c))
	if left, ok := fromC.Left(); !ok || left != "b" {
		t.Errorf("from c: Left() = %q, %v; want b", left, ok)
	}
	if _, ok := fromC.Right(); ok {
		t.Error("from c: Right() enabled for last sibling")
	}
}

// A turn absent from its own sibling list degrades to index 0 instead of
// failing.
func TestState_MissingOwnSiblingID(t *testing.T) {
	turn := model.Turn{ID: "x", SiblingIDs: []string{"a", "b"}}
	state := NewState(&turn, pageFor(turn))

	if _, ok := state.Left(); ok {
		t.Error("Left() enabled at defaulted index 0")
	}
	if right, ok := state.Right(); !ok || right != "b" {
		t.Errorf("Right() = %q, %v; want b", right, ok)
	}
	if pos, total := state.SiblingPosition(); pos != 1 || total != 2 {
		t.Errorf("SiblingPosition() = %d of %d; want 1 of 2", pos, total)
	}
}

func TestState_ZeroValueDisablesAll(t *testing.T) {
	var state State
	dirs := []struct {
		name  string
		query func() (string, bool)
	}{
		{"Up", state.Up},
		{"Down", state.Down},
		{"Left", state.Left},
		{"Right", state.Right},
	}
	for _, d := range dirs {
		if _, ok := d.query(); ok {
			t.Errorf("%s() enabled on zero-value state", d.name)
		}
	}
}

func TestState_SiblingPosition(t *testing.T) {
	lone := model.Turn{ID: "a"}
	state := NewState(&lone, pageFor(lone))
	if pos, total := state.SiblingPosition(); pos != 1 || total != 1 {
		t.Errorf("lone turn SiblingPosition() = %d of %d; want 1 of 1", pos, total)
	}

	mid := model.Turn{ID: "b", SiblingIDs: []string{"a", "b", "c"}}
	state = NewState(&mid, pageFor(mid))
	if pos, total := state.SiblingPosition(); pos != 2 || total != 3 {
		t.Errorf("SiblingPosition() = %d of %d; want 2 of 3", pos, total)
	}
}

func TestState_ChildCount(t *testing.T) {
	root := model.Turn{ID: "root"}
	state := NewState(&root, pageFor(root, model.Turn{ID: "a"}, model.Turn{ID: "b"}))
	if got := state.ChildCount(); got != 2 {
		t.Errorf("ChildCount() = %d, want 2", got)
	}
}
