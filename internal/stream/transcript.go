// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"sync"

	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/model"
)

// Transcript accumulates streamed assistant output. Appends come from the
// consumer goroutine while the UI reads snapshots on its frame tick, so
// every method takes the lock. Content is append-only: nothing written is
// ever retracted, and Freeze stops all further mutation.
type Transcript struct {
	mu           sync.Mutex
	builder      strings.Builder
	currentBlock string // block type of the open block, "" before the first
	eventCount   int
	frozen       bool
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Text returns the rendered transcript so far.
func (t *Transcript) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.builder.String()
}

// Len returns the rendered length in bytes.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.builder.Len()
}

// EventCount returns how many stream events have been applied.
func (t *Transcript) EventCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eventCount
}

// Freeze stops all further mutation. Buffered events applied after a
// cancel land here and are dropped.
func (t *Transcript) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Apply folds one stream event into the transcript.
func (t *Transcript) Apply(ev api.StreamEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return
	}
	t.eventCount++

	switch ev.Kind {
	case api.EventBlockStart:
		t.switchBlock(ev.BlockStart.BlockType)
	case api.EventBlockDelta:
		t.applyDelta(ev.BlockDelta)
	}
	// turn_complete and unknown events render nothing.
}

// switchBlock emits a block-type label line when the open block's type
// changes, including for the very first block.
func (t *Transcript) switchBlock(blockType string) {
	if blockType == "" || blockType == t.currentBlock {
		return
	}
	if t.builder.Len() > 0 {
		t.builder.WriteString("\n\n")
	}
	t.builder.WriteString("[" + blockType + "]\n")
	t.currentBlock = blockType
}

func (t *Transcript) applyDelta(delta *api.BlockDelta) {
	if delta == nil {
		return
	}
	// Servers may omit block_start and tag the delta instead.
	if delta.BlockType != "" && delta.BlockType != t.currentBlock {
		t.switchBlock(delta.BlockType)
	}

	switch delta.DeltaType {
	case api.DeltaText, api.DeltaThinking:
		if t.currentBlock == model.BlockText || t.currentBlock == model.BlockThinking {
			t.builder.WriteString(delta.TextDelta)
		}
	case api.DeltaInputJSON:
		if t.currentBlock == model.BlockToolUse || t.currentBlock == model.BlockToolResult {
			t.builder.WriteString(delta.InputJSONDelta)
		}
	}
	// Unknown delta types are ignored; new server deltas never abort a stream.
}

// AppendNotice writes a warning or error line outside the block flow,
// for conditions like empty streams and transport failures.
func (t *Transcript) AppendNotice(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return
	}
	if t.builder.Len() > 0 {
		t.builder.WriteString("\n\n")
	}
	t.builder.WriteString(line)
}
