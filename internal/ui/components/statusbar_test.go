// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncateLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 6, "hello…"},
		{"zero width", "hello", 0, ""},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateLine(tc.input, tc.width); got != tc.want {
				t.Errorf("TruncateLine(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.want)
			}
		})
	}
}

func TestPadLine(t *testing.T) {
	got := PadLine("ab", 5)
	if got != "ab   " {
		t.Errorf("PadLine = %q", got)
	}
	if w := runewidth.StringWidth(PadLine("日本語は長い", 5)); w > 5 {
		t.Errorf("padded wide-rune line width = %d, want <= 5", w)
	}
}
