// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav implements turn-tree navigation for the turn browser.
//
// The package splits navigation into two pieces. State is a pure
// computation over a turn and its fetched page: given the current turn
// and the page anchored on it, it answers which of the four directions
// (parent, first child, previous sibling, next sibling) are reachable
// and what turn id each one targets. It performs no I/O.
//
// Controller owns the single in-flight navigation. It fetches the
// target turn's page and commits the new (turn, state) pair atomically.
// At most one navigation may be in flight: issuing a new one cancels
// the previous attempt and awaits its settlement before fetching, and
// a superseded attempt's result is discarded whether it succeeded or
// failed. Cancellation is a distinguished outcome, not an error.
package nav
