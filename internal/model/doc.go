// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the Meridian turn tree.
//
// A chat is a tree of turns: every turn points at its predecessor via
// PrevTurnID, and turns sharing a predecessor form an ordered sibling
// group (regenerated or edited branches). Each turn carries an ordered
// list of typed content blocks.
//
// All types mirror the Meridian API wire format (snake_case JSON).
package model
