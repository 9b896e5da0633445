// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream consumes the live SSE event stream for one assistant
// turn and renders it into an append-only transcript.
//
// A Consumer moves through Connecting, Streaming, and exactly one of
// Completed, Cancelled, or Failed. The transcript is monotonic: text
// appended for a block is never retracted or reordered, and once the
// operator cancels, buffered events arriving afterwards mutate nothing.
// Cancellation sends a best-effort interrupt to the server and reports
// a distinguished outcome rather than an error.
//
// The UI polls the transcript on a frame tick while the consumer's
// goroutine appends to it, mirroring how chat rendering batches deltas
// instead of repainting per event.
package stream
