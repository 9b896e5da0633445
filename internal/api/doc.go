// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP + SSE client for the Meridian service.
//
// Ordinary requests (project/chat/turn CRUD) share a pooled HTTP client with a
// short timeout; turn streaming uses a separate pooled client with no client
// timeout, bounded instead by a long per-stream context deadline. All calls
// pass through a client-side rate limiter.
//
// The package exposes two error shapes: sentinel errors (ErrRateLimited, ...)
// for conditions callers branch on, and *APIError carrying the HTTP status and
// server message for everything else.
package api
