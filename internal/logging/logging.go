// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging routes the standard library logger to a timestamped
// file under the meridian config directory. The terminal is owned by the
// TUI, so nothing may write to stderr once the program is running; every
// log.Printf in the codebase lands in the session's log file instead.
//
// One file is created per session (meridian_2006-01-02_15-04-05.log) and
// old files beyond the retention count are pruned at startup.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const filePrefix = "meridian_"

// Setup opens a fresh session log file in dir, points the default logger
// at it, and prunes old session files beyond keepFiles. When enabled is
// false, logging is discarded entirely. The returned closer flushes and
// closes the file; call it on shutdown.
func Setup(dir string, keepFiles int, enabled bool) (func() error, error) {
	if !enabled {
		log.SetOutput(io.Discard)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := filePrefix + time.Now().Format("2006-01-02_15-04-05") + ".log"
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("=== meridian session started (log: %s) ===", path)

	if err := Prune(dir, keepFiles); err != nil {
		log.Printf("Log pruning failed: %v", err)
	}

	return func() error {
		log.SetOutput(os.Stderr)
		return file.Close()
	}, nil
}

// DefaultDir returns ~/.meridian/logs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".meridian", "logs"), nil
}

// Prune deletes session log files beyond the keep newest. Files that do
// not match the session naming scheme are left alone.
func Prune(dir string, keep int) error {
	if keep < 1 {
		keep = 1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var logs []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, ".log") {
			logs = append(logs, name)
		}
	}
	if len(logs) <= keep {
		return nil
	}

	// Timestamped names sort chronologically; oldest first.
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
