// meridian TUI - a terminal client for branching chat conversations.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/haowjy/meridian-tui/internal/api"
	"github.com/haowjy/meridian-tui/internal/config"
	"github.com/haowjy/meridian-tui/internal/logging"
	"github.com/haowjy/meridian-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		serverURL   = flag.String("server", "", "server base URL (overrides config)")
		configPath  = flag.String("config", "", "path to config file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("meridian %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	// Load configuration, either from the default location or an
	// explicit path.
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}

	// Redirect the standard logger to a session log file; the terminal
	// belongs to the TUI.
	logDir := cfg.Logging.Dir
	if logDir == "" {
		if logDir, err = logging.DefaultDir(); err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving log dir: %v\n", err)
			os.Exit(1)
		}
	}
	closeLogs, err := logging.Setup(logDir, cfg.Logging.KeepFiles, cfg.Logging.Enabled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLogs()

	sessionID := uuid.NewString()
	log.Printf("meridian %s starting, session %s, server %s", Version, sessionID, cfg.Server.BaseURL)

	client := api.NewClient(cfg.Server.BaseURL, sessionID).
		WithMaxRetries(cfg.Server.MaxRetries).
		WithRequestTimeout(time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second).
		WithStreamTimeout(time.Duration(cfg.Server.StreamTimeoutSecs) * time.Second).
		WithRateLimit(cfg.Server.RequestsPerSecond)

	app := ui.NewApp(client, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Reload config edits live; the watcher delivers the new config to
	// the running program.
	watchPath := *configPath
	if watchPath == "" {
		if watchPath, err = config.Path(); err != nil {
			watchPath = ""
		}
	}
	if watchPath != "" {
		watcher, err := config.NewWatcher(watchPath, func(next *config.Config) {
			p.Send(ui.ConfigReloaded(next))
		})
		if err != nil {
			log.Printf("WARNING: config watcher unavailable: %v", err)
		} else if err := watcher.Watch(); err != nil {
			log.Printf("WARNING: config watcher failed to start: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running meridian: %v\n", err)
		os.Exit(1)
	}
	log.Printf("meridian session %s ended", sessionID)
}
