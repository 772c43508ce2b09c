// inkwell TUI - A terminal chat client with a streaming document canvas.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/draft"
	"github.com/jeranaias/inkwell-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	defaultPath, _ := config.DefaultPath()

	var (
		configPath  = flag.String("config", defaultPath, "path to the config file")
		baseURL     = flag.String("base-url", "", "backend base URL (overrides config)")
		chatID      = flag.String("chat", "", "chat session id (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("inkwell %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Backend.BaseURL = *baseURL
	}
	if *chatID != "" {
		cfg.Backend.ChatID = *chatID
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.Backend.BaseURL).WithTimeout(cfg.RequestTimeout())

	drafts, err := draft.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing draft storage: %v\n", err)
		os.Exit(1)
	}

	model := chat.New(cfg, client, drafts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Hot reload: config file changes reach the UI as a message. Watcher
	// failure is not fatal; the app just runs without reload.
	watcher, werr := config.NewWatcher(*configPath,
		func(reloaded *config.Config) {
			model.Events() <- chat.ConfigReloadedMsg{Config: reloaded}
		},
		nil,
	)
	if werr == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Persist the draft and flush pending document saves on the way out.
	model.Shutdown()
}
