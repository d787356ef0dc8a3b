// cmd/kringle/main.go
//
// This is the entry point for the Kringle TUI.
// When you run `kringle` from any directory, this is what executes.
//
// Flow:
// 1. Initialize the .kringle folder in the working directory
// 2. Launch the TUI on the alternate screen buffer

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ohalloran/kringle/internal/config"
	"github.com/ohalloran/kringle/internal/logging"
	"github.com/ohalloran/kringle/internal/tui"
)

func main() {
	// The current working directory is the "project" we're drawing in.
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitKringleDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .kringle directory: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	app, err := tui.NewApp(cwd)
	if err != nil {
		logger.Printf("startup failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting Kringle: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen buffer (like vim uses) keeps revealed
	// receivers out of the terminal scrollback.
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Printf("tui exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
