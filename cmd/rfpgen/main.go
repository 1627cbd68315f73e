// cmd/rfpgen/main.go
//
// Entry point for the rfpgen TUI.
//
// Flow:
// 1. Load .env (optional) and the .rfpgen/config.yaml project config
// 2. Initialize the .rfpgen workspace (logs, exports)
// 3. Launch the bubbletea program

package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/config"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/logbook"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/tui"
)

func main() {
	// A missing .env is fine; it only exists to carry RFPGEN_API_URL
	// in development setups.
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitWorkspace(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .rfpgen directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	opts := []tui.AppOption{}
	logPath := filepath.Join(cfg.LogsDir(), "session.log")
	if lb, err := logbook.New(logPath); err == nil {
		lb.Info("Session opened · backend: %s", cfg.APIBaseURL())
		opts = append(opts, tui.WithLogbook(lb))
	}

	p := tea.NewProgram(
		tui.NewApp(cfg, opts...),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
