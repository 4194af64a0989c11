package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/tui"
)

func main() {
	statePath := ""
	if len(os.Args) > 1 {
		statePath = os.Args[1]
	} else {
		fmt.Println("Usage: taxsim-tui <state-file>")
		os.Exit(1)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		fmt.Printf("Error: state file not found: %s\n", statePath)
		os.Exit(1)
	}

	model := tui.NewModel(statePath, simulation.New())

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
