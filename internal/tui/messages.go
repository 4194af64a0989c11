package tui

import (
	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneSummary Scene = iota
	SceneTrace
	SceneCompare
	SceneHelp
)

// String returns the scene name shown in the breadcrumb.
func (s Scene) String() string {
	switch s {
	case SceneSummary:
		return "Summary"
	case SceneTrace:
		return "Trace"
	case SceneCompare:
		return "Compare"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// cycle is the tab order; help is reached with "?" only.
var cycle = []Scene{SceneSummary, SceneTrace, SceneCompare}

// Message types for the Bubble Tea update cycle

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// StateLoadedMsg carries the financial state read from disk.
type StateLoadedMsg struct {
	State *domain.FinancialState
}

// ReportReadyMsg carries a finished calculation. Base is the report without
// the what-if transforms and is nil when none were applied.
type ReportReadyMsg struct {
	Year   string
	Report *domain.Report
	Base   *domain.Report
}

// ComparisonReadyMsg carries the template comparison of the current year.
type ComparisonReadyMsg struct {
	Year string
	Set  *compare.ComparisonSet
}
