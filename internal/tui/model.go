// Package tui is an interactive viewer for fiscal-year tax reports.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/transform"
)

// Model represents the application state
type Model struct {
	sim        *simulation.Simulator
	compare    *compare.CompareEngine
	transforms *transform.TransformRegistry
	keys       keyMap

	statePath string
	state     *domain.FinancialState
	whatIf    []transform.StateTransform

	years   []string
	yearIdx int

	report     *domain.Report
	baseReport *domain.Report
	comparison *compare.ComparisonSet

	trace     table.Model
	input     textinput.Model
	editing   bool
	inputErr  error
	statusMsg string

	currentScene  Scene
	previousScene Scene

	width  int
	height int

	loading        bool
	loadingMessage string
	err            error
}

// NewModel creates a viewer for the state file at statePath.
func NewModel(statePath string, sim *simulation.Simulator) Model {
	if sim == nil {
		sim = simulation.New()
	}

	ti := textinput.New()
	ti.Placeholder = "adjust_total:field=expenses,amount=3000000"
	ti.Prompt = "what-if> "
	ti.CharLimit = 200
	ti.Width = 60

	trace := table.New(
		table.WithColumns(traceColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		sim:            sim,
		compare:        compare.NewCompareEngine(sim),
		transforms:     transform.NewTransformRegistry(),
		keys:           defaultKeyMap(),
		statePath:      statePath,
		years:          sim.Years(),
		trace:          trace,
		input:          ti,
		currentScene:   SceneSummary,
		previousScene:  SceneSummary,
		width:          80,
		height:         24,
		loading:        true,
		loadingMessage: "Loading financial state...",
	}
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	return loadStateCmd(m.statePath)
}

// Year returns the fiscal year on screen.
func (m Model) Year() string {
	if len(m.years) == 0 {
		return ""
	}
	return m.years[m.yearIdx]
}

// Report returns the report on screen, nil until the first calculation ends.
func (m Model) Report() *domain.Report {
	return m.report
}

// CurrentScene returns the active scene.
func (m Model) CurrentScene() Scene {
	return m.currentScene
}

// stateFor hands the rule set of year a copy of the loaded state carrying
// that year, so one balance sheet can be viewed under every supported year.
func (m Model) stateFor(year string) *domain.FinancialState {
	if m.state == nil {
		return nil
	}
	s := m.state.DeepCopy()
	s.FiscalYear = year
	return s
}

func loadStateCmd(path string) tea.Cmd {
	return func() tea.Msg {
		state, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return StateLoadedMsg{State: state}
	}
}

func (m Model) calculateCmd() tea.Cmd {
	year := m.Year()
	state := m.stateFor(year)
	sim := m.sim
	whatIf := m.whatIf
	return func() tea.Msg {
		ctx := context.Background()
		base, err := sim.Calculate(ctx, year, state)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if len(whatIf) == 0 || state == nil {
			return ReportReadyMsg{Year: year, Report: base}
		}
		adjusted, err := transform.ApplyTransforms(state, whatIf)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		report, err := sim.Calculate(ctx, year, adjusted)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ReportReadyMsg{Year: year, Report: report, Base: base}
	}
}

func (m Model) compareCmd() tea.Cmd {
	year := m.Year()
	state := m.stateFor(year)
	engine := m.compare
	return func() tea.Msg {
		if state == nil {
			return ErrorMsg{Err: fmt.Errorf("no financial state loaded")}
		}
		set, err := engine.Compare(context.Background(), state, compare.CompareOptions{
			Year:      year,
			Templates: engine.TemplateRegistry.List(),
		})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ComparisonReadyMsg{Year: year, Set: set}
	}
}
