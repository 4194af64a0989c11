package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.editing {
			return m.handleInputKey(msg)
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trace.SetHeight(max(5, msg.Height-12))
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case StateLoadedMsg:
		m.state = msg.State
		m.comparison = nil
		m.selectStateYear()
		m.loadingMessage = "Calculating " + m.Year() + "..."
		return m, m.calculateCmd()

	case ReportReadyMsg:
		if msg.Year != m.Year() {
			// A year switch overtook this run.
			return m, nil
		}
		m.loading = false
		m.report = msg.Report
		m.baseReport = msg.Base
		m.trace.SetRows(traceRows(msg.Report))
		m.trace.GotoTop()
		return m, nil

	case ComparisonReadyMsg:
		if msg.Year != m.Year() {
			return m, nil
		}
		m.loading = false
		m.comparison = msg.Set
		return m, nil
	}

	return m, nil
}

// selectStateYear puts the state's own fiscal year on screen when it is
// supported and keeps the current selection otherwise.
func (m *Model) selectStateYear() {
	if m.state == nil {
		return
	}
	for i, y := range m.years {
		if y == m.state.FiscalYear {
			m.yearIdx = i
			return
		}
	}
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.err != nil {
		// Any key dismisses the error.
		m.err = nil
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentScene == SceneHelp {
			return m.navigate(m.previousScene)
		}
		return m.navigate(SceneHelp)

	case key.Matches(msg, m.keys.Back):
		return m.navigate(m.previousScene)

	case key.Matches(msg, m.keys.NextScene):
		next := cycle[0]
		for i, s := range cycle {
			if s == m.currentScene {
				next = cycle[(i+1)%len(cycle)]
			}
		}
		return m.navigate(next)

	case key.Matches(msg, m.keys.Summary):
		return m.navigate(SceneSummary)

	case key.Matches(msg, m.keys.Trace):
		return m.navigate(SceneTrace)

	case key.Matches(msg, m.keys.Compare):
		return m.navigate(SceneCompare)

	case key.Matches(msg, m.keys.PrevYear):
		return m.switchYear(-1)

	case key.Matches(msg, m.keys.NextYear):
		return m.switchYear(1)

	case key.Matches(msg, m.keys.WhatIf):
		m.editing = true
		m.inputErr = nil
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		if len(m.whatIf) == 0 {
			return m, nil
		}
		m.whatIf = nil
		m.statusMsg = "what-if cleared"
		return m.recalculate()

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.loadingMessage = "Reloading " + m.statePath + "..."
		return m, loadStateCmd(m.statePath)
	}

	if m.currentScene == SceneTrace {
		var cmd tea.Cmd
		m.trace, cmd = m.trace.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleInputKey drives the what-if prompt. Enter parses the transform spec
// and recalculates; a bad spec stays in the prompt with its error shown.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.inputErr = nil
		m.input.Blur()
		return m, nil
	case "enter":
		t, err := m.transforms.ParseTransformSpec(m.input.Value())
		if err != nil {
			m.inputErr = err
			return m, nil
		}
		if m.state != nil {
			if err := t.Validate(m.stateFor(m.Year())); err != nil {
				m.inputErr = err
				return m, nil
			}
		}
		m.editing = false
		m.inputErr = nil
		m.input.Blur()
		m.whatIf = append(m.whatIf, t)
		m.statusMsg = "applied: " + t.Description()
		return m.recalculate()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) navigate(scene Scene) (tea.Model, tea.Cmd) {
	if scene != m.currentScene {
		m.previousScene = m.currentScene
		m.currentScene = scene
	}
	if scene == SceneCompare && m.comparison == nil && m.state != nil {
		m.loading = true
		m.loadingMessage = "Comparing templates for " + m.Year() + "..."
		return m, m.compareCmd()
	}
	return m, nil
}

func (m Model) switchYear(step int) (tea.Model, tea.Cmd) {
	if len(m.years) == 0 {
		return m, nil
	}
	next := m.yearIdx + step
	if next < 0 || next >= len(m.years) {
		return m, nil
	}
	m.yearIdx = next
	m.comparison = nil
	if m.currentScene == SceneCompare {
		m.loading = true
		m.loadingMessage = "Comparing templates for " + m.Year() + "..."
		return m, tea.Batch(m.calculateCmd(), m.compareCmd())
	}
	return m.recalculate()
}

func (m Model) recalculate() (tea.Model, tea.Cmd) {
	m.loading = true
	m.loadingMessage = "Calculating " + m.Year() + "..."
	return m, m.calculateCmd()
}
