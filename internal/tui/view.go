package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/output"
	"github.com/rgehrsitz/taxsim/internal/transform"
	"github.com/rgehrsitz/taxsim/pkg/yen"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderLoading()
	}

	if m.err != nil {
		return m.renderError()
	}

	var content string
	switch m.currentScene {
	case SceneSummary:
		content = m.renderSummary()
	case SceneTrace:
		content = m.renderTrace()
	case SceneCompare:
		content = m.renderCompare()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	if m.editing {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderPrompt())
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar, status bar, and main container
func (m Model) renderApp(content string) string {
	contentHeight := m.height - 4 // title (2) + status (1) + padding (1)

	container := lipgloss.NewStyle().
		Height(max(0, contentHeight)).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		container,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("TAXSIM - Corporate Tax Calculator")

	crumbs := []string{m.currentScene.String()}
	if year := m.Year(); year != "" {
		crumbs = append([]string{"FY" + year}, crumbs...)
	}
	if m.state != nil && m.state.Company != nil && m.state.Company.Name != "" {
		crumbs = append([]string{m.state.Company.Name}, crumbs...)
	}
	if len(m.whatIf) > 0 {
		crumbs = append(crumbs, fmt.Sprintf("what-if (%d)", len(m.whatIf)))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		SubtitleStyle.Render(strings.Join(crumbs, " / ")),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	var shortcuts []string
	for _, b := range m.keys.shortcuts() {
		shortcuts = append(shortcuts, formatShortcut(b))
	}
	statusText := strings.Join(shortcuts, " • ")

	if m.statusMsg != "" {
		width := m.width - lipgloss.Width(statusText) - lipgloss.Width(m.statusMsg) - 4
		statusText += strings.Repeat(" ", max(1, width)) + SubtitleStyle.Render(m.statusMsg)
	}

	return StatusBarStyle.Width(m.width).Render(statusText)
}

func formatShortcut(b key.Binding) string {
	return StatusKeyStyle.Render(b.Help().Key) + " " + b.Help().Desc
}

func (m Model) renderLoading() string {
	message := m.loadingMessage
	if message == "" {
		message = "Loading..."
	}
	return m.renderApp(BorderStyle.Render("⠋ " + message))
}

func (m Model) renderError() string {
	content := ErrorStyle.Render(
		fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err),
	)
	return m.renderApp(content)
}

func (m Model) renderPrompt() string {
	lines := []string{m.input.View()}
	if m.inputErr != nil {
		lines = append(lines, ErrorStyle.Render(m.inputErr.Error()))
	}
	lines = append(lines, SubtitleStyle.Render("transforms: "+strings.Join(m.transforms.List(), ", ")+" • enter apply • esc cancel"))
	return BorderStyle.Render(strings.Join(lines, "\n"))
}

// renderSummary lists the result lines and the settlement, with the change
// against the unadjusted report when a what-if is active.
func (m Model) renderSummary() string {
	if m.report == nil {
		return BorderStyle.Render("No report yet.")
	}

	sections := []string{SectionStyle.Render("Tax result")}
	sections = append(sections, m.renderLines(m.report.Lines, m.baseLines(func(r *domain.Report) []domain.TaxLine { return r.Lines }))...)

	if len(m.report.Settlement) > 0 {
		sections = append(sections, "", SectionStyle.Render("Settlement"))
		sections = append(sections, m.renderLines(m.report.Settlement, m.baseLines(func(r *domain.Report) []domain.TaxLine { return r.Settlement }))...)
	}

	if m.report.Faults > 0 {
		sections = append(sections, "", WarningStyle.Render(
			fmt.Sprintf("%d step(s) faulted and counted as zero; see the trace (t).", m.report.Faults)))
	}

	if len(m.whatIf) > 0 {
		sections = append(sections, "", SectionStyle.Render("What-if"))
		for _, d := range transform.Describe(m.whatIf) {
			sections = append(sections, "  • "+d)
		}
	}

	return BorderStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) baseLines(pick func(*domain.Report) []domain.TaxLine) map[string]int64 {
	if m.baseReport == nil {
		return nil
	}
	out := make(map[string]int64)
	for _, l := range pick(m.baseReport) {
		out[l.TaxName] = l.TaxAmount
	}
	return out
}

func (m Model) renderLines(lines []domain.TaxLine, base map[string]int64) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		row := MetricLabelStyle.Render(l.TaxName) + MetricValueStyle.Render(yen.FormatInt(l.TaxAmount))
		if before, ok := base[l.TaxName]; ok {
			delta := l.TaxAmount - before
			row += "  " + DeltaStyle(delta).Render(signedYen(delta))
		}
		out = append(out, row)
	}
	return out
}

func signedYen(delta int64) string {
	switch {
	case delta > 0:
		return "+" + yen.FormatInt(delta)
	case delta < 0:
		return "-" + yen.FormatInt(-delta)
	default:
		return "±0"
	}
}

func traceColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Step", Width: 34},
		{Title: "Category", Width: 12},
		{Title: "Value", Width: 16},
		{Title: "!", Width: 1},
	}
}

func traceRows(report *domain.Report) []table.Row {
	if report == nil {
		return nil
	}
	rows := make([]table.Row, len(report.Trace))
	for i, e := range report.Trace {
		flag := ""
		if e.Fault != "" {
			flag = "!"
		}
		name := e.DisplayName
		if name == "" {
			name = e.StepID
		}
		rows[i] = table.Row{strconv.Itoa(i + 1), name, e.Category, output.TraceValue(e), flag}
	}
	return rows
}

// renderTrace shows the step table and the narrative of the selected step.
func (m Model) renderTrace() string {
	if m.report == nil || len(m.report.Trace) == 0 {
		return BorderStyle.Render("No calculation trace.")
	}

	detail := ""
	if i := m.trace.Cursor(); i >= 0 && i < len(m.report.Trace) {
		e := m.report.Trace[i]
		detail = SectionStyle.Render(e.StepID) + "\n" + e.Narrative
		if e.Fault != "" {
			detail += "\n" + ErrorStyle.Render("FAULT: "+e.Fault)
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		BorderStyle.Render(m.trace.View()),
		BorderStyle.Width(max(20, m.width-2)).Render(detail),
	)
}

func (m Model) renderCompare() string {
	if m.comparison == nil {
		return BorderStyle.Render("No comparison yet. Press c to compare the built-in templates.")
	}
	formatter := &compare.TableFormatter{}
	return BorderStyle.Render(strings.TrimRight(formatter.Format(m.comparison), "\n"))
}

func (m Model) renderHelp() string {
	lines := []string{SectionStyle.Render("TAXSIM - corporate tax viewer"), ""}
	for _, b := range m.keys.all() {
		lines = append(lines, HelpKeyStyle.Render(b.Help().Key)+HelpDescStyle.Render(b.Help().Desc))
	}
	lines = append(lines, "",
		"What-if transforms use the CLI syntax, for example:",
		"  scale_total:field=sales,factor=0.9",
		"  set_invoice:registered=false",
		"They stack until cleared with x.",
	)
	return BorderStyle.Render(strings.Join(lines, "\n"))
}
