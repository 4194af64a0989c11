package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = amountStyle.Bold(true)
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
)

// ConsoleFormatter renders the result lines and settlement as tables.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	var buf bytes.Buffer
	writeHeader(&buf, report)
	writeLines(&buf, report)
	writeFaultSummary(&buf, report)
	return buf.Bytes(), nil
}

// AuditFormatter is the console report followed by the full calculation
// trace, one row per executed step with its narrative.
type AuditFormatter struct{}

func (a AuditFormatter) Name() string { return "audit" }

func (a AuditFormatter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	var buf bytes.Buffer
	writeHeader(&buf, report)
	writeLines(&buf, report)

	fmt.Fprintln(&buf, titleStyle.Render("CALCULATION TRACE"))
	rows := make([][]string, 0, len(report.Trace))
	for i, e := range report.Trace {
		narrative := e.Narrative
		if e.Fault != "" {
			narrative = faultStyle.Render("FAULT: " + e.Fault)
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), e.Category, e.DisplayName, TraceValue(e), narrative})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Category", "Step", "Value", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 || col == 3:
				return amountStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(&buf, t.Render())
	fmt.Fprintln(&buf)
	writeFaultSummary(&buf, report)
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, report *domain.Report) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(buf, rule)
	title := fmt.Sprintf("CORPORATE TAX LIABILITY - FISCAL YEAR %s", report.FiscalYear)
	if start, end, err := domain.FiscalYearPeriod(report.FiscalYear); err == nil {
		title += fmt.Sprintf(" (%s to %s)", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	fmt.Fprintln(buf, titleStyle.Render(title))
	fmt.Fprintln(buf, rule)
	fmt.Fprintln(buf)
}

func writeLines(buf *bytes.Buffer, report *domain.Report) {
	fmt.Fprintln(buf, renderLines("Tax", report.Lines, true))
	fmt.Fprintln(buf)
	if len(report.Settlement) > 0 {
		fmt.Fprintln(buf, titleStyle.Render("SETTLEMENT (after withheld and interim payments)"))
		fmt.Fprintln(buf, renderLines("Payable", report.Settlement, false))
		fmt.Fprintln(buf)
	}
}

func renderLines(heading string, lines []domain.TaxLine, boldLast bool) string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.TaxName, yen.FormatInt(l.TaxAmount)})
	}
	last := len(rows) - 1
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(heading, "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1 && boldLast && row == last:
				return totalStyle
			case col == 1:
				return amountStyle
			default:
				return cellStyle
			}
		}).
		Render()
}

func writeFaultSummary(buf *bytes.Buffer, report *domain.Report) {
	if report.Faults == 0 {
		return
	}
	fmt.Fprintln(buf, faultStyle.Render(fmt.Sprintf(
		"WARNING: %d step(s) faulted and were counted as zero; check the trace before filing.", report.Faults)))
}

// TraceValue renders a trace entry value for display. Rates are shown as
// percentages and the consumption tax status by name; everything else is yen.
func TraceValue(e domain.TraceEntry) string {
	switch e.StepID {
	case domain.FieldCorporateTaxRate:
		return yen.FormatRate(e.Value)
	case domain.FieldConsumptionTaxStatus:
		switch e.Value.IntPart() {
		case domain.ConsumptionTaxStandard:
			return "standard"
		case domain.ConsumptionTaxTwoTenths:
			return "two-tenths"
		default:
			return "exempt"
		}
	default:
		return yen.FormatCurrency(e.Value)
	}
}
