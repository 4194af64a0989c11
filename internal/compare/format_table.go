package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/pkg/yen"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing cases
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("CORPORATE TAX COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 92) + "\n")
	sb.WriteString(fmt.Sprintf("Base: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Input: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 16

	sb.WriteString(fmt.Sprintf("%-*s %-6s %*s %*s %*s %-10s\n",
		nameWidth, "Case",
		"FY",
		numWidth, "Total Tax",
		numWidth, "National Due",
		numWidth, "Local Due",
		"Consumption"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 92) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", alt.Description))
			}
			sb.WriteString(":\n")
			sb.WriteString(fmt.Sprintf("  Total Tax:  %s%s (%s%%)\n",
				tf.deltaSymbol(alt.TotalDiffFromBase),
				yen.FormatInt(alt.TotalDiffFromBase),
				alt.TotalPctFromBase.StringFixed(1)))
			for _, d := range alt.LineDiffs {
				if d.Diff == 0 {
					continue
				}
				sb.WriteString(fmt.Sprintf("    %-*s %s%s\n", 60, tf.truncate(d.TaxName, 60),
					tf.deltaSymbol(d.Diff), yen.FormatInt(d.Diff)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nOBSERVATIONS\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single case row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}
	if result.Faults > 0 {
		name += " !"
	}

	return fmt.Sprintf("%-*s %-6s %*s %*s %*s %-10s\n",
		nameWidth, tf.truncate(name, nameWidth),
		result.FiscalYear,
		numWidth, yen.FormatInt(result.TotalTax),
		numWidth, yen.FormatInt(result.NationalTaxDue),
		numWidth, yen.FormatInt(result.LocalTaxDue),
		result.ConsumptionStatus)
}

// deltaSymbol returns a "+" for increases; decreases carry their own sign
func (tf *TableFormatter) deltaSymbol(delta int64) string {
	if delta > 0 {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary of the total deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s", compSet.BaseScenarioName))
	if compSet.BaseResult != nil {
		sb.WriteString(" " + yen.FormatInt(compSet.BaseResult.TotalTax))
	}

	for _, alt := range compSet.AlternativeResults {
		change := "="
		if alt.TotalDiffFromBase != 0 {
			change = tf.deltaSymbol(alt.TotalDiffFromBase) + yen.FormatInt(alt.TotalDiffFromBase)
		}
		sb.WriteString(fmt.Sprintf(" | %s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
