package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

// TableFormatter formats break-even results as a console table
type TableFormatter struct{}

// Format generates a formatted summary of a break-even result
func (tf *TableFormatter) Format(result *OptimizationResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")

	req := result.Request
	sb.WriteString(fmt.Sprintf("Fiscal Year:  %s\n", req.Year))
	sb.WriteString(fmt.Sprintf("Adjusting:    %s (%s to %s)\n", req.Field,
		tf.signed(req.Constraints.MinAdjustment), tf.signed(req.Constraints.MaxAdjustment)))
	sb.WriteString(fmt.Sprintf("Goal:         %s <= %s\n", req.Metric, yen.FormatCurrency(req.Target)))
	sb.WriteString(fmt.Sprintf("Status:       %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:   %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:  %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("SOLUTION\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")
	sb.WriteString(fmt.Sprintf("Adjustment:   %s\n", tf.signed(result.Adjustment)))
	sb.WriteString(fmt.Sprintf("%-13s %s\n", string(req.Metric)+":", yen.FormatCurrency(result.MetricValue)))
	if result.Report != nil {
		sb.WriteString(fmt.Sprintf("Total Tax:    %s\n", yen.FormatInt(result.Report.Total())))
	}
	if result.BaseReport != nil {
		sb.WriteString(fmt.Sprintf("Base Total:   %s\n", yen.FormatInt(result.BaseReport.Total())))
		sb.WriteString(fmt.Sprintf("Change:       %s\n", tf.signed(decimal.NewFromInt(result.TotalDiffFromBase))))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatSweep renders sweep points as a table
func (tf *TableFormatter) FormatSweep(points []SweepPoint) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%18s %18s %16s %s\n", "Adjustment", "Metric", "Total Tax", "Meets"))
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	for _, p := range points {
		meets := ""
		if p.MeetsTarget {
			meets = "yes"
		}
		sb.WriteString(fmt.Sprintf("%18s %18s %16s %s\n",
			tf.signed(p.Adjustment), yen.FormatCurrency(p.MetricValue), yen.FormatInt(p.TotalTax), meets))
	}
	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Success"
	}
	return "✗ Not converged"
}

func (tf *TableFormatter) signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + yen.FormatCurrency(d)
	}
	return yen.FormatCurrency(d)
}

// JSONFormatter formats break-even results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a break-even result
func (jf *JSONFormatter) Format(result *OptimizationResult) (string, error) {
	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
