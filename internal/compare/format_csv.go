package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Case",
		"Type",
		"Fiscal Year",
		"Total Tax",
		"National Tax Due",
		"Local Tax Due",
		"Consumption Status",
		"Faults",
		"Total Diff from Base",
		"Total % Change",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, caseType string) []string {
	return []string{
		result.ScenarioName,
		caseType,
		result.FiscalYear,
		strconv.FormatInt(result.TotalTax, 10),
		strconv.FormatInt(result.NationalTaxDue, 10),
		strconv.FormatInt(result.LocalTaxDue, 10),
		result.ConsumptionStatus,
		strconv.Itoa(result.Faults),
		strconv.FormatInt(result.TotalDiffFromBase, 10),
		result.TotalPctFromBase.StringFixed(2),
	}
}
