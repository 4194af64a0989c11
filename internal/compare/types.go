package compare

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LineDiff is one result line of an alternative set against the base.
type LineDiff struct {
	TaxName string `json:"taxName"`
	Base    int64  `json:"base"`
	Amount  int64  `json:"amount"`
	Diff    int64  `json:"diff"`
}

// ComparisonResult represents one calculated case with its key figures
type ComparisonResult struct {
	ScenarioName string         `json:"scenarioName"`
	Description  string         `json:"description"`
	FiscalYear   string         `json:"fiscalYear"`
	Report       *domain.Report `json:"-"`

	// Key Metrics
	TotalTax          int64  `json:"totalTax"`
	NationalTaxDue    int64  `json:"nationalTaxDue"`
	LocalTaxDue       int64  `json:"localTaxDue"`
	ConsumptionStatus string `json:"consumptionStatus"`
	Faults            int    `json:"faults"`

	// Comparison to Base
	TotalDiffFromBase int64           `json:"totalDiffFromBase"`
	TotalPctFromBase  decimal.Decimal `json:"totalPctFromBase"`
	LineDiffs         []LineDiff      `json:"lineDiffs,omitempty"`
}

// ComparisonSet represents a collection of comparisons against one base
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// MetricsCalculator extracts key figures from reports
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison figures of one report
func (mc *MetricsCalculator) CalculateMetrics(name string, report *domain.Report) ComparisonResult {
	result := ComparisonResult{
		ScenarioName: name,
		FiscalYear:   report.FiscalYear,
		Report:       report,
		TotalTax:     report.Total(),
		Faults:       report.Faults,
	}
	for _, l := range report.Settlement {
		switch l.TaxName {
		case rules.LineNationalTaxDue:
			result.NationalTaxDue = l.TaxAmount
		case rules.LineLocalTaxDue:
			result.LocalTaxDue = l.TaxAmount
		}
	}
	result.ConsumptionStatus = "n/a"
	if e, ok := report.TraceFor(domain.FieldConsumptionTaxStatus); ok {
		result.ConsumptionStatus = consumptionStatus(e.Value)
	}
	return result
}

func consumptionStatus(v decimal.Decimal) string {
	switch v.IntPart() {
	case domain.ConsumptionTaxStandard:
		return "standard"
	case domain.ConsumptionTaxTwoTenths:
		return "two-tenths"
	default:
		return "exempt"
	}
}

// CalculateComparison fills the deltas of scenario against base. Lines are
// matched by name; a line missing on one side counts as zero there.
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.TotalDiffFromBase = scenario.TotalTax - base.TotalTax
	if base.TotalTax != 0 {
		scenario.TotalPctFromBase = decimal.NewFromInt(scenario.TotalDiffFromBase).
			Div(decimal.NewFromInt(base.TotalTax)).
			Mul(decimal.NewFromInt(100))
	}

	if scenario.Report == nil || base.Report == nil {
		return scenario
	}
	baseAmounts := lo.Associate(base.Report.Lines, func(l domain.TaxLine) (string, int64) {
		return l.TaxName, l.TaxAmount
	})
	seen := make(map[string]bool, len(scenario.Report.Lines))
	diffs := make([]LineDiff, 0, len(scenario.Report.Lines))
	for _, l := range scenario.Report.Lines {
		seen[l.TaxName] = true
		b := baseAmounts[l.TaxName]
		diffs = append(diffs, LineDiff{TaxName: l.TaxName, Base: b, Amount: l.TaxAmount, Diff: l.TaxAmount - b})
	}
	for _, l := range base.Report.Lines {
		if !seen[l.TaxName] {
			diffs = append(diffs, LineDiff{TaxName: l.TaxName, Base: l.TaxAmount, Diff: -l.TaxAmount})
		}
	}
	scenario.LineDiffs = diffs
	return scenario
}

// GenerateRecommendations summarizes the comparison in a few sentences
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	lowest := lo.MinBy(compSet.AlternativeResults, func(a, b ComparisonResult) bool {
		return a.TotalTax < b.TotalTax
	})
	if lowest.TotalTax < compSet.BaseResult.TotalTax {
		recommendations = append(recommendations,
			fmt.Sprintf("Lowest liability: %s saves %s against %s",
				lowest.ScenarioName, yen.FormatInt(compSet.BaseResult.TotalTax-lowest.TotalTax), compSet.BaseScenarioName))
	}

	highest := lo.MaxBy(compSet.AlternativeResults, func(a, b ComparisonResult) bool {
		return a.TotalTax > b.TotalTax
	})
	if highest.TotalTax > compSet.BaseResult.TotalTax {
		recommendations = append(recommendations,
			fmt.Sprintf("Highest liability: %s costs %s more than %s",
				highest.ScenarioName, yen.FormatInt(highest.TotalTax-compSet.BaseResult.TotalTax), compSet.BaseScenarioName))
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.ConsumptionStatus != compSet.BaseResult.ConsumptionStatus {
			recommendations = append(recommendations,
				fmt.Sprintf("Consumption tax filing changes under %s: %s -> %s",
					alt.ScenarioName, compSet.BaseResult.ConsumptionStatus, alt.ConsumptionStatus))
		}
	}

	faulted := lo.Filter(compSet.AlternativeResults, func(r ComparisonResult, _ int) bool { return r.Faults > 0 })
	if compSet.BaseResult.Faults > 0 {
		faulted = append([]ComparisonResult{*compSet.BaseResult}, faulted...)
	}
	if len(faulted) > 0 {
		names := lo.Map(faulted, func(r ComparisonResult, _ int) string { return r.ScenarioName })
		recommendations = append(recommendations,
			fmt.Sprintf("Check the calculation trace of %v: some steps faulted and counted as zero", names))
	}

	return recommendations
}
