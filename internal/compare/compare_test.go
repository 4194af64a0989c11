package compare

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseState() *domain.FinancialState {
	return &domain.FinancialState{
		FiscalYear: "2024",
		Totals: &domain.Totals{
			Sales:                 decimal.NewFromInt(100_000_000),
			Expenses:              decimal.NewFromInt(80_000_000),
			PreviousEnterpriseTax: decimal.NewFromInt(500_000),
			NationalWithheldTax:   decimal.NewFromInt(200_000),
			LocalWithheldTax:      decimal.NewFromInt(100_000),
		},
	}
}

func TestCompareTemplatesAndTransforms(t *testing.T) {
	engine := NewCompareEngine(simulation.New())

	compSet, err := engine.Compare(context.Background(), baseState(), CompareOptions{
		Templates:  []string{"sales_down_10pct"},
		Transforms: []string{"adjust_total:field=expenses,amount=3000000"},
	})
	require.NoError(t, err)

	require.NotNil(t, compSet.BaseResult)
	assert.Equal(t, "base", compSet.BaseScenarioName)
	assert.Equal(t, int64(6_122_100), compSet.BaseResult.TotalTax)
	assert.Equal(t, int64(4_066_400), compSet.BaseResult.NationalTaxDue)
	assert.Equal(t, int64(1_755_700), compSet.BaseResult.LocalTaxDue)
	assert.Equal(t, "exempt", compSet.BaseResult.ConsumptionStatus)

	require.Len(t, compSet.AlternativeResults, 2)
	down := compSet.AlternativeResults[0]
	assert.Equal(t, "sales_down_10pct", down.ScenarioName)
	assert.Equal(t, int64(2_441_700), down.TotalTax)
	assert.Equal(t, int64(2_441_700-6_122_100), down.TotalDiffFromBase)
	assert.True(t, down.TotalPctFromBase.IsNegative())

	adjusted := compSet.AlternativeResults[1]
	assert.Equal(t, "adjust_total", adjusted.ScenarioName)
	assert.Equal(t, "Adjust expenses by +¥3,000,000", adjusted.Description)
	assert.Equal(t, int64(5_018_000), adjusted.TotalTax)

	var corporate LineDiff
	for _, d := range adjusted.LineDiffs {
		if d.TaxName == rules.LineCorporateTax {
			corporate = d
		}
	}
	assert.Equal(t, int64(4_266_400), corporate.Base)
	assert.Equal(t, int64(3_498_700), corporate.Amount)
	assert.Equal(t, int64(-767_700), corporate.Diff)

	require.NotEmpty(t, compSet.Recommendations)
	assert.Equal(t, "Lowest liability: sales_down_10pct saves ¥3,680,400 against base", compSet.Recommendations[0])
}

func TestCompareOtherYear(t *testing.T) {
	sim := simulation.New()
	engine := NewCompareEngine(sim)
	state := baseState()

	compSet, err := engine.Compare(context.Background(), state, CompareOptions{
		Year:      "2023",
		Templates: []string{"sales_down_10pct"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024", state.FiscalYear, "the caller's state is left alone")

	moved := baseState()
	moved.FiscalYear = "2023"
	want, err := sim.Calculate(context.Background(), "2023", moved)
	require.NoError(t, err)
	assert.Equal(t, want.Total(), compSet.BaseResult.TotalTax)
	require.Len(t, compSet.AlternativeResults, 1)
}

func TestCompareErrors(t *testing.T) {
	engine := NewCompareEngine(simulation.New())
	ctx := context.Background()

	_, err := engine.Compare(ctx, nil, CompareOptions{})
	assert.Error(t, err)

	_, err = engine.Compare(ctx, baseState(), CompareOptions{Templates: []string{"postpone_1yr"}})
	assert.EqualError(t, err, "template postpone_1yr not found")

	_, err = engine.Compare(ctx, baseState(), CompareOptions{Transforms: []string{"adjust_total"}})
	assert.Error(t, err)

	_, err = engine.Compare(ctx, baseState(), CompareOptions{Transforms: []string{"adjust_total:field=sales,amount=-500000000"}})
	assert.ErrorContains(t, err, "failed to apply adjust_total")

	_, err = engine.Compare(ctx, baseState(), CompareOptions{Year: "1999"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFiscalYear)
}

func TestCompareYears(t *testing.T) {
	engine := NewCompareEngine(simulation.New())

	compSet, err := engine.CompareYears(context.Background(), "2024", []string{"2023", "2025", "2026"},
		simulation.SameState(baseState()))
	require.NoError(t, err)

	assert.Equal(t, "FY2024", compSet.BaseScenarioName)
	require.Len(t, compSet.AlternativeResults, 3)
	for _, alt := range compSet.AlternativeResults {
		assert.Zero(t, alt.TotalDiffFromBase, alt.ScenarioName)
	}

	fy2026 := compSet.AlternativeResults[2]
	assert.Equal(t, "2026", fy2026.FiscalYear)
	diffs := map[string]int64{}
	for _, d := range fy2026.LineDiffs {
		diffs[d.TaxName] = d.Diff
	}
	assert.Equal(t, int64(4_266_400), diffs[rules.LineCorporateTaxDefense], "renamed line is new against the base")
	assert.Equal(t, int64(-4_266_400), diffs[rules.LineCorporateTax], "old line is gone")
	assert.Empty(t, compSet.Recommendations)
}

func reportWith(year string, total int64, status int64, faults int) *domain.Report {
	return &domain.Report{
		FiscalYear: year,
		Lines:      []domain.TaxLine{{TaxName: "Consumption Tax", TaxAmount: total}, {TaxName: domain.TotalLineName, TaxAmount: total}},
		Trace:      []domain.TraceEntry{{StepID: domain.FieldConsumptionTaxStatus, Value: decimal.NewFromInt(status)}},
		Faults:     faults,
	}
}

func TestGenerateRecommendations(t *testing.T) {
	mc := NewMetricsCalculator()
	base := mc.CalculateMetrics("base", reportWith("2024", 1_000_000, domain.ConsumptionTaxStandard, 0))
	cheaper := mc.CalculateComparison(mc.CalculateMetrics("cheaper", reportWith("2024", 400_000, domain.ConsumptionTaxTwoTenths, 0)), base)
	dearer := mc.CalculateComparison(mc.CalculateMetrics("dearer", reportWith("2024", 1_500_000, domain.ConsumptionTaxStandard, 2)), base)

	assert.Equal(t, "standard", base.ConsumptionStatus)
	assert.Equal(t, "two-tenths", cheaper.ConsumptionStatus)
	assert.True(t, cheaper.TotalPctFromBase.Equal(decimal.NewFromInt(-60)))

	recs := GenerateRecommendations(&ComparisonSet{
		BaseScenarioName:   "base",
		BaseResult:         &base,
		AlternativeResults: []ComparisonResult{cheaper, dearer},
	})
	assert.Equal(t, []string{
		"Lowest liability: cheaper saves ¥600,000 against base",
		"Highest liability: dearer costs ¥500,000 more than base",
		"Consumption tax filing changes under cheaper: standard -> two-tenths",
		"Check the calculation trace of [dearer]: some steps faulted and counted as zero",
	}, recs)

	assert.Empty(t, GenerateRecommendations(&ComparisonSet{BaseResult: &base}))
}

func TestCalculateMetricsWithoutTrace(t *testing.T) {
	result := NewMetricsCalculator().CalculateMetrics("bare", &domain.Report{FiscalYear: "2023"})
	assert.Equal(t, "n/a", result.ConsumptionStatus)
	assert.Zero(t, result.TotalTax)
}

func sampleSet(t *testing.T) *ComparisonSet {
	t.Helper()
	compSet, err := NewCompareEngine(simulation.New()).Compare(context.Background(), baseState(), CompareOptions{
		Templates: []string{"sales_down_10pct"},
	})
	require.NoError(t, err)
	compSet.ConfigPath = "state.yaml"
	return compSet
}

func TestTableFormatter(t *testing.T) {
	tf := &TableFormatter{}
	out := tf.Format(sampleSet(t))

	assert.Contains(t, out, "CORPORATE TAX COMPARISON")
	assert.Contains(t, out, "Input: state.yaml")
	assert.Contains(t, out, "base (base)")
	assert.Contains(t, out, "¥6,122,100")
	assert.Contains(t, out, "Total Tax:  -¥3,680,400")
	assert.Contains(t, out, "OBSERVATIONS")

	compact := tf.FormatCompact(sampleSet(t))
	assert.Equal(t, "Base: base ¥6,122,100 | sales_down_10pct: -¥3,680,400", compact)

	assert.Equal(t, "abcde...", tf.truncate("abcdefghijk", 8))
	assert.Equal(t, "+", tf.deltaSymbol(1))
	assert.Equal(t, "", tf.deltaSymbol(-1))
}

func TestCSVFormatter(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(sampleSet(t))
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Case", records[0][0])
	assert.Equal(t, []string{"base", "base", "2024", "6122100", "4066400", "1755700", "exempt", "0", "0", "0.00"}, records[1])
	assert.Equal(t, "-3680400", records[2][8])
}

func TestJSONFormatter(t *testing.T) {
	out, err := (&JSONFormatter{Pretty: true}).Format(sampleSet(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "base", decoded["baseScenarioName"])
	assert.NotContains(t, decoded, "reports")

	out, err = (&JSONFormatter{IncludeReports: true}).Format(sampleSet(t))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	reports, ok := decoded["reports"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, reports, "sales_down_10pct")
}
