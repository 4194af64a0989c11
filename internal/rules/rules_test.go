package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, set StepSet, inputs map[string]int64) *calculation.Outcome {
	t.Helper()
	seed := domain.ZeroSeed(set.SeedFields...)
	for k, v := range inputs {
		require.Contains(t, set.SeedFields, k, "unknown seed field for %s", set.Year)
		seed.Set(k, decimal.NewFromInt(v))
	}
	out, err := calculation.NewEngine().Run(context.Background(), set.Steps, seed)
	require.NoError(t, err)
	require.Zero(t, out.Faults, "built-in rules should not fault: %+v", out.Trace)
	return out
}

func assertValue(t *testing.T, out *calculation.Outcome, key string, want int64) {
	t.Helper()
	got := out.Context.Get(key)
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s: want %d, got %s", key, want, got.String())
}

func lineAmount(t *testing.T, lines []domain.TaxLine, name string) int64 {
	t.Helper()
	l, ok := lo.Find(lines, func(l domain.TaxLine) bool { return l.TaxName == name })
	require.True(t, ok, "missing line %q", name)
	return l.TaxAmount
}

var scenario2024 = map[string]int64{
	domain.FieldSales:                 100_000_000,
	domain.FieldExpenses:              80_000_000,
	domain.FieldPreviousEnterpriseTax: 500_000,
	domain.FieldNationalWithheldTax:   200_000,
	domain.FieldLocalWithheldTax:      100_000,
	domain.FieldCorporateTaxDeduction: 0,
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"2023", "2024", "2025", "2026"}, reg.Years())
	assert.Same(t, reg, Default(), "default registry is built once")

	for _, year := range reg.Years() {
		steps, err := reg.Steps(year)
		require.NoError(t, err)
		assert.NotEmpty(t, steps)
	}
}

func TestUnsupportedYear(t *testing.T) {
	steps, err := Default().Steps("1999")
	require.Error(t, err)
	assert.Nil(t, steps)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFiscalYear))

	_, err = Default().Get("2027")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFiscalYear))
}

func TestStepsReturnsCopy(t *testing.T) {
	steps, err := Default().Steps("2024")
	require.NoError(t, err)
	steps[0] = calculation.Step{ID: "tampered"}

	again, err := Default().Steps("2024")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldTaxableIncome, again[0].ID)
}

func TestStaticDependencyOrder(t *testing.T) {
	for _, set := range []StepSet{Rules2023(), Rules2024(), Rules2025(), Rules2026()} {
		t.Run(set.Year, func(t *testing.T) {
			require.NoError(t, Validate(set))

			seen := lo.SliceToMap(set.SeedFields, func(f string) (string, bool) { return f, true })
			for _, s := range set.Steps {
				for _, r := range s.Reads {
					assert.True(t, seen[r], "step %s reads %s before it is written", s.ID, r)
				}
				seen[s.ID] = true
			}
		})
	}
}

func TestDynamicReadsWithinDeclared(t *testing.T) {
	inputs := []map[string]int64{
		scenario2024,
		{domain.FieldSales: 110_000_000, domain.FieldBasePeriodSales: 20_000_000, domain.FieldTaxablePurchases: 55_000_000},
		{domain.FieldSales: 1_000, domain.FieldExpenses: 5_000},
	}
	for _, set := range []StepSet{Rules2023(), Rules2024(), Rules2025(), Rules2026()} {
		for _, in := range inputs {
			out := run(t, set, in)
			for _, s := range set.Steps {
				extra, _ := lo.Difference(out.Reads[s.ID], s.Reads)
				assert.Empty(t, extra, "%s step %s read undeclared fields", set.Year, s.ID)
			}
		}
	}
}

func TestScenario2024(t *testing.T) {
	set := Rules2024()
	out := run(t, set, scenario2024)

	assertValue(t, out, domain.FieldTaxableIncome, 19_500_000)
	assertValue(t, out, domain.FieldTaxableIncomeRounded, 19_500_000)
	assert.True(t, out.Context.Get(domain.FieldCorporateTaxRate).Equal(decimal.RequireFromString("0.232")))
	assertValue(t, out, domain.FieldCorporateTax, 3_868_000)
	assertValue(t, out, domain.FieldCorporateTaxPayable, 3_868_000)
	assertValue(t, out, domain.FieldLocalCorporateTax, 398_400)
	assertValue(t, out, domain.FieldResidentTax, 270_700)
	assertValue(t, out, domain.FieldEnterpriseTax, 1_157_000)
	assertValue(t, out, domain.FieldSpecialLocalCorporateTax, 428_000)
	assertValue(t, out, domain.FieldConsumptionTax, 0)
	assertValue(t, out, domain.FieldNationalTaxDue, 4_066_400)
	assertValue(t, out, domain.FieldLocalTaxDue, 1_755_700)

	lines := set.Project(out.Context)
	require.Len(t, lines, 5)
	assert.Equal(t, int64(4_266_400), lineAmount(t, lines, LineCorporateTax))
	assert.Equal(t, int64(270_700), lineAmount(t, lines, LineResidentTax))
	assert.Equal(t, int64(1_585_000), lineAmount(t, lines, LineEnterpriseTax))
	assert.Equal(t, int64(0), lineAmount(t, lines, LineConsumptionTax))
	assert.Equal(t, domain.TotalLineName, lines[4].TaxName)
	assert.Equal(t, int64(6_122_100), lines[4].TaxAmount)

	settle := set.Settle(out.Context)
	assert.Equal(t, int64(4_066_400), lineAmount(t, settle, LineNationalTaxDue))
	assert.Equal(t, int64(1_755_700), lineAmount(t, settle, LineLocalTaxDue))
}

func TestCorporateRateBoundary(t *testing.T) {
	tests := []struct {
		name     string
		income   int64
		wantRate string
		wantTax  int64
	}{
		{"exactly threshold", 8_000_000, "0.15", 1_200_000},
		{"below after rounding", 8_000_999, "0.15", 1_200_000},
		{"above threshold", 8_001_000, "0.232", 1_200_232},
		{"small", 999, "0.15", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, Rules2024(), map[string]int64{domain.FieldSales: tt.income})
			assert.True(t, out.Context.Get(domain.FieldCorporateTaxRate).Equal(decimal.RequireFromString(tt.wantRate)))
			assertValue(t, out, domain.FieldCorporateTax, tt.wantTax)
		})
	}
}

func TestNegativeIncomeClampsToZero(t *testing.T) {
	out := run(t, Rules2023(), map[string]int64{domain.FieldSales: 1_000, domain.FieldExpenses: 5_000})
	assertValue(t, out, domain.FieldTaxableIncome, 0)
	assertValue(t, out, domain.FieldEnterpriseTax, 0)
}

func TestCorporateTaxCredit(t *testing.T) {
	out := run(t, Rules2024(), map[string]int64{
		domain.FieldSales:                 10_000_000,
		domain.FieldCorporateTaxDeduction: 99_999_999,
	})
	assertValue(t, out, domain.FieldCorporateTax, 1_664_000)
	assertValue(t, out, domain.FieldCorporateTaxCredit, 1_664_000)
	assertValue(t, out, domain.FieldCorporateTaxPayable, 0)
}

func TestConsumptionTax(t *testing.T) {
	t.Run("standard method", func(t *testing.T) {
		set := Rules2024()
		out := run(t, set, map[string]int64{
			domain.FieldSales:            110_000_000,
			domain.FieldBasePeriodSales:  20_000_000,
			domain.FieldTaxablePurchases: 55_000_000,
		})
		assertValue(t, out, domain.FieldConsumptionTaxStatus, domain.ConsumptionTaxStandard)
		assertValue(t, out, domain.FieldOutputConsumptionTax, 7_800_000)
		assertValue(t, out, domain.FieldInputConsumptionTax, 3_900_000)
		assertValue(t, out, domain.FieldConsumptionTax, 3_900_000)
		assertValue(t, out, domain.FieldLocalConsumptionTax, 1_100_000)
		assert.Equal(t, int64(5_000_000), lineAmount(t, set.Project(out.Context), LineConsumptionTax))
	})

	t.Run("two-tenths special", func(t *testing.T) {
		out := run(t, Rules2024(), map[string]int64{
			domain.FieldSales:             11_000_000,
			domain.FieldBasePeriodSales:   5_000_000,
			domain.FieldInvoiceRegistered: 1,
		})
		assertValue(t, out, domain.FieldConsumptionTaxStatus, domain.ConsumptionTaxTwoTenths)
		assertValue(t, out, domain.FieldOutputConsumptionTax, 780_000)
		assertValue(t, out, domain.FieldConsumptionTax, 156_000)
		assertValue(t, out, domain.FieldLocalConsumptionTax, 44_000)
	})

	t.Run("2023 has no two-tenths special", func(t *testing.T) {
		out := run(t, Rules2023(), map[string]int64{
			domain.FieldSales:           11_000_000,
			domain.FieldBasePeriodSales: 5_000_000,
		})
		assertValue(t, out, domain.FieldConsumptionTaxStatus, domain.ConsumptionTaxExempt)
		assertValue(t, out, domain.FieldConsumptionTax, 0)
	})
}

func TestLossCarryforward2025(t *testing.T) {
	out := run(t, Rules2025(), map[string]int64{
		domain.FieldSales:            30_000_000,
		domain.FieldExpenses:         10_000_000,
		domain.FieldLossCarryforward: 5_000_000,
	})
	assertValue(t, out, domain.FieldLossCarryforwardApplied, 5_000_000)
	assertValue(t, out, domain.FieldTaxableIncome, 15_000_000)

	out = run(t, Rules2025(), map[string]int64{
		domain.FieldSales:            30_000_000,
		domain.FieldExpenses:         10_000_000,
		domain.FieldLossCarryforward: 50_000_000,
	})
	assertValue(t, out, domain.FieldLossCarryforwardApplied, 20_000_000)
	assertValue(t, out, domain.FieldTaxableIncome, 0)
}

func TestLargeIncomeReducedRate2025(t *testing.T) {
	inputs := map[string]int64{domain.FieldSales: 2_000_000_000}

	assertValue(t, run(t, Rules2025(), inputs), domain.FieldCorporateTax, 463_504_000)
	assertValue(t, run(t, Rules2024(), inputs), domain.FieldCorporateTax, 463_344_000)
}

func TestDefenseSpecialCorporateTax2026(t *testing.T) {
	set := Rules2026()
	out := run(t, set, map[string]int64{domain.FieldSales: 100_000_000, domain.FieldExpenses: 50_000_000})

	assertValue(t, out, domain.FieldCorporateTaxBase, 10_944_000)
	assertValue(t, out, domain.FieldDefenseSpecialCorporateTax, 237_700)
	assert.Equal(t, int64(12_308_900), lineAmount(t, set.Project(out.Context), LineCorporateTaxDefense))

	small := run(t, set, scenario2024)
	assertValue(t, small, domain.FieldDefenseSpecialCorporateTax, 0)
}

func TestProjectionTotalIsExactSum(t *testing.T) {
	inputs := []map[string]int64{
		scenario2024,
		{domain.FieldSales: 123_456_789, domain.FieldExpenses: 23_456_789, domain.FieldPerCapitaLevy: 70_000,
			domain.FieldBasePeriodSales: 12_000_000, domain.FieldTaxablePurchases: 33_333_333},
		{},
	}
	for _, set := range []StepSet{Rules2023(), Rules2024(), Rules2025(), Rules2026()} {
		for _, in := range inputs {
			lines := set.Project(run(t, set, in).Context)
			require.Len(t, lines, 5)
			sum := lo.SumBy(lines[:4], func(l domain.TaxLine) int64 { return l.TaxAmount })
			assert.Equal(t, sum, lines[4].TaxAmount, "%s total", set.Year)
		}
	}
}

func TestEmptySeedYieldsZero(t *testing.T) {
	for _, set := range []StepSet{Rules2023(), Rules2024(), Rules2025(), Rules2026()} {
		for _, l := range set.Project(run(t, set, nil).Context) {
			assert.Zero(t, l.TaxAmount, "%s %s", set.Year, l.TaxName)
		}
	}
}

func TestRegisterRejectsInvalidSets(t *testing.T) {
	noop := func(calculation.Values) (decimal.Decimal, error) { return decimal.Zero, nil }
	project := standardProjection(false)

	tests := []struct {
		name string
		set  StepSet
	}{
		{"bad year", StepSet{Year: "24", Project: project}},
		{"no projection", StepSet{Year: "2030"}},
		{"forward read", StepSet{Year: "2030", Project: project, SeedFields: []string{"a"},
			Steps: []calculation.Step{{ID: "b", Reads: []string{"c"}, Compute: noop}, {ID: "c", Compute: noop}}}},
		{"shadows seed", StepSet{Year: "2030", Project: project, SeedFields: []string{"a"},
			Steps: []calculation.Step{{ID: "a", Compute: noop}}}},
		{"duplicate id", StepSet{Year: "2030", Project: project,
			Steps: []calculation.Step{{ID: "b", Compute: noop}, {ID: "b", Compute: noop}}}},
		{"missing compute", StepSet{Year: "2030", Project: project, Steps: []calculation.Step{{ID: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.set)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStepSet))
		})
	}

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rules2024()))
	assert.Error(t, reg.Register(Rules2024()), "duplicate year")
	assert.Panics(t, func() { reg.MustRegister(Rules2024()) })
}
