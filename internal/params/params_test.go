package params

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func get(t *testing.T, seed domain.Seed, name string) decimal.Decimal {
	t.Helper()
	v, ok := seed.Get(name)
	require.True(t, ok, "seed has no field %s", name)
	return v
}

func TestSeedFieldsMatchRuleSets(t *testing.T) {
	reg := Default()
	assert.Equal(t, rules.Default().Years(), reg.Years())

	for _, year := range reg.Years() {
		set, err := rules.Default().Get(year)
		require.NoError(t, err)

		for _, state := range []*domain.FinancialState{nil, {}, sampleTotalsState(), sampleAccountsState()} {
			if state != nil {
				state.FiscalYear = ""
			}
			seed, err := reg.Build(year, state)
			require.NoError(t, err)
			assert.Equal(t, set.SeedFields, seed.Names(), "year %s", year)
		}
	}
}

func TestEmptyStateYieldsZeros(t *testing.T) {
	for _, year := range Default().Years() {
		for _, state := range []*domain.FinancialState{nil, {FiscalYear: year}} {
			seed, err := Default().Build(year, state)
			require.NoError(t, err)
			for _, f := range seed {
				assert.True(t, f.Value.IsZero(), "%s %s", year, f.Name)
			}
		}
	}
}

func TestUnsupportedYear(t *testing.T) {
	_, err := Default().Build("1999", sampleTotalsState())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFiscalYear))
}

func TestBuild2024FromTotals(t *testing.T) {
	state := sampleTotalsState()
	seed, err := Default().Build("2024", state)
	require.NoError(t, err)

	assert.True(t, get(t, seed, domain.FieldSales).Equal(dec(100_000_000)))
	assert.True(t, get(t, seed, domain.FieldExpenses).Equal(dec(80_000_000)))
	assert.True(t, get(t, seed, domain.FieldPreviousEnterpriseTax).Equal(dec(500_000)))
	assert.True(t, get(t, seed, domain.FieldPerCapitaLevy).Equal(dec(70_000)))
	assert.True(t, get(t, seed, domain.FieldInvoiceRegistered).Equal(dec(1)))
}

func TestBuild2025FromTaggedAccounts(t *testing.T) {
	seed, err := Default().Build("2025", sampleAccountsState())
	require.NoError(t, err)

	assert.True(t, get(t, seed, domain.FieldSales).Equal(dec(90_000_000)), "untagged revenue is excluded")
	assert.True(t, get(t, seed, domain.FieldExpenses).Equal(dec(60_000_000)), "untagged expense is excluded")
	assert.True(t, get(t, seed, domain.FieldCorporateTaxDeduction).Equal(dec(150_000)))
	assert.True(t, get(t, seed, domain.FieldLossCarryforward).Equal(dec(2_000_000)))
	assert.True(t, get(t, seed, domain.FieldPreviousEnterpriseTax).Equal(dec(400_000)), "other seeds come from totals")
}

func TestBuild2025FallsBackToTotals(t *testing.T) {
	state := sampleTotalsState()
	state.FiscalYear = "2025"
	state.Totals.LossCarryforward = dec(1_000_000)

	seed, err := Default().Build("2025", state)
	require.NoError(t, err)
	assert.True(t, get(t, seed, domain.FieldSales).Equal(dec(100_000_000)))
	assert.True(t, get(t, seed, domain.FieldLossCarryforward).Equal(dec(1_000_000)))
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		year  string
		state *domain.FinancialState
		field string
	}{
		{"year mismatch", "2024", &domain.FinancialState{FiscalYear: "2023"}, "fiscal_year"},
		{"negative total", "2024", &domain.FinancialState{Totals: &domain.Totals{Sales: dec(-1)}}, "totals.sales"},
		{"negative employees", "2023", &domain.FinancialState{Company: &domain.CompanyProfile{Employees: -3}}, "company.employees"},
		{"unknown account type", "2025", &domain.FinancialState{Accounts: []domain.AccountBalance{{Code: "1", Type: "income"}}}, "accounts[0].type"},
		{"negative tagged sum", "2025", &domain.FinancialState{Accounts: []domain.AccountBalance{
			{Code: "4100", Type: domain.AccountRevenue, Category: domain.CategoryBusinessRevenue, Amount: dec(-10)},
		}}, "accounts[business_revenue]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().Build(tt.year, tt.state)
			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr), "got %v", err)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestPerCapitaLevy(t *testing.T) {
	tests := []struct {
		capital   int64
		employees int
		want      int64
	}{
		{10_000_000, 50, 70_000},
		{10_000_000, 51, 140_000},
		{10_000_001, 10, 180_000},
		{100_000_000, 100, 200_000},
		{1_000_000_000, 5, 290_000},
		{5_000_000_000, 60, 2_290_000},
		{6_000_000_000, 1, 1_210_000},
		{6_000_000_000, 500, 3_800_000},
	}
	for _, tt := range tests {
		got := PerCapitaLevy(&domain.CompanyProfile{Capital: dec(tt.capital), Employees: tt.employees})
		assert.True(t, got.Equal(dec(tt.want)), "capital %d employees %d: got %s", tt.capital, tt.employees, got)
	}
	assert.True(t, PerCapitaLevy(nil).IsZero())
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("2030", Build2024))
	assert.Error(t, reg.Register("2030", Build2024))
	assert.Error(t, reg.Register("30", Build2024))
	assert.Error(t, reg.Register("2031", nil))
	assert.Panics(t, func() { reg.MustRegister("2030", Build2024) })
}

func sampleTotalsState() *domain.FinancialState {
	return &domain.FinancialState{
		FiscalYear: "2024",
		Company:    &domain.CompanyProfile{Name: "Sakura Trading", Capital: dec(5_000_000), Employees: 12, InvoiceRegistered: true},
		Totals: &domain.Totals{
			Sales:                 dec(100_000_000),
			Expenses:              dec(80_000_000),
			PreviousEnterpriseTax: dec(500_000),
			NationalWithheldTax:   dec(200_000),
			LocalWithheldTax:      dec(100_000),
		},
	}
}

func sampleAccountsState() *domain.FinancialState {
	return &domain.FinancialState{
		FiscalYear: "2025",
		Company:    &domain.CompanyProfile{Capital: dec(30_000_000), Employees: 8},
		Totals:     &domain.Totals{PreviousEnterpriseTax: dec(400_000), Sales: dec(1)},
		Accounts: []domain.AccountBalance{
			{Code: "4100", Name: "Product sales", Type: domain.AccountRevenue, Category: domain.CategoryBusinessRevenue, Amount: dec(80_000_000)},
			{Code: "4200", Name: "Service revenue", Type: domain.AccountRevenue, Category: domain.CategoryBusinessRevenue, Amount: dec(10_000_000)},
			{Code: "7100", Name: "Interest income", Type: domain.AccountRevenue, Amount: dec(3_000_000)},
			{Code: "5100", Name: "Purchases", Type: domain.AccountExpense, Category: domain.CategoryIncludeExpense, Amount: dec(45_000_000)},
			{Code: "6100", Name: "Salaries", Type: domain.AccountExpense, Category: domain.CategoryIncludeExpense, Amount: dec(15_000_000)},
			{Code: "6900", Name: "Corporate taxes", Type: domain.AccountExpense, Amount: dec(1_200_000)},
			{Code: "1500", Name: "Prepaid withholding", Type: domain.AccountAsset, Category: domain.CategoryDeductibleFromTax, Amount: dec(150_000)},
			{Code: "3300", Name: "Loss carried forward", Type: domain.AccountEquity, Category: domain.CategoryFiscalCarryover, Amount: dec(2_000_000)},
		},
	}
}
