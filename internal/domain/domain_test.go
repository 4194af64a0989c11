package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiscalYear(t *testing.T) {
	n, err := ParseFiscalYear("2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, n)

	for _, bad := range []string{"", "24", "20x4", "20245", "0999"} {
		_, err := ParseFiscalYear(bad)
		var inputErr *InputError
		assert.True(t, errors.As(err, &inputErr), "expected InputError for %q", bad)
	}
}

func TestFiscalYearPeriod(t *testing.T) {
	start, end, err := FiscalYearPeriod("2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestUnsupportedYearError(t *testing.T) {
	err := UnsupportedYearError("rules", "1999")
	assert.True(t, errors.Is(err, ErrUnsupportedFiscalYear))
	assert.Contains(t, err.Error(), "1999")
}

func TestSumByCategory(t *testing.T) {
	state := &FinancialState{
		Accounts: []AccountBalance{
			{Code: "4100", Type: AccountRevenue, Category: CategoryBusinessRevenue, Amount: decimal.NewFromInt(1000)},
			{Code: "4200", Type: AccountRevenue, Amount: decimal.NewFromInt(50)},
			{Code: "4300", Type: AccountRevenue, Category: CategoryBusinessRevenue, Amount: decimal.NewFromInt(200)},
			{Code: "5100", Type: AccountExpense, Category: CategoryBusinessRevenue, Amount: decimal.NewFromInt(999)},
		},
	}

	assert.True(t, state.SumByCategory(AccountRevenue, CategoryBusinessRevenue).Equal(decimal.NewFromInt(1200)))
	assert.Len(t, state.AccountsByType(AccountRevenue), 3)
	assert.True(t, state.SumByCategory(AccountAsset, CategoryDeductibleFromTax).IsZero())
}

func TestFinancialStateIsEmpty(t *testing.T) {
	var nilState *FinancialState
	assert.True(t, nilState.IsEmpty())
	assert.True(t, (&FinancialState{FiscalYear: "2024"}).IsEmpty())
	assert.False(t, (&FinancialState{Totals: &Totals{}}).IsEmpty())
	assert.Equal(t, Totals{}, nilState.TotalsOrZero())
}

func TestSeedSetAndGet(t *testing.T) {
	s := ZeroSeed(FieldSales, FieldExpenses)
	s.Set(FieldSales, decimal.NewFromInt(10))
	s.Set(FieldLossCarryforward, decimal.NewFromInt(3))

	v, ok := s.Get(FieldSales)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{FieldSales, FieldExpenses, FieldLossCarryforward}, s.Names())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestReportLookups(t *testing.T) {
	r := &Report{
		Lines: []TaxLine{{TaxName: "Consumption Tax", TaxAmount: 10}, {TaxName: TotalLineName, TaxAmount: 10}},
		Trace: []TraceEntry{{StepID: FieldTaxableIncome}},
	}
	assert.Equal(t, int64(10), r.Total())
	_, ok := r.Line("Consumption Tax")
	assert.True(t, ok)
	_, ok = r.TraceFor(FieldTaxableIncome)
	assert.True(t, ok)

	var empty *Report
	assert.Equal(t, int64(0), empty.Total())
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, AccountExpense.Valid())
	assert.False(t, AccountType("income").Valid())
}

func TestFinancialStateDeepCopy(t *testing.T) {
	var nilState *FinancialState
	assert.Nil(t, nilState.DeepCopy())

	original := &FinancialState{
		FiscalYear: "2025",
		Company:    &CompanyProfile{Name: "Sakura", Employees: 3},
		Totals:     &Totals{Sales: decimal.NewFromInt(100)},
		Accounts:   []AccountBalance{{Code: "4100", Type: AccountRevenue, Amount: decimal.NewFromInt(100)}},
	}
	c := original.DeepCopy()
	c.Company.Employees = 10
	c.Totals.Sales = decimal.NewFromInt(1)
	c.Accounts[0].Amount = decimal.NewFromInt(1)

	assert.Equal(t, 3, original.Company.Employees)
	assert.True(t, original.Totals.Sales.Equal(decimal.NewFromInt(100)))
	assert.True(t, original.Accounts[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2025", c.FiscalYear)
}
