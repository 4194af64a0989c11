package params

import (
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

var baseFields = []string{
	domain.FieldSales,
	domain.FieldExpenses,
	domain.FieldPreviousEnterpriseTax,
	domain.FieldNationalWithheldTax,
	domain.FieldLocalWithheldTax,
	domain.FieldCorporateTaxDeduction,
	domain.FieldPerCapitaLevy,
	domain.FieldBasePeriodSales,
	domain.FieldTaxablePurchases,
}

// fromTotals fills the fields every year shares from the flat totals and the
// company profile.
func fromTotals(state *domain.FinancialState, extra ...string) domain.Seed {
	seed := domain.ZeroSeed(append(append([]string(nil), baseFields...), extra...)...)
	if state == nil {
		return seed
	}

	t := state.TotalsOrZero()
	seed.Set(domain.FieldSales, t.Sales)
	seed.Set(domain.FieldExpenses, t.Expenses)
	seed.Set(domain.FieldPreviousEnterpriseTax, t.PreviousEnterpriseTax)
	seed.Set(domain.FieldNationalWithheldTax, t.NationalWithheldTax)
	seed.Set(domain.FieldLocalWithheldTax, t.LocalWithheldTax)
	seed.Set(domain.FieldCorporateTaxDeduction, t.CorporateTaxDeduction)
	seed.Set(domain.FieldPerCapitaLevy, PerCapitaLevy(state.Company))
	seed.Set(domain.FieldBasePeriodSales, t.BasePeriodSales)
	seed.Set(domain.FieldTaxablePurchases, t.TaxablePurchases)
	return seed
}

func invoiceFlag(state *domain.FinancialState) decimal.Decimal {
	if state != nil && state.Company != nil && state.Company.InvoiceRegistered {
		return decimal.NewFromInt(1)
	}
	return decimal.Zero
}

// Build2023 reads the flat totals.
func Build2023(state *domain.FinancialState) (domain.Seed, error) {
	return fromTotals(state), nil
}

// Build2024 reads the flat totals and the invoice registration flag.
func Build2024(state *domain.FinancialState) (domain.Seed, error) {
	seed := fromTotals(state, domain.FieldInvoiceRegistered)
	seed.Set(domain.FieldInvoiceRegistered, invoiceFlag(state))
	return seed, nil
}

// Build2025 derives sales, expenses, the corporate tax deduction and the loss
// carry-forward from tagged account lines. Only lines carrying the matching
// category tag count. When the state has no account breakdown at all, the
// flat totals are used instead.
func Build2025(state *domain.FinancialState) (domain.Seed, error) {
	return fromAccounts(state)
}

// Build2026 uses the same inputs as 2025.
func Build2026(state *domain.FinancialState) (domain.Seed, error) {
	return fromAccounts(state)
}

func fromAccounts(state *domain.FinancialState) (domain.Seed, error) {
	seed := fromTotals(state, domain.FieldInvoiceRegistered, domain.FieldLossCarryforward)
	seed.Set(domain.FieldInvoiceRegistered, invoiceFlag(state))
	if state == nil {
		return seed, nil
	}

	if len(state.Accounts) == 0 {
		seed.Set(domain.FieldLossCarryforward, state.TotalsOrZero().LossCarryforward)
		return seed, nil
	}

	derived := []struct {
		field    string
		value    decimal.Decimal
		category string
	}{
		{domain.FieldSales, state.SumByCategory(domain.AccountRevenue, domain.CategoryBusinessRevenue), domain.CategoryBusinessRevenue},
		{domain.FieldExpenses, state.SumByCategory(domain.AccountExpense, domain.CategoryIncludeExpense), domain.CategoryIncludeExpense},
		{domain.FieldCorporateTaxDeduction, state.SumByCategory(domain.AccountAsset, domain.CategoryDeductibleFromTax), domain.CategoryDeductibleFromTax},
		{domain.FieldLossCarryforward, carryover(state), domain.CategoryFiscalCarryover},
	}
	for _, d := range derived {
		if d.value.IsNegative() {
			return nil, negative("accounts["+d.category+"]", d.value)
		}
		seed.Set(d.field, d.value)
	}
	return seed, nil
}

// carryover sums lines of any type tagged as fiscal carry-over.
func carryover(state *domain.FinancialState) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range state.Accounts {
		if a.Category == domain.CategoryFiscalCarryover {
			sum = sum.Add(a.Amount)
		}
	}
	return sum
}
