package params

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// ValidateState rejects malformed input before any calculation runs. A nil
// state is valid and means "no data".
func ValidateState(year string, state *domain.FinancialState) error {
	if state == nil {
		return nil
	}
	if state.FiscalYear != "" && state.FiscalYear != year {
		return &domain.InputError{
			Field:  "fiscal_year",
			Reason: fmt.Sprintf("state is for %s, requested %s", state.FiscalYear, year),
		}
	}

	if c := state.Company; c != nil {
		if c.Employees < 0 {
			return &domain.InputError{Field: "company.employees", Reason: fmt.Sprintf("must not be negative, got %d", c.Employees)}
		}
		if c.Capital.IsNegative() {
			return negative("company.capital", c.Capital)
		}
	}

	if t := state.Totals; t != nil {
		for _, f := range []struct {
			name  string
			value decimal.Decimal
		}{
			{"totals.sales", t.Sales},
			{"totals.expenses", t.Expenses},
			{"totals.previous_enterprise_tax", t.PreviousEnterpriseTax},
			{"totals.national_withheld_tax", t.NationalWithheldTax},
			{"totals.local_withheld_tax", t.LocalWithheldTax},
			{"totals.corporate_tax_deduction", t.CorporateTaxDeduction},
			{"totals.taxable_purchases", t.TaxablePurchases},
			{"totals.base_period_sales", t.BasePeriodSales},
			{"totals.loss_carryforward", t.LossCarryforward},
		} {
			if f.value.IsNegative() {
				return negative(f.name, f.value)
			}
		}
	}

	for i, a := range state.Accounts {
		if !a.Type.Valid() {
			return &domain.InputError{
				Field:  fmt.Sprintf("accounts[%d].type", i),
				Reason: fmt.Sprintf("unknown account type %q", a.Type),
			}
		}
	}
	return nil
}

func negative(field string, v decimal.Decimal) error {
	return &domain.InputError{Field: field, Reason: fmt.Sprintf("must not be negative, got %s", v.String())}
}
