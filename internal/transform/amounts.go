package transform

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

// adjustable describes a totals field that transforms may change. Fields
// that the account-based years derive from tagged lines carry the account
// type and category an adjustment line is booked under.
type adjustable struct {
	get      func(*domain.Totals) *decimal.Decimal
	acctType domain.AccountType
	category string
}

var adjustableFields = map[string]adjustable{
	"sales": {
		get:      func(t *domain.Totals) *decimal.Decimal { return &t.Sales },
		acctType: domain.AccountRevenue, category: domain.CategoryBusinessRevenue,
	},
	"expenses": {
		get:      func(t *domain.Totals) *decimal.Decimal { return &t.Expenses },
		acctType: domain.AccountExpense, category: domain.CategoryIncludeExpense,
	},
	"corporate_tax_deduction": {
		get:      func(t *domain.Totals) *decimal.Decimal { return &t.CorporateTaxDeduction },
		acctType: domain.AccountAsset, category: domain.CategoryDeductibleFromTax,
	},
	"loss_carryforward": {
		get:      func(t *domain.Totals) *decimal.Decimal { return &t.LossCarryforward },
		acctType: domain.AccountAsset, category: domain.CategoryFiscalCarryover,
	},
	"previous_enterprise_tax": {get: func(t *domain.Totals) *decimal.Decimal { return &t.PreviousEnterpriseTax }},
	"national_withheld_tax":   {get: func(t *domain.Totals) *decimal.Decimal { return &t.NationalWithheldTax }},
	"local_withheld_tax":      {get: func(t *domain.Totals) *decimal.Decimal { return &t.LocalWithheldTax }},
	"taxable_purchases":       {get: func(t *domain.Totals) *decimal.Decimal { return &t.TaxablePurchases }},
	"base_period_sales":       {get: func(t *domain.Totals) *decimal.Decimal { return &t.BasePeriodSales }},
}

// AdjustableFields returns the field names accepted by adjust_total and scale_total.
func AdjustableFields() []string {
	names := make([]string, 0, len(adjustableFields))
	for n := range adjustableFields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// adjustmentCode is the account code of the line an adjustment books.
func adjustmentCode(field string) string { return "ADJ-" + field }

func categorySum(state *domain.FinancialState, a adjustable) decimal.Decimal {
	if a.category == domain.CategoryFiscalCarryover {
		sum := decimal.Zero
		for _, acct := range state.Accounts {
			if acct.Category == a.category {
				sum = sum.Add(acct.Amount)
			}
		}
		return sum
	}
	return state.SumByCategory(a.acctType, a.category)
}

// shift moves field by delta wherever the state carries it: in the flat
// totals when they were supplied (or nothing else is), and on the field's
// adjustment line when the state has an account breakdown. Every fiscal
// year's parameter builder then sees the same change.
func shift(state *domain.FinancialState, field string, a adjustable, delta decimal.Decimal) {
	if usesTotals(state, a) {
		if state.Totals == nil {
			state.Totals = &domain.Totals{}
		}
		v := a.get(state.Totals)
		*v = v.Add(delta)
	}
	book(state, field, a, delta)
}

func usesTotals(state *domain.FinancialState, a adjustable) bool {
	return state.Totals != nil || !usesBreakdown(state, a)
}

func usesBreakdown(state *domain.FinancialState, a adjustable) bool {
	return a.category != "" && len(state.Accounts) > 0
}

// book records delta on the field's adjustment line. States without an
// account breakdown, and fields no account category feeds, are left alone.
func book(state *domain.FinancialState, field string, a adjustable, delta decimal.Decimal) {
	if !usesBreakdown(state, a) {
		return
	}
	code := adjustmentCode(field)
	for i := range state.Accounts {
		if state.Accounts[i].Code == code {
			state.Accounts[i].Amount = state.Accounts[i].Amount.Add(delta)
			return
		}
	}
	state.Accounts = append(state.Accounts, domain.AccountBalance{
		Code:     code,
		Name:     "What-if adjustment: " + field,
		Type:     a.acctType,
		Category: a.category,
		Amount:   delta,
	})
}

func lookupField(name, field string) (adjustable, error) {
	a, ok := adjustableFields[field]
	if !ok {
		return adjustable{}, NewTransformError(name, "validate", fmt.Sprintf("unknown field %q", field), nil)
	}
	return a, nil
}

// LowestAdjustment returns the most negative amount adjust_total can add to
// field without any view of it (flat total or tagged lines) going below zero.
func LowestAdjustment(state *domain.FinancialState, field string) (decimal.Decimal, error) {
	a, err := lookupField("adjust_total", field)
	if err != nil {
		return decimal.Zero, err
	}
	if state == nil {
		return decimal.Zero, nil
	}
	var current []decimal.Decimal
	if usesBreakdown(state, a) {
		current = append(current, categorySum(state, a))
	}
	if usesTotals(state, a) {
		t := state.TotalsOrZero()
		current = append(current, *a.get(&t))
	}
	return decimal.Min(current[0], current[1:]...).Neg(), nil
}

// AdjustTotal adds a (possibly negative) amount to one input figure, e.g.
// "what if expenses were ¥3,000,000 higher".
type AdjustTotal struct {
	Field  string
	Amount decimal.Decimal
}

func (at *AdjustTotal) Name() string { return "adjust_total" }

func (at *AdjustTotal) Description() string {
	sign := "+"
	if at.Amount.IsNegative() {
		sign = ""
	}
	return fmt.Sprintf("Adjust %s by %s%s", at.Field, sign, yen.FormatCurrency(at.Amount))
}

func (at *AdjustTotal) Validate(base *domain.FinancialState) error {
	if base == nil {
		return NewTransformError(at.Name(), "validate", "base state cannot be nil", nil)
	}
	a, err := lookupField(at.Name(), at.Field)
	if err != nil {
		return err
	}
	if usesBreakdown(base, a) {
		if after := categorySum(base, a).Add(at.Amount); after.IsNegative() {
			return NewTransformError(at.Name(), "validate",
				fmt.Sprintf("tagged %s lines would sum to %s", a.category, after.String()), nil)
		}
	}
	if usesTotals(base, a) {
		t := base.TotalsOrZero()
		if after := a.get(&t).Add(at.Amount); after.IsNegative() {
			return NewTransformError(at.Name(), "validate",
				fmt.Sprintf("totals.%s would become negative (%s)", at.Field, after.String()), nil)
		}
	}
	return nil
}

func (at *AdjustTotal) Apply(base *domain.FinancialState) (*domain.FinancialState, error) {
	a, err := lookupField(at.Name(), at.Field)
	if err != nil {
		return nil, err
	}
	modified := base.DeepCopy()
	shift(modified, at.Field, a, at.Amount)
	return modified, nil
}

// ScaleTotal multiplies one input figure by a factor, e.g. sales growth of 10%
// is a factor of 1.1. The change is booked as an adjustment so tagged
// account lines keep their original amounts.
type ScaleTotal struct {
	Field  string
	Factor decimal.Decimal
}

func (st *ScaleTotal) Name() string { return "scale_total" }

func (st *ScaleTotal) Description() string {
	return fmt.Sprintf("Scale %s by %s", st.Field, yen.FormatRate(st.Factor))
}

func (st *ScaleTotal) Validate(base *domain.FinancialState) error {
	if base == nil {
		return NewTransformError(st.Name(), "validate", "base state cannot be nil", nil)
	}
	if _, err := lookupField(st.Name(), st.Field); err != nil {
		return err
	}
	if st.Factor.IsNegative() {
		return NewTransformError(st.Name(), "validate", fmt.Sprintf("factor must be non-negative, got %s", st.Factor), nil)
	}
	return nil
}

func (st *ScaleTotal) Apply(base *domain.FinancialState) (*domain.FinancialState, error) {
	a, err := lookupField(st.Name(), st.Field)
	if err != nil {
		return nil, err
	}
	modified := base.DeepCopy()

	if usesTotals(modified, a) {
		if modified.Totals == nil {
			modified.Totals = &domain.Totals{}
		}
		v := a.get(modified.Totals)
		*v = v.Mul(st.Factor)
	}
	book(modified, st.Field, a, categorySum(modified, a).Mul(st.Factor.Sub(decimal.NewFromInt(1))))
	return modified, nil
}
