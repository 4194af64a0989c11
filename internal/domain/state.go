package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType groups account balances the way the ledger reports them.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// Category tags attached to accounts in the ledger's custom fields. Only lines
// carrying the matching tag feed the corresponding seed field.
const (
	CategoryDeductibleFromTax = "deductible_from_tax"
	CategoryIncludeExpense    = "include_expense"
	CategoryBusinessRevenue   = "business_revenue"
	CategoryFiscalCarryover   = "fiscal_carryover"
)

// FinancialState is the annual financial picture handed over by the
// reporting side of the accounting system. Any part may be absent.
type FinancialState struct {
	FiscalYear string           `yaml:"fiscal_year,omitempty" json:"fiscalYear,omitempty"`
	Company    *CompanyProfile  `yaml:"company,omitempty" json:"company,omitempty"`
	Totals     *Totals          `yaml:"totals,omitempty" json:"totals,omitempty"`
	Accounts   []AccountBalance `yaml:"accounts,omitempty" json:"accounts,omitempty"`
}

// CompanyProfile carries the facts that select the per-capita levy bracket
// and the consumption tax regime.
type CompanyProfile struct {
	Name              string          `yaml:"name,omitempty" json:"name,omitempty"`
	Capital           decimal.Decimal `yaml:"capital" json:"capital"`
	Employees         int             `yaml:"employees" json:"employees"`
	InvoiceRegistered bool            `yaml:"invoice_registered" json:"invoiceRegistered"`
}

// Totals are flat annual aggregates.
type Totals struct {
	Sales                 decimal.Decimal `yaml:"sales" json:"sales"`
	Expenses              decimal.Decimal `yaml:"expenses" json:"expenses"`
	PreviousEnterpriseTax decimal.Decimal `yaml:"previous_enterprise_tax" json:"previousEnterpriseTax"`
	NationalWithheldTax   decimal.Decimal `yaml:"national_withheld_tax" json:"nationalWithheldTax"`
	LocalWithheldTax      decimal.Decimal `yaml:"local_withheld_tax" json:"localWithheldTax"`
	CorporateTaxDeduction decimal.Decimal `yaml:"corporate_tax_deduction" json:"corporateTaxDeduction"`
	TaxablePurchases      decimal.Decimal `yaml:"taxable_purchases" json:"taxablePurchases"`
	BasePeriodSales       decimal.Decimal `yaml:"base_period_sales" json:"basePeriodSales"`
	LossCarryforward      decimal.Decimal `yaml:"loss_carryforward" json:"lossCarryforward"`
}

// AccountBalance is one line of the annual account breakdown.
type AccountBalance struct {
	Code     string          `yaml:"code" json:"code"`
	Name     string          `yaml:"name" json:"name"`
	Type     AccountType     `yaml:"type" json:"type"`
	Category string          `yaml:"category,omitempty" json:"category,omitempty"`
	Amount   decimal.Decimal `yaml:"amount" json:"amount"`
}

// IsEmpty reports whether the state carries no data at all.
func (s *FinancialState) IsEmpty() bool {
	return s == nil || (s.Company == nil && s.Totals == nil && len(s.Accounts) == 0)
}

// AccountsByType returns the breakdown lines of the given type, in input order.
func (s *FinancialState) AccountsByType(t AccountType) []AccountBalance {
	if s == nil {
		return nil
	}
	var out []AccountBalance
	for _, a := range s.Accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// SumByCategory adds up lines of type t tagged with category. Lines with a
// different or missing tag are excluded.
func (s *FinancialState) SumByCategory(t AccountType, category string) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range s.AccountsByType(t) {
		if a.Category == category {
			sum = sum.Add(a.Amount)
		}
	}
	return sum
}

// TotalsOrZero returns the flat totals, or a zero value when none were supplied.
func (s *FinancialState) TotalsOrZero() Totals {
	if s == nil || s.Totals == nil {
		return Totals{}
	}
	return *s.Totals
}

// DeepCopy returns a copy that shares no pointers or slices with s.
func (s *FinancialState) DeepCopy() *FinancialState {
	if s == nil {
		return nil
	}
	c := &FinancialState{FiscalYear: s.FiscalYear}
	if s.Company != nil {
		co := *s.Company
		c.Company = &co
	}
	if s.Totals != nil {
		t := *s.Totals
		c.Totals = &t
	}
	if s.Accounts != nil {
		c.Accounts = append([]AccountBalance(nil), s.Accounts...)
	}
	return c
}
