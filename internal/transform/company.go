package transform

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

func withCompany(base *domain.FinancialState) *domain.FinancialState {
	modified := base.DeepCopy()
	if modified.Company == nil {
		modified.Company = &domain.CompanyProfile{}
	}
	return modified
}

// SetInvoiceRegistration switches the company's qualified-invoice issuer
// registration, which decides whether the two-tenths special applies.
type SetInvoiceRegistration struct {
	Registered bool
}

func (si *SetInvoiceRegistration) Name() string { return "set_invoice" }

func (si *SetInvoiceRegistration) Description() string {
	if si.Registered {
		return "Register as a qualified invoice issuer"
	}
	return "Withdraw qualified invoice issuer registration"
}

func (si *SetInvoiceRegistration) Validate(base *domain.FinancialState) error {
	if base == nil {
		return NewTransformError(si.Name(), "validate", "base state cannot be nil", nil)
	}
	return nil
}

func (si *SetInvoiceRegistration) Apply(base *domain.FinancialState) (*domain.FinancialState, error) {
	modified := withCompany(base)
	modified.Company.InvoiceRegistered = si.Registered
	return modified, nil
}

// SetEmployees changes the headcount, which moves the per-capita levy bracket.
type SetEmployees struct {
	Count int
}

func (se *SetEmployees) Name() string { return "set_employees" }

func (se *SetEmployees) Description() string {
	return fmt.Sprintf("Set headcount to %d", se.Count)
}

func (se *SetEmployees) Validate(base *domain.FinancialState) error {
	if base == nil {
		return NewTransformError(se.Name(), "validate", "base state cannot be nil", nil)
	}
	if se.Count < 0 {
		return NewTransformError(se.Name(), "validate", fmt.Sprintf("count must be non-negative, got %d", se.Count), nil)
	}
	return nil
}

func (se *SetEmployees) Apply(base *domain.FinancialState) (*domain.FinancialState, error) {
	modified := withCompany(base)
	modified.Company.Employees = se.Count
	return modified, nil
}

// SetCapital changes the stated capital, which moves the per-capita levy bracket.
type SetCapital struct {
	Amount decimal.Decimal
}

func (sc *SetCapital) Name() string { return "set_capital" }

func (sc *SetCapital) Description() string {
	return fmt.Sprintf("Set capital to %s", yen.FormatCurrency(sc.Amount))
}

func (sc *SetCapital) Validate(base *domain.FinancialState) error {
	if base == nil {
		return NewTransformError(sc.Name(), "validate", "base state cannot be nil", nil)
	}
	if sc.Amount.IsNegative() {
		return NewTransformError(sc.Name(), "validate", fmt.Sprintf("capital must be non-negative, got %s", sc.Amount), nil)
	}
	return nil
}

func (sc *SetCapital) Apply(base *domain.FinancialState) (*domain.FinancialState, error) {
	modified := withCompany(base)
	modified.Company.Capital = sc.Amount
	return modified, nil
}
