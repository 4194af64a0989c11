// Package ledger loads and stores annual financial states handed over by the
// reporting side of the accounting system.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no state is stored for a fiscal year.
var ErrNotFound = errors.New("financial state not found")

// Source supplies the financial state of a fiscal year.
type Source interface {
	LoadFinancialState(ctx context.Context, year string) (*domain.FinancialState, error)
}

// Store is a Source that can also persist states.
type Store interface {
	Source
	SaveFinancialState(ctx context.Context, state *domain.FinancialState) error
	Years(ctx context.Context) ([]string, error)
	Migrate(ctx context.Context) error
	Close() error
}

// schema is shared by both backends. Amounts are stored as decimal text so no
// precision is lost in either database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fiscal_states (
	fiscal_year TEXT PRIMARY KEY,
	imported_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS company_profiles (
	fiscal_year TEXT PRIMARY KEY REFERENCES fiscal_states (fiscal_year) ON DELETE CASCADE,
	name TEXT NOT NULL,
	capital TEXT NOT NULL,
	employees BIGINT NOT NULL,
	invoice_registered INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS fiscal_totals (
	fiscal_year TEXT PRIMARY KEY REFERENCES fiscal_states (fiscal_year) ON DELETE CASCADE,
	sales TEXT NOT NULL,
	expenses TEXT NOT NULL,
	previous_enterprise_tax TEXT NOT NULL,
	national_withheld_tax TEXT NOT NULL,
	local_withheld_tax TEXT NOT NULL,
	corporate_tax_deduction TEXT NOT NULL,
	taxable_purchases TEXT NOT NULL,
	base_period_sales TEXT NOT NULL,
	loss_carryforward TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS account_balances (
	fiscal_year TEXT NOT NULL REFERENCES fiscal_states (fiscal_year) ON DELETE CASCADE,
	position BIGINT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (fiscal_year, code)
)`,
}

type rowScanner interface {
	Scan(dest ...any) error
}

// conn is the small query surface both backends provide. Queries use "?"
// placeholders; the Postgres adapter rewrites them.
type conn interface {
	exec(ctx context.Context, query string, args ...any) error
	each(ctx context.Context, query string, args []any, fn func(rowScanner) error) error
}

func saveState(ctx context.Context, c conn, state *domain.FinancialState, now time.Time) error {
	year := state.FiscalYear
	if _, err := domain.ParseFiscalYear(year); err != nil {
		return err
	}

	for _, table := range []string{"account_balances", "fiscal_totals", "company_profiles", "fiscal_states"} {
		if err := c.exec(ctx, "DELETE FROM "+table+" WHERE fiscal_year = ?", year); err != nil {
			return fmt.Errorf("failed to clear %s for %s: %w", table, year, err)
		}
	}

	if err := c.exec(ctx, `INSERT INTO fiscal_states (fiscal_year, imported_at) VALUES (?, ?)`,
		year, now.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert state %s: %w", year, err)
	}

	if co := state.Company; co != nil {
		invoice := 0
		if co.InvoiceRegistered {
			invoice = 1
		}
		if err := c.exec(ctx, `INSERT INTO company_profiles (fiscal_year, name, capital, employees, invoice_registered)
VALUES (?, ?, ?, ?, ?)`, year, co.Name, co.Capital.String(), int64(co.Employees), invoice); err != nil {
			return fmt.Errorf("failed to insert company profile: %w", err)
		}
	}

	if t := state.Totals; t != nil {
		if err := c.exec(ctx, `INSERT INTO fiscal_totals (fiscal_year, sales, expenses, previous_enterprise_tax,
national_withheld_tax, local_withheld_tax, corporate_tax_deduction, taxable_purchases, base_period_sales, loss_carryforward)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, year,
			t.Sales.String(), t.Expenses.String(), t.PreviousEnterpriseTax.String(),
			t.NationalWithheldTax.String(), t.LocalWithheldTax.String(), t.CorporateTaxDeduction.String(),
			t.TaxablePurchases.String(), t.BasePeriodSales.String(), t.LossCarryforward.String()); err != nil {
			return fmt.Errorf("failed to insert totals: %w", err)
		}
	}

	for i, a := range state.Accounts {
		if err := c.exec(ctx, `INSERT INTO account_balances (fiscal_year, position, code, name, type, category, amount)
VALUES (?, ?, ?, ?, ?, ?, ?)`, year, int64(i), a.Code, a.Name, string(a.Type), a.Category, a.Amount.String()); err != nil {
			return fmt.Errorf("failed to insert account %s: %w", a.Code, err)
		}
	}
	return nil
}

func loadState(ctx context.Context, c conn, year string) (*domain.FinancialState, error) {
	found := false
	err := c.each(ctx, `SELECT fiscal_year FROM fiscal_states WHERE fiscal_year = ?`, []any{year}, func(r rowScanner) error {
		found = true
		var y string
		return r.Scan(&y)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query state %s: %w", year, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, year)
	}

	state := &domain.FinancialState{FiscalYear: year}

	err = c.each(ctx, `SELECT name, capital, employees, invoice_registered FROM company_profiles WHERE fiscal_year = ?`,
		[]any{year}, func(r rowScanner) error {
			var (
				co        domain.CompanyProfile
				capital   string
				employees int64
				invoice   int64
			)
			if err := r.Scan(&co.Name, &capital, &employees, &invoice); err != nil {
				return err
			}
			amount, err := parseAmount("capital", capital)
			if err != nil {
				return err
			}
			co.Capital = amount
			co.Employees = int(employees)
			co.InvoiceRegistered = invoice != 0
			state.Company = &co
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query company profile: %w", err)
	}

	err = c.each(ctx, `SELECT sales, expenses, previous_enterprise_tax, national_withheld_tax, local_withheld_tax,
corporate_tax_deduction, taxable_purchases, base_period_sales, loss_carryforward FROM fiscal_totals WHERE fiscal_year = ?`,
		[]any{year}, func(r rowScanner) error {
			raw := make([]string, 9)
			dest := make([]any, len(raw))
			for i := range raw {
				dest[i] = &raw[i]
			}
			if err := r.Scan(dest...); err != nil {
				return err
			}
			var t domain.Totals
			targets := []*decimal.Decimal{
				&t.Sales, &t.Expenses, &t.PreviousEnterpriseTax, &t.NationalWithheldTax, &t.LocalWithheldTax,
				&t.CorporateTaxDeduction, &t.TaxablePurchases, &t.BasePeriodSales, &t.LossCarryforward,
			}
			for i, target := range targets {
				v, err := parseAmount("totals", raw[i])
				if err != nil {
					return err
				}
				*target = v
			}
			state.Totals = &t
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	err = c.each(ctx, `SELECT code, name, type, category, amount FROM account_balances WHERE fiscal_year = ? ORDER BY position`,
		[]any{year}, func(r rowScanner) error {
			var (
				a      domain.AccountBalance
				typ    string
				amount string
			)
			if err := r.Scan(&a.Code, &a.Name, &typ, &a.Category, &amount); err != nil {
				return err
			}
			v, err := parseAmount("account "+a.Code, amount)
			if err != nil {
				return err
			}
			a.Type = domain.AccountType(typ)
			a.Amount = v
			state.Accounts = append(state.Accounts, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return state, nil
}

func listYears(ctx context.Context, c conn) ([]string, error) {
	var years []string
	err := c.each(ctx, `SELECT fiscal_year FROM fiscal_states ORDER BY fiscal_year`, nil, func(r rowScanner) error {
		var y string
		if err := r.Scan(&y); err != nil {
			return err
		}
		years = append(years, y)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}
	return years, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored amount for %s: %w", field, err)
	}
	return v, nil
}
