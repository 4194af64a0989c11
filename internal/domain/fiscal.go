package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUnsupportedFiscalYear is returned when no rule set or parameter builder is
// registered for the requested fiscal year. It is never answered with another
// year's rules.
var ErrUnsupportedFiscalYear = errors.New("unsupported fiscal year")

// UnsupportedYearError wraps ErrUnsupportedFiscalYear with the lookup that failed.
func UnsupportedYearError(component, year string) error {
	return fmt.Errorf("%s: %w %q", component, ErrUnsupportedFiscalYear, year)
}

// InputError reports a malformed or out-of-range input field. It is raised at
// the boundary, before any calculation runs.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// ParseFiscalYear checks that year is a four-digit fiscal year key such as "2024".
func ParseFiscalYear(year string) (int, error) {
	if len(year) != 4 {
		return 0, &InputError{Field: "fiscal_year", Reason: fmt.Sprintf("expected a 4-digit year, got %q", year)}
	}
	n, err := strconv.Atoi(year)
	if err != nil || n < 1000 {
		return 0, &InputError{Field: "fiscal_year", Reason: fmt.Sprintf("expected a 4-digit year, got %q", year)}
	}
	return n, nil
}

// FiscalYearPeriod returns the first and last day of a Japanese fiscal year
// (nendo), which runs from April 1 to March 31 and is named by its starting year.
func FiscalYearPeriod(year string) (time.Time, time.Time, error) {
	n, err := ParseFiscalYear(year)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(n, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(n+1, time.March, 31, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}
