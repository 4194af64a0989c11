package params

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Builder turns a financial state into the flat seed of one fiscal year's
// rule set. A nil or empty state yields an all-zero seed.
type Builder func(state *domain.FinancialState) (domain.Seed, error)

// Registry maps fiscal years to parameter builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder for a fiscal year.
func (r *Registry) Register(year string, b Builder) error {
	if _, err := domain.ParseFiscalYear(year); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("nil parameter builder for year %s", year)
	}
	if _, exists := r.builders[year]; exists {
		return fmt.Errorf("parameter builder for year %s already registered", year)
	}
	r.builders[year] = b
	return nil
}

// MustRegister is Register for built-in builders; it panics on error.
func (r *Registry) MustRegister(year string, b Builder) {
	if err := r.Register(year, b); err != nil {
		panic(err)
	}
}

// Build validates state and produces the seed for year. Unregistered years
// fail before the state is looked at.
func (r *Registry) Build(year string, state *domain.FinancialState) (domain.Seed, error) {
	b, ok := r.builders[year]
	if !ok {
		return nil, domain.UnsupportedYearError("params", year)
	}
	if err := ValidateState(year, state); err != nil {
		return nil, err
	}
	return b(state)
}

// Years returns the registered fiscal years in ascending order.
func (r *Registry) Years() []string {
	years := make([]string, 0, len(r.builders))
	for y := range r.builders {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding the built-in builders.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		r.MustRegister("2023", Build2023)
		r.MustRegister("2024", Build2024)
		r.MustRegister("2025", Build2025)
		r.MustRegister("2026", Build2026)
		defaultRegistry = r
	})
	return defaultRegistry
}
