package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// ErrInvalidStepSet is returned when a rule set fails registration checks.
var ErrInvalidStepSet = errors.New("invalid step set")

// ProjectFunc turns a final context into named result lines.
type ProjectFunc func(v calculation.Values) []domain.TaxLine

// StepSet is the complete, immutable rule set of one fiscal year.
type StepSet struct {
	Year       string
	SeedFields []string
	Steps      []calculation.Step
	// Project produces the fixed result lines, ending with the total line.
	Project ProjectFunc
	// Settle produces the amounts still due after withheld prepayments. Optional.
	Settle ProjectFunc
}

// Registry maps fiscal years to rule sets. It is populated once and then only
// read, so concurrent lookups need no locking.
type Registry struct {
	sets map[string]*StepSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*StepSet)}
}

// Register validates a rule set and adds it under its year.
func (r *Registry) Register(set StepSet) error {
	if err := Validate(set); err != nil {
		return err
	}
	if _, exists := r.sets[set.Year]; exists {
		return fmt.Errorf("%w: year %s already registered", ErrInvalidStepSet, set.Year)
	}
	stored := set
	stored.SeedFields = append([]string(nil), set.SeedFields...)
	stored.Steps = append([]calculation.Step(nil), set.Steps...)
	r.sets[set.Year] = &stored
	return nil
}

// MustRegister is Register for built-in rule sets; it panics on error.
func (r *Registry) MustRegister(set StepSet) {
	if err := r.Register(set); err != nil {
		panic(err)
	}
}

// Get returns the rule set of a fiscal year.
func (r *Registry) Get(year string) (*StepSet, error) {
	set, ok := r.sets[year]
	if !ok {
		return nil, domain.UnsupportedYearError("rules", year)
	}
	return set, nil
}

// Steps returns the ordered step list of a fiscal year. An unregistered year
// is an error, never an empty list.
func (r *Registry) Steps(year string) ([]calculation.Step, error) {
	set, err := r.Get(year)
	if err != nil {
		return nil, err
	}
	return append([]calculation.Step(nil), set.Steps...), nil
}

// Years returns the registered fiscal years in ascending order.
func (r *Registry) Years() []string {
	years := make([]string, 0, len(r.sets))
	for y := range r.sets {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Validate checks a rule set's structure: step IDs are unique and distinct
// from seed fields, and every declared read names a seed field or an earlier
// step.
func Validate(set StepSet) error {
	if _, err := domain.ParseFiscalYear(set.Year); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStepSet, err)
	}
	if set.Project == nil {
		return fmt.Errorf("%w: year %s has no projection", ErrInvalidStepSet, set.Year)
	}

	known := make(map[string]bool, len(set.SeedFields)+len(set.Steps))
	for _, f := range set.SeedFields {
		if known[f] {
			return fmt.Errorf("%w: year %s: duplicate seed field %s", ErrInvalidStepSet, set.Year, f)
		}
		known[f] = true
	}

	for i, s := range set.Steps {
		if s.ID == "" {
			return fmt.Errorf("%w: year %s: step %d has no id", ErrInvalidStepSet, set.Year, i)
		}
		if s.Compute == nil {
			return fmt.Errorf("%w: year %s: step %s has no compute function", ErrInvalidStepSet, set.Year, s.ID)
		}
		for _, dep := range s.Reads {
			if !known[dep] {
				return fmt.Errorf("%w: year %s: step %s reads %s before it is available", ErrInvalidStepSet, set.Year, s.ID, dep)
			}
		}
		if known[s.ID] {
			return fmt.Errorf("%w: year %s: step %s overwrites an existing field", ErrInvalidStepSet, set.Year, s.ID)
		}
		known[s.ID] = true
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding the built-in rule sets.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		r.MustRegister(Rules2023())
		r.MustRegister(Rules2024())
		r.MustRegister(Rules2025())
		r.MustRegister(Rules2026())
		defaultRegistry = r
	})
	return defaultRegistry
}
