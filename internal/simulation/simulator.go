package simulation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/params"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"golang.org/x/sync/errgroup"
)

// Simulator wires the parameter builders, rule sets and engine together.
type Simulator struct {
	Params *params.Registry
	Rules  *rules.Registry
	Engine *calculation.Engine
	// Cache is optional; nil disables memoization.
	Cache *calculation.Cache
}

// New creates a simulator over the built-in registries with a fresh cache.
func New() *Simulator {
	return &Simulator{
		Params: params.Default(),
		Rules:  rules.Default(),
		Engine: calculation.NewEngine(),
		Cache:  calculation.NewCache(),
	}
}

// SetLogger sets the engine logger. If nil is provided, a no-op logger is used.
func (s *Simulator) SetLogger(l calculation.Logger) {
	s.Engine.SetLogger(l)
}

// Years returns the fiscal years both registries support.
func (s *Simulator) Years() []string {
	supported := make(map[string]bool)
	for _, y := range s.Params.Years() {
		supported[y] = true
	}
	var years []string
	for _, y := range s.Rules.Years() {
		if supported[y] {
			years = append(years, y)
		}
	}
	return years
}

// Calculate builds the seed for year from state, runs the year's rule set and
// projects the result.
func (s *Simulator) Calculate(ctx context.Context, year string, state *domain.FinancialState) (*domain.Report, error) {
	if _, err := s.Rules.Get(year); err != nil {
		return nil, err
	}
	seed, err := s.Params.Build(year, state)
	if err != nil {
		return nil, fmt.Errorf("failed to build parameters for %s: %w", year, err)
	}
	return s.CalculateSeed(ctx, year, seed)
}

// CalculateSeed runs the year's rule set on an already-built seed. The seed
// must carry exactly the rule set's seed fields.
func (s *Simulator) CalculateSeed(ctx context.Context, year string, seed domain.Seed) (*domain.Report, error) {
	set, err := s.Rules.Get(year)
	if err != nil {
		return nil, err
	}
	if err := checkSeed(set, seed); err != nil {
		return nil, err
	}

	out, err := s.run(ctx, set, seed)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		FiscalYear: year,
		Lines:      set.Project(out.Context),
		Trace:      out.Trace,
		Faults:     out.Faults,
	}
	if set.Settle != nil {
		report.Settlement = set.Settle(out.Context)
	}
	return report, nil
}

func checkSeed(set *rules.StepSet, seed domain.Seed) error {
	want := make(map[string]bool, len(set.SeedFields))
	for _, f := range set.SeedFields {
		want[f] = true
	}
	seen := make(map[string]bool, len(seed))
	for _, name := range seed.Names() {
		switch {
		case !want[name]:
			return &domain.InputError{Field: name, Reason: fmt.Sprintf("not a seed field for %s", set.Year)}
		case seen[name]:
			return &domain.InputError{Field: name, Reason: "appears more than once in the seed"}
		}
		seen[name] = true
	}
	for _, f := range set.SeedFields {
		if !seen[f] {
			return &domain.InputError{Field: f, Reason: fmt.Sprintf("missing from the %s seed", set.Year)}
		}
	}
	return nil
}

func (s *Simulator) run(ctx context.Context, set *rules.StepSet, seed domain.Seed) (*calculation.Outcome, error) {
	if s.Cache == nil {
		return s.Engine.Run(ctx, set.Steps, seed)
	}

	key := calculation.CacheKey(set.Year, seed)
	if out, ok := s.Cache.Get(key); ok {
		if s.Engine.Logger != nil {
			s.Engine.Logger.Debugf("cache hit for %s (%s)", set.Year, key)
		}
		return out, nil
	}
	out, err := s.Engine.Run(ctx, set.Steps, seed)
	if err != nil {
		return nil, err
	}
	s.Cache.Put(key, out)
	return out, nil
}

// StateFunc supplies the financial state for one fiscal year.
type StateFunc func(ctx context.Context, year string) (*domain.FinancialState, error)

// CalculateYears runs several fiscal years concurrently. Reports are returned
// in the order of years; the first error cancels the remaining runs.
func (s *Simulator) CalculateYears(ctx context.Context, years []string, stateFor StateFunc) ([]*domain.Report, error) {
	reports := make([]*domain.Report, len(years))
	g, gctx := errgroup.WithContext(ctx)

	for i, year := range years {
		g.Go(func() error {
			state, err := stateFor(gctx, year)
			if err != nil {
				return fmt.Errorf("failed to load state for %s: %w", year, err)
			}
			report, err := s.Calculate(gctx, year, state)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// SameState returns a StateFunc that hands every year a copy of state with
// its fiscal year set to the requested one.
func SameState(state *domain.FinancialState) StateFunc {
	return func(_ context.Context, year string) (*domain.FinancialState, error) {
		if state == nil {
			return nil, nil
		}
		c := *state
		c.FiscalYear = year
		return &c, nil
	}
}
