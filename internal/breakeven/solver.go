package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/transform"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Solver finds break-even adjustments of one input figure by bisection
type Solver struct {
	Simulator *simulation.Simulator
	Options   SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(sim *simulation.Simulator, options SolverOptions) *Solver {
	return &Solver{
		Simulator: sim,
		Options:   options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(sim *simulation.Simulator) *Solver {
	return NewSolver(sim, DefaultSolverOptions())
}

type evaluation struct {
	adjustment decimal.Decimal
	value      decimal.Decimal
	report     *domain.Report
}

func (e evaluation) meets(target decimal.Decimal) bool {
	return e.value.LessThanOrEqual(target)
}

func (s *Solver) withDefaults(req OptimizationRequest) OptimizationRequest {
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	if req.Metric == "" {
		req.Metric = MetricTotalTax
	}
	if req.Year == "" && req.BaseState != nil {
		req.Year = req.BaseState.FiscalYear
	}
	return req
}

// evaluate calculates the base state with field shifted by delta.
func (s *Solver) evaluate(ctx context.Context, req OptimizationRequest, delta decimal.Decimal) (evaluation, error) {
	modified, err := transform.ApplyTransforms(req.BaseState, []transform.StateTransform{
		&transform.AdjustTotal{Field: req.Field, Amount: delta},
	})
	if err != nil {
		return evaluation{}, &BreakEvenError{Operation: "evaluate", Message: "failed to apply adjustment", Cause: err}
	}
	report, err := s.Simulator.Calculate(ctx, req.Year, modified)
	if err != nil {
		return evaluation{}, &BreakEvenError{Operation: "evaluate", Message: "failed to calculate", Cause: err}
	}
	value, err := req.Metric.Value(report)
	if err != nil {
		return evaluation{}, &BreakEvenError{Operation: "evaluate", Message: "failed to read metric", Cause: err}
	}
	return evaluation{adjustment: delta, value: value, report: report}, nil
}

// Optimize searches the constrained range for the break-even adjustment.
// The metric must move monotonically with the adjustment; the direction is
// taken from the two ends of the range. When the metric falls as the
// adjustment grows (more expenses), the result is the smallest adjustment
// meeting the target; when it rises (more sales), the largest.
func (s *Solver) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	req = s.withDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	baseReport, err := s.Simulator.Calculate(ctx, req.Year, req.BaseState)
	if err != nil {
		return nil, &BreakEvenError{Operation: "optimize", Message: "failed to calculate base state", Cause: err}
	}
	req, err = clampToField(req)
	if err != nil {
		return nil, err
	}

	low, err := s.evaluate(ctx, req, req.Constraints.MinAdjustment)
	if err != nil {
		return nil, err
	}
	high, err := s.evaluate(ctx, req, req.Constraints.MaxAdjustment)
	if err != nil {
		return nil, err
	}

	result := &OptimizationResult{Request: req, BaseReport: baseReport}

	switch {
	case low.meets(req.Target) && high.meets(req.Target):
		least := decimal.Min(decimal.Max(decimal.Zero, req.Constraints.MinAdjustment), req.Constraints.MaxAdjustment)
		best, err := s.evaluate(ctx, req, least)
		if err != nil {
			return nil, err
		}
		result.Success = true
		result.ConvergenceInfo = "Target met across the whole range"
		return s.finish(result, best), nil

	case !low.meets(req.Target) && !high.meets(req.Target):
		best := low
		if high.value.LessThan(low.value) {
			best = high
		}
		result.ConvergenceInfo = fmt.Sprintf("Target %s not reachable between %s and %s",
			yen.FormatCurrency(req.Target),
			yen.FormatCurrency(req.Constraints.MinAdjustment), yen.FormatCurrency(req.Constraints.MaxAdjustment))
		return s.finish(result, best), nil
	}

	// Invariant: bad fails the target, good meets it.
	bad, good := low, high
	if low.meets(req.Target) {
		bad, good = high, low
	}

	for result.Iterations < req.MaxIterations {
		if bad.adjustment.Sub(good.adjustment).Abs().LessThanOrEqual(req.Tolerance) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Iterations++

		mid := bad.adjustment.Add(good.adjustment).Div(two).Floor()
		if mid.Equal(bad.adjustment) || mid.Equal(good.adjustment) {
			break
		}
		e, err := s.evaluate(ctx, req, mid)
		if err != nil {
			return nil, err
		}
		if e.meets(req.Target) {
			good = e
		} else {
			bad = e
		}
	}

	width := bad.adjustment.Sub(good.adjustment).Abs()
	if width.LessThanOrEqual(req.Tolerance) || width.LessThanOrEqual(decimal.NewFromInt(1)) {
		result.Success = true
		result.ConvergenceInfo = fmt.Sprintf("Converged within %s", yen.FormatCurrency(width))
	} else {
		result.ConvergenceInfo = fmt.Sprintf("Stopped after %d iterations, bracket %s wide", result.Iterations, yen.FormatCurrency(width))
	}
	return s.finish(result, good), nil
}

// clampToField raises both ends of the range to the lowest adjustment that
// keeps the field non-negative. A range lying wholly below it collapses onto
// that single point.
func clampToField(req OptimizationRequest) (OptimizationRequest, error) {
	lowest, err := transform.LowestAdjustment(req.BaseState, req.Field)
	if err != nil {
		return req, &BreakEvenError{Operation: "optimize", Message: "invalid field", Cause: err}
	}
	c := &req.Constraints
	c.MinAdjustment = decimal.Max(c.MinAdjustment, lowest)
	c.MaxAdjustment = decimal.Max(c.MaxAdjustment, lowest)
	return req, nil
}

func (s *Solver) finish(result *OptimizationResult, e evaluation) *OptimizationResult {
	result.Adjustment = e.adjustment
	result.MetricValue = e.value
	result.Report = e.report
	if result.BaseReport != nil {
		result.TotalDiffFromBase = e.report.Total() - result.BaseReport.Total()
	}
	return result
}
