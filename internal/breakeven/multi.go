package breakeven

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SweepPoint is one evaluated adjustment of a sweep
type SweepPoint struct {
	Adjustment  decimal.Decimal `json:"adjustment"`
	MetricValue decimal.Decimal `json:"metric_value"`
	TotalTax    int64           `json:"total_tax"`
	MeetsTarget bool            `json:"meets_target"`
}

// Sweep evaluates GridResolution+1 evenly spaced adjustments across the
// constrained range, concurrently. Points are returned in ascending order.
func (s *Solver) Sweep(ctx context.Context, req OptimizationRequest) ([]SweepPoint, error) {
	req = s.withDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req, err := clampToField(req)
	if err != nil {
		return nil, err
	}

	steps := s.Options.GridResolution
	if steps < 1 {
		steps = 1
	}
	span := req.Constraints.MaxAdjustment.Sub(req.Constraints.MinAdjustment)
	stride := span.Div(decimal.NewFromInt(int64(steps)))

	points := make([]SweepPoint, steps+1)
	g, gctx := errgroup.WithContext(ctx)
	if s.Options.Parallelism > 0 {
		g.SetLimit(s.Options.Parallelism)
	}
	for i := range points {
		delta := req.Constraints.MinAdjustment.Add(stride.Mul(decimal.NewFromInt(int64(i)))).Floor()
		if i == steps {
			delta = req.Constraints.MaxAdjustment
		}
		g.Go(func() error {
			e, err := s.evaluate(gctx, req, delta)
			if err != nil {
				return err
			}
			points[i] = SweepPoint{
				Adjustment:  delta,
				MetricValue: e.value,
				TotalTax:    e.report.Total(),
				MeetsTarget: e.meets(req.Target),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
