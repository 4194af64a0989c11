package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"github.com/shopspring/decimal"
)

// Metric names the report figure a solve drives towards its target
type Metric string

const (
	MetricTotalTax       Metric = "total_tax"        // Grand total of the result lines
	MetricTaxableIncome  Metric = "taxable_income"   // Taxable income before rounding
	MetricNationalTaxDue Metric = "national_tax_due" // National settlement after withholding
	MetricLocalTaxDue    Metric = "local_tax_due"    // Local settlement after interim payments
)

// Metrics returns the supported metric names.
func Metrics() []Metric {
	return []Metric{MetricTotalTax, MetricTaxableIncome, MetricNationalTaxDue, MetricLocalTaxDue}
}

// Value reads the metric from a report.
func (m Metric) Value(report *domain.Report) (decimal.Decimal, error) {
	switch m {
	case MetricTotalTax:
		return decimal.NewFromInt(report.Total()), nil
	case MetricTaxableIncome:
		e, ok := report.TraceFor(domain.FieldTaxableIncome)
		if !ok {
			return decimal.Zero, fmt.Errorf("report has no %s step", domain.FieldTaxableIncome)
		}
		return e.Value, nil
	case MetricNationalTaxDue, MetricLocalTaxDue:
		name := rules.LineNationalTaxDue
		if m == MetricLocalTaxDue {
			name = rules.LineLocalTaxDue
		}
		for _, l := range report.Settlement {
			if l.TaxName == name {
				return decimal.NewFromInt(l.TaxAmount), nil
			}
		}
		return decimal.Zero, fmt.Errorf("report has no %q settlement line", name)
	default:
		return decimal.Zero, fmt.Errorf("unsupported metric: %s", m)
	}
}

// Constraints bound the adjustment the solver may try
type Constraints struct {
	MinAdjustment decimal.Decimal `json:"min_adjustment"`
	MaxAdjustment decimal.Decimal `json:"max_adjustment"`
}

// OptimizationRequest defines one break-even solve: the smallest change of
// Field (within Constraints) that brings Metric to Target or below.
type OptimizationRequest struct {
	BaseState     *domain.FinancialState
	Year          string
	Field         string // Adjustable input figure, e.g. "expenses"
	Metric        Metric
	Target        decimal.Decimal
	Constraints   Constraints
	MaxIterations int             // Maximum solver iterations
	Tolerance     decimal.Decimal // Width of the final search bracket, in yen
}

// OptimizationResult contains the results of a break-even solve
type OptimizationResult struct {
	Request         OptimizationRequest `json:"-"`
	Success         bool                `json:"success"`
	Iterations      int                 `json:"iterations"`
	ConvergenceInfo string              `json:"convergence_info"`

	// Adjustment is the change of the field at the solution.
	Adjustment  decimal.Decimal `json:"adjustment"`
	MetricValue decimal.Decimal `json:"metric_value"`
	Report      *domain.Report  `json:"report"`

	BaseReport        *domain.Report `json:"base_report,omitempty"`
	TotalDiffFromBase int64          `json:"total_diff_from_base"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance      decimal.Decimal // Convergence tolerance
	MaxIterations  int             // Maximum iterations
	GridResolution int             // Points evaluated by Sweep
	Parallelism    int             // Concurrent evaluations in Sweep
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:      decimal.NewFromInt(1000), // ¥1,000, the rounding unit of taxable income
		MaxIterations:  64,
		GridResolution: 10,
		Parallelism:    4,
	}
}

// Validate checks if the request is internally consistent
func (r *OptimizationRequest) Validate() error {
	if r.BaseState == nil {
		return &BreakEvenError{Operation: "validate_request", Message: "base state is required"}
	}
	if r.Field == "" {
		return &BreakEvenError{Operation: "validate_request", Message: "field is required"}
	}
	if r.Constraints.MinAdjustment.GreaterThan(r.Constraints.MaxAdjustment) {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "min_adjustment cannot be greater than max_adjustment",
		}
	}
	if r.Tolerance.IsNegative() {
		return &BreakEvenError{Operation: "validate_request", Message: "tolerance cannot be negative"}
	}
	return nil
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
