package transform

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
)

// StateTransform defines the interface for what-if adjustments of a financial
// state. Transforms are composable operations used by year comparison,
// break-even analysis and the CLI's --transform flag.
type StateTransform interface {
	// Apply returns a new, modified state. The base state is never changed.
	Apply(base *domain.FinancialState) (*domain.FinancialState, error)

	// Name returns a short identifier for this transform (e.g., "adjust_total").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks if the transform can be applied to base without applying it.
	Validate(base *domain.FinancialState) error
}

// ApplyTransforms applies a sequence of transforms to a base state.
// Transforms are applied in order, with each transform receiving the output of the previous one.
func ApplyTransforms(base *domain.FinancialState, transforms []StateTransform) (*domain.FinancialState, error) {
	if base == nil {
		return nil, fmt.Errorf("base state cannot be nil")
	}

	current := base.DeepCopy()
	for i, transform := range transforms {
		if transform == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}

	return current, nil
}

// Describe lists the descriptions of transforms, in order.
func Describe(transforms []StateTransform) []string {
	out := make([]string, 0, len(transforms))
	for _, t := range transforms {
		out = append(out, t.Description())
	}
	return out
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
