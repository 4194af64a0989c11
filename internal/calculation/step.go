package calculation

import (
	"github.com/shopspring/decimal"
)

// ComputeFunc derives a step value from earlier context fields.
type ComputeFunc func(v Values) (decimal.Decimal, error)

// NarrateFunc renders the human-readable explanation of a step. It runs after
// the step's own value has been stored, so it may read it.
type NarrateFunc func(v Values) string

// Step is one immutable unit of the calculation pipeline. ID doubles as the
// context field the result is written to. Category is only used for display.
type Step struct {
	ID          string
	DisplayName string
	Category    string
	// Reads lists every field Compute may read. Each must be a seed field or
	// the ID of an earlier step.
	Reads   []string
	Compute ComputeFunc
	Narrate NarrateFunc
}
