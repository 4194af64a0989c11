package domain

import (
	"github.com/shopspring/decimal"
)

// SeedField is one named input value of a calculation run.
type SeedField struct {
	Name  string          `yaml:"name" json:"name"`
	Value decimal.Decimal `yaml:"value" json:"value"`
}

// Seed is the flat, ordered set of inputs for one fiscal year's rule set.
type Seed []SeedField

// ZeroSeed returns a seed with every named field set to zero, in the given order.
func ZeroSeed(names ...string) Seed {
	s := make(Seed, 0, len(names))
	for _, n := range names {
		s = append(s, SeedField{Name: n, Value: decimal.Zero})
	}
	return s
}

// Get returns the value of a named field.
func (s Seed) Get(name string) (decimal.Decimal, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Value, true
		}
	}
	return decimal.Zero, false
}

// Set replaces the value of an existing field or appends a new one.
func (s *Seed) Set(name string, v decimal.Decimal) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Value = v
			return
		}
	}
	*s = append(*s, SeedField{Name: name, Value: v})
}

// Names returns the field names in order.
func (s Seed) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// TaxLine is one named amount of a projected result, in whole yen.
type TaxLine struct {
	TaxName   string `yaml:"tax_name" json:"taxName"`
	TaxAmount int64  `yaml:"tax_amount" json:"taxAmount"`
}

// TraceEntry records one executed step for audit display.
type TraceEntry struct {
	StepID      string          `yaml:"step_id" json:"stepId"`
	DisplayName string          `yaml:"display_name" json:"displayName"`
	Category    string          `yaml:"category" json:"category"`
	Value       decimal.Decimal `yaml:"value" json:"value"`
	Narrative   string          `yaml:"narrative" json:"narrative"`
	Fault       string          `yaml:"fault,omitempty" json:"fault,omitempty"`
}

// Report is the presentable outcome of one fiscal year's calculation.
type Report struct {
	FiscalYear string       `yaml:"fiscal_year" json:"fiscalYear"`
	Lines      []TaxLine    `yaml:"lines" json:"lines"`
	Settlement []TaxLine    `yaml:"settlement,omitempty" json:"settlement,omitempty"`
	Trace      []TraceEntry `yaml:"trace" json:"trace"`
	Faults     int          `yaml:"faults" json:"faults"`
}

// TotalLineName is the name of the trailing line of every projection.
const TotalLineName = "Total"

// Total returns the grand total line amount.
func (r *Report) Total() int64 {
	if r == nil || len(r.Lines) == 0 {
		return 0
	}
	return r.Lines[len(r.Lines)-1].TaxAmount
}

// Line looks up a projected line by name.
func (r *Report) Line(name string) (TaxLine, bool) {
	if r == nil {
		return TaxLine{}, false
	}
	for _, l := range r.Lines {
		if l.TaxName == name {
			return l, true
		}
	}
	return TaxLine{}, false
}

// TraceFor returns the trace entry of a step.
func (r *Report) TraceFor(stepID string) (TraceEntry, bool) {
	if r == nil {
		return TraceEntry{}, false
	}
	for _, e := range r.Trace {
		if e.StepID == stepID {
			return e, true
		}
	}
	return TraceEntry{}, false
}
