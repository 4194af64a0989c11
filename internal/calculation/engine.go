package calculation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine executes an ordered step list against a seed. A run is synchronous,
// owns its context and shares no state with other runs.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Outcome is the result of one run.
type Outcome struct {
	Context *Context
	Trace   []domain.TraceEntry
	// Reads holds the fields each step actually read, keyed by step ID.
	Reads  map[string][]string
	Faults int
}

// Run copies the seed into a fresh context and executes steps in order.
//
// A step that returns an error, panics, reads an unset field or targets an
// already-written field does not abort the run: its value becomes zero (or the
// existing value is kept), the fault is logged and recorded on the trace entry,
// and later steps still execute. Only a malformed seed or a cancelled ctx
// stops a run.
func (e *Engine) Run(ctx context.Context, steps []Step, seed domain.Seed) (*Outcome, error) {
	logger := e.logger()

	values, err := NewContextFromSeed(seed)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Context: values,
		Trace:   make([]domain.TraceEntry, 0, len(steps)),
		Reads:   make(map[string][]string, len(steps)),
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("calculation cancelled before step %s: %w", s.ID, err)
		}

		value, reads, fault := computeStep(values, s)
		out.Reads[s.ID] = reads

		if fault == nil {
			if err := values.Set(s.ID, value); err != nil {
				fault = err
			}
		} else if !values.Has(s.ID) {
			_ = values.Set(s.ID, decimal.Zero)
		}

		entry := domain.TraceEntry{
			StepID:      s.ID,
			DisplayName: s.DisplayName,
			Category:    s.Category,
			Value:       values.Get(s.ID),
		}
		if fault != nil {
			out.Faults++
			entry.Fault = fault.Error()
			logger.Warnf("step %s faulted, using %s: %v", s.ID, entry.Value.String(), fault)
		} else {
			logger.Debugf("step %s = %s", s.ID, entry.Value.String())
		}
		entry.Narrative = narrateStep(values, s, logger)

		out.Trace = append(out.Trace, entry)
	}

	return out, nil
}

func (e *Engine) logger() Logger {
	if e == nil || e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

func computeStep(values *Context, s Step) (value decimal.Decimal, reads []string, fault error) {
	reader := &recordingReader{ctx: values}
	defer func() {
		if r := recover(); r != nil {
			value = decimal.Zero
			reads = reader.reads
			fault = fmt.Errorf("panic: %v", r)
		}
	}()

	if s.Compute == nil {
		return decimal.Zero, nil, errors.New("no compute function")
	}

	v, err := s.Compute(reader)
	if err != nil {
		return decimal.Zero, reader.reads, err
	}
	if len(reader.missing) > 0 {
		return decimal.Zero, reader.reads, fmt.Errorf("read unset field(s): %s", strings.Join(reader.missing, ", "))
	}
	return v, reader.reads, nil
}

func narrateStep(values *Context, s Step, logger Logger) (text string) {
	if s.Narrate == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("narration for step %s failed: %v", s.ID, r)
			text = ""
		}
	}()
	return s.Narrate(values)
}
