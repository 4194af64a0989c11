package calculation

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrFieldExists is returned when a context field is written twice.
var ErrFieldExists = errors.New("field already set")

// Values is the read-only view of a context handed to step functions.
type Values interface {
	Get(key string) decimal.Decimal
}

// Context is the ordered, append-only set of values produced during one run.
// Seed fields come first, followed by derived fields in write order.
type Context struct {
	keys   []string
	values map[string]decimal.Decimal
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{values: make(map[string]decimal.Decimal)}
}

// NewContextFromSeed copies every seed field into a fresh context.
func NewContextFromSeed(seed domain.Seed) (*Context, error) {
	c := &Context{
		keys:   make([]string, 0, len(seed)),
		values: make(map[string]decimal.Decimal, len(seed)),
	}
	for _, f := range seed {
		if err := c.Set(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("invalid seed: %w", err)
		}
	}
	return c, nil
}

// Set writes a new field. Existing fields are never overwritten.
func (c *Context) Set(key string, v decimal.Decimal) error {
	if _, exists := c.values[key]; exists {
		return fmt.Errorf("%w: %s", ErrFieldExists, key)
	}
	c.keys = append(c.keys, key)
	c.values[key] = v
	return nil
}

// Lookup returns a field and whether it has been set.
func (c *Context) Lookup(key string) (decimal.Decimal, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Get returns a field, or zero when it is unset.
func (c *Context) Get(key string) decimal.Decimal {
	return c.values[key]
}

// Has reports whether key has been written.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the field names in write order.
func (c *Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of fields.
func (c *Context) Len() int { return len(c.keys) }

// Clone returns an independent copy.
func (c *Context) Clone() *Context {
	clone := &Context{
		keys:   c.Keys(),
		values: make(map[string]decimal.Decimal, len(c.values)),
	}
	for k, v := range c.values {
		clone.values[k] = v
	}
	return clone
}

// Snapshot returns every field as an ordered seed-shaped list.
func (c *Context) Snapshot() domain.Seed {
	out := make(domain.Seed, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, domain.SeedField{Name: k, Value: c.values[k]})
	}
	return out
}

// recordingReader hands a step the values it asks for and remembers which
// fields were read and which of those were unset.
type recordingReader struct {
	ctx     *Context
	reads   []string
	missing []string
}

func (r *recordingReader) Get(key string) decimal.Decimal {
	r.reads = append(r.reads, key)
	v, ok := r.ctx.Lookup(key)
	if !ok {
		r.missing = append(r.missing, key)
	}
	return v
}
