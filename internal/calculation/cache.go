package calculation

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

var cacheNamespace = uuid.MustParse("6f1c3a52-8d0e-4b7a-9f3e-2c5d1e4a7b90")

// CacheKey derives a deterministic key from a fiscal year and seed. Identical
// inputs always map to the same key.
func CacheKey(year string, seed domain.Seed) uuid.UUID {
	var b strings.Builder
	b.WriteString(year)
	for _, f := range seed {
		b.WriteByte(0)
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value.String())
	}
	return uuid.NewSHA1(cacheNamespace, []byte(b.String()))
}

// Cache memoizes run outcomes. Runs are pure, so a cached outcome is
// interchangeable with a fresh one. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Outcome
	hits    int
	misses  int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uuid.UUID]*Outcome)}
}

// Get returns a copy of the cached outcome for key.
func (c *Cache) Get(key uuid.UUID) (*Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return o.clone(), true
}

// Put stores an outcome under key.
func (c *Cache) Put(key uuid.UUID, o *Outcome) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = o.clone()
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (o *Outcome) clone() *Outcome {
	out := &Outcome{
		Context: o.Context.Clone(),
		Trace:   append([]domain.TraceEntry(nil), o.Trace...),
		Reads:   make(map[string][]string, len(o.Reads)),
		Faults:  o.Faults,
	}
	for k, v := range o.Reads {
		out.Reads[k] = append([]string(nil), v...)
	}
	return out
}
