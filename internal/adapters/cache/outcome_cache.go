package cache

import (
	"fmt"

	"pricerelay/internal/host"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// RistrettoOutcomeCache keeps the most recent finished transaction outcomes.
// Old entries are evicted once maxItems is reached, after which their ids
// report as unknown.
type RistrettoOutcomeCache struct {
	cache *ristretto.Cache
}

func NewOutcomeCache(maxItems int64) (*RistrettoOutcomeCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("create outcome cache failed: max items must be positive, got %d", maxItems)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
		// every outcome costs 1, so MaxCost counts outcomes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create outcome cache failed: %w", err)
	}
	return &RistrettoOutcomeCache{cache: c}, nil
}

func (c *RistrettoOutcomeCache) Get(id uuid.UUID) (host.Outcome, bool) {
	if v, ok := c.cache.Get(id.String()); ok {
		out, ok := v.(host.Outcome)
		return out, ok
	}
	return host.Outcome{}, false
}

// Put stores the outcome and waits for the write buffer to drain so a
// following Get observes it.
func (c *RistrettoOutcomeCache) Put(out host.Outcome) {
	c.cache.Set(out.ID.String(), out, 1)
	c.cache.Wait()
}

func (c *RistrettoOutcomeCache) Close() { c.cache.Close() }
