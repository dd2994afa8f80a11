package quote

import (
	"context"
	"sync"
	"time"
)

// Cache holds the most recently fetched USD price per CMC ID, read-mostly
// with a single writer on refresh (spec §5's price cache resource policy).
// A clock abstraction (now) lets tests advance time deterministically
// instead of sleeping, per the design notes' "price cache must use a
// clock abstraction" note.
type Cache struct {
	mu     sync.RWMutex
	prices map[int]float64
	stamp  time.Time

	ttl             time.Duration
	fetcher         PriceFetcher
	now             func() time.Time
}

func NewCache(fetcher PriceFetcher, ttl time.Duration) *Cache {
	return &Cache{
		prices:  make(map[int]float64),
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Prices returns the current price map for the requested IDs, refreshing
// from the upstream fetcher if the cache is stale. On a stale cache and a
// failing refresh it falls back to the last good values (spec §4.6: "on
// upstream failure, return the last cached value"). Only a wholly empty
// cache with a failing fetch is an error.
func (c *Cache) Prices(ctx context.Context, cmcIDs []int) (map[int]float64, error) {
	c.mu.RLock()
	fresh := c.now().Sub(c.stamp) < c.ttl
	hasAll := fresh
	if hasAll {
		for _, id := range cmcIDs {
			if _, ok := c.prices[id]; !ok {
				hasAll = false
				break
			}
		}
	}
	snapshot := c.snapshotLocked()
	c.mu.RUnlock()

	if hasAll {
		return snapshot, nil
	}

	fetched, err := c.fetcher.FetchPrices(ctx, cmcIDs)
	if err != nil {
		if len(snapshot) > 0 {
			return snapshot, nil
		}
		return nil, err
	}

	c.mu.Lock()
	for id, price := range fetched {
		c.prices[id] = price
	}
	c.stamp = c.now()
	out := c.snapshotLocked()
	c.mu.Unlock()

	return out, nil
}

func (c *Cache) snapshotLocked() map[int]float64 {
	out := make(map[int]float64, len(c.prices))
	for id, price := range c.prices {
		out[id] = price
	}
	return out
}

// SetClock overrides the cache's clock; used only by tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}
