package ledger

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefCacheTTL = time.Second
	cacheKey    = "ledger"
)

// Cache memoizes the reshaped ledger in a single slot for a short window so
// that one render cycle never reads the document twice.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	table     Table
	expiresAt time.Time
	valid     bool

	group singleflight.Group
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefCacheTTL
	}

	return &Cache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the cached table while it is fresh and otherwise rebuilds it
// from a full read. Concurrent callers hitting an expired slot share one read.
// The shared read ignores the cancellation of whichever caller started it, so
// a departing caller cannot leave an empty table behind for the others.
func (c *Cache) Get(ctx context.Context) Table {
	if t, ok := c.fresh(); ok {
		return t
	}

	loadCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(cacheKey, func() (any, error) {
		if t, ok := c.fresh(); ok {
			return t, nil
		}
		t := Reshape(c.loader.Load(loadCtx))

		c.mu.Lock()
		c.table = t
		c.expiresAt = c.now().Add(c.ttl)
		c.valid = true
		c.mu.Unlock()

		return t, nil
	})

	return v.(Table)
}

// Invalidate drops the cached table; the next Get reads the ledger.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
}

func (c *Cache) fresh() (Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Before(c.expiresAt) {
		return c.table, true
	}

	return Table{}, false
}
