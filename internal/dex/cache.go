package dex

import (
	"context"
	"encoding/json"
	"time"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// PoolDecoder is implemented by adapters whose pool handles survive a trip
// through the pool cache as JSON.
type PoolDecoder interface {
	DecodePool(data []byte) (Pool, error)
}

// cachedAdapter serves ResolvePool from a shared pool cache before hitting
// the network. Quotes and submissions pass straight through; only pool
// identity is cacheable.
type cachedAdapter struct {
	Adapter
	cache domain.PoolCache
	ttl   time.Duration
}

// Cached wraps adapter so ResolvePool consults cache first. Adapters that do
// not implement PoolDecoder are returned unwrapped.
func Cached(adapter Adapter, cache domain.PoolCache, ttl time.Duration) Adapter {
	if _, ok := adapter.(PoolDecoder); !ok {
		return adapter
	}
	return &cachedAdapter{Adapter: adapter, cache: cache, ttl: ttl}
}

func (c *cachedAdapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (Pool, error) {
	dec := c.Adapter.(PoolDecoder)

	// Cache errors degrade to a miss; a flaky cache must not take quoting
	// down with it.
	if data, ok, err := c.cache.Get(ctx, c.Name(), asset1, asset2); err == nil && ok {
		if pool, err := dec.DecodePool(data); err == nil {
			return pool, nil
		}
	}

	pool, err := c.Adapter.ResolvePool(ctx, asset1, asset2)
	if err != nil {
		return Pool{}, err
	}

	if data, err := json.Marshal(pool.Payload); err == nil {
		_ = c.cache.Set(ctx, c.Name(), asset1, asset2, data, c.ttl)
	}
	return pool, nil
}
