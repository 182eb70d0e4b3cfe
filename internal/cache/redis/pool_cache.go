package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// PoolCache implements domain.PoolCache using plain Redis strings with a TTL.
// Pool payloads are adapter-specific JSON blobs; the cache does not interpret
// them.
//
// Key schema:
//
//	aggrefi:pool:{dex}:{asset1}:{asset2} - serialized pool payload
type PoolCache struct {
	rdb *redis.Client
}

// NewPoolCache creates a PoolCache backed by the given Client.
func NewPoolCache(c *Client) *PoolCache {
	return &PoolCache{rdb: c.raw()}
}

func poolKey(dex string, asset1, asset2 uint64) string {
	// Pair keys are order-sensitive on purpose: pact pools report reserves
	// relative to query order.
	return fmt.Sprintf("aggrefi:pool:%s:%d:%d", dex, asset1, asset2)
}

// Get retrieves a cached pool payload. The ok flag is false on a miss; a miss
// is not an error.
func (pc *PoolCache) Get(ctx context.Context, dex string, asset1, asset2 uint64) ([]byte, bool, error) {
	data, err := pc.rdb.Get(ctx, poolKey(dex, asset1, asset2)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get pool %s %d/%d: %w", dex, asset1, asset2, err)
	}
	return data, true, nil
}

// Set stores a pool payload with the given TTL.
func (pc *PoolCache) Set(ctx context.Context, dex string, asset1, asset2 uint64, payload []byte, ttl time.Duration) error {
	if err := pc.rdb.Set(ctx, poolKey(dex, asset1, asset2), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set pool %s %d/%d: %w", dex, asset1, asset2, err)
	}
	return nil
}

var _ domain.PoolCache = (*PoolCache)(nil)
