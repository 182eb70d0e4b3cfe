package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPayload struct {
	AppID uint64 `json:"app_id"`
}

type decodableAdapter struct {
	fakeAdapter
}

func (d *decodableAdapter) DecodePool(data []byte) (Pool, error) {
	var p cachedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Pool{}, err
	}
	return Pool{Dex: d.name, Payload: p}, nil
}

type memoryPoolCache struct {
	entries map[string][]byte
	getErr  error
	sets    int
}

func newMemoryPoolCache() *memoryPoolCache {
	return &memoryPoolCache{entries: make(map[string][]byte)}
}

func (m *memoryPoolCache) key(dex string, a1, a2 uint64) string {
	return fmt.Sprintf("%s:%d:%d", dex, a1, a2)
}

func (m *memoryPoolCache) Get(ctx context.Context, dex string, a1, a2 uint64) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	data, ok := m.entries[m.key(dex, a1, a2)]
	return data, ok, nil
}

func (m *memoryPoolCache) Set(ctx context.Context, dex string, a1, a2 uint64, payload []byte, ttl time.Duration) error {
	m.sets++
	m.entries[m.key(dex, a1, a2)] = payload
	return nil
}

func TestCachedServesSecondResolveFromCache(t *testing.T) {
	adapter := &decodableAdapter{fakeAdapter{
		name: Algofi,
		pool: Pool{Dex: Algofi, Payload: cachedPayload{AppID: 605929989}},
	}}
	cache := newMemoryPoolCache()
	wrapped := Cached(adapter, cache, time.Minute)

	first, err := wrapped.ResolvePool(context.Background(), 1, 31566704)
	require.NoError(t, err)
	second, err := wrapped.ResolvePool(context.Background(), 1, 31566704)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, adapter.resolves)
	assert.Equal(t, 1, cache.sets)
}

func TestCachedDegradesCacheErrorToMiss(t *testing.T) {
	adapter := &decodableAdapter{fakeAdapter{
		name: Pact,
		pool: Pool{Dex: Pact, Payload: cachedPayload{AppID: 1}},
	}}
	cache := newMemoryPoolCache()
	cache.getErr = fmt.Errorf("redis: connection refused")
	wrapped := Cached(adapter, cache, time.Minute)

	pool, err := wrapped.ResolvePool(context.Background(), 0, 31566704)
	require.NoError(t, err)
	assert.Equal(t, Pact, pool.Dex)
	assert.Equal(t, 1, adapter.resolves)
}

func TestCachedLeavesNonDecodersUnwrapped(t *testing.T) {
	adapter := &fakeAdapter{name: Tinyman}

	wrapped := Cached(adapter, newMemoryPoolCache(), time.Minute)

	assert.Same(t, Adapter(adapter), wrapped)
}
