// Package service composes the arbitrage core with the catalog, stores,
// caches, locks, and notifications into the operations the app modes drive.
package service

import (
	"context"
	"fmt"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// AssetCatalog is the in-memory view of the supported-asset catalog, loaded
// once at startup and immutable afterwards.
type AssetCatalog struct {
	byID      map[string]domain.Asset
	byOnChain map[uint64]domain.Asset
}

// LoadCatalog reads all active assets from the store.
func LoadCatalog(ctx context.Context, store domain.AssetStore) (*AssetCatalog, error) {
	assets, err := store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: loading asset catalog: %w", err)
	}

	c := &AssetCatalog{
		byID:      make(map[string]domain.Asset, len(assets)),
		byOnChain: make(map[uint64]domain.Asset, len(assets)),
	}
	for _, a := range assets {
		c.byID[a.ID] = a
		c.byOnChain[a.OnChainID] = a
		// The native asset may be configured under either of the two
		// on-chain ID conventions (0 and 1); accept both.
		if a.IsNative {
			c.byOnChain[0] = a
			c.byOnChain[1] = a
		}
	}
	return c, nil
}

// ByID looks an asset up by catalog identifier.
func (c *AssetCatalog) ByID(id string) (domain.Asset, error) {
	a, ok := c.byID[id]
	if !ok {
		return domain.Asset{}, fmt.Errorf("service: asset %q: %w", id, domain.ErrUnsupportedAsset)
	}
	return a, nil
}

// ResolveOnChain maps configured on-chain IDs to catalog assets, failing on
// the first unsupported ID.
func (c *AssetCatalog) ResolveOnChain(onChainIDs ...uint64) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(onChainIDs))
	for _, id := range onChainIDs {
		a, ok := c.byOnChain[id]
		if !ok {
			return nil, fmt.Errorf("service: asset id %d: %w", id, domain.ErrUnsupportedAsset)
		}
		out = append(out, a)
	}
	return out, nil
}

// Len returns the number of catalog assets.
func (c *AssetCatalog) Len() int {
	return len(c.byID)
}
