package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

var (
	testAlgo = domain.Asset{ID: "algo", OnChainID: 0, Decimals: 6, Code: "ALGO", IsNative: true, IsActive: true}
	testUsdc = domain.Asset{ID: "usdc", OnChainID: 31566704, Decimals: 6, Code: "USDC", IsActive: true}
)

type stubAssetStore struct {
	assets []domain.Asset
	err    error
}

func (s *stubAssetStore) GetByOnChainID(ctx context.Context, onChainID uint64) (domain.Asset, error) {
	for _, a := range s.assets {
		if a.OnChainID == onChainID {
			return a, nil
		}
	}
	return domain.Asset{}, domain.ErrNotFound
}

func (s *stubAssetStore) ListActive(ctx context.Context) ([]domain.Asset, error) {
	return s.assets, s.err
}

func newTestCatalog(t *testing.T) *AssetCatalog {
	t.Helper()
	c, err := LoadCatalog(context.Background(), &stubAssetStore{assets: []domain.Asset{testAlgo, testUsdc}})
	require.NoError(t, err)
	return c
}

func TestCatalogByID(t *testing.T) {
	c := newTestCatalog(t)

	a, err := c.ByID("usdc")
	require.NoError(t, err)
	assert.Equal(t, "USDC", a.Code)

	_, err = c.ByID("doge")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAsset)
}

func TestCatalogResolvesNativeUnderBothConventions(t *testing.T) {
	c := newTestCatalog(t)

	// ALGO is id 0 on most DEXs and id 1 on Algofi; operators configure
	// either, and both must land on the same catalog asset.
	for _, id := range []uint64{0, 1} {
		assets, err := c.ResolveOnChain(id)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "algo", assets[0].ID)
	}
}

func TestCatalogResolveOnChainUnknownID(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.ResolveOnChain(0, 31566704, 999)
	assert.ErrorIs(t, err, domain.ErrUnsupportedAsset)
}

func TestCatalogLen(t *testing.T) {
	assert.Equal(t, 2, newTestCatalog(t).Len())
}
