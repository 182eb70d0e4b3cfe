package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpotOrderAssetDirection(t *testing.T) {
	buy := SpotOrder{Type: SpotOrderBuy, AssetID: "gobtc", CounterID: "usdc"}
	sell := SpotOrder{Type: SpotOrderSell, AssetID: "gobtc", CounterID: "usdc"}

	// A buy spends the counter asset and receives the order asset.
	assert.Equal(t, "usdc", buy.InAssetID())
	assert.Equal(t, "gobtc", buy.OutAssetID())

	// A sell spends the order asset and receives the counter asset.
	assert.Equal(t, "gobtc", sell.InAssetID())
	assert.Equal(t, "usdc", sell.OutAssetID())
}
