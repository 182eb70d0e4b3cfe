package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotOrderType distinguishes buy orders (spend the quote asset) from sell
// orders (spend the base asset).
type SpotOrderType string

const (
	SpotOrderBuy  SpotOrderType = "buy"
	SpotOrderSell SpotOrderType = "sell"
)

// SpotOrder is one resting order from the off-chain order book. Exactly one
// of MinReceivePerUnit / MaxReceivePerUnit is set; it gates execution on the
// worst-case (slippage-adjusted) amount the swap would produce.
type SpotOrder struct {
	ID                string
	UserID            string
	Type              SpotOrderType
	AssetID           string // asset being bought or sold
	CounterID         string // asset being spent (buy) or received (sell)
	Amount            decimal.Decimal
	Slippage          decimal.Decimal
	MinReceivePerUnit *decimal.Decimal
	MaxReceivePerUnit *decimal.Decimal

	IsActive    bool
	IsCompleted bool
	AmtReceived decimal.Decimal
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// InAssetID returns the catalog ID of the asset the swap spends.
func (o SpotOrder) InAssetID() string {
	if o.Type == SpotOrderBuy {
		return o.CounterID
	}
	return o.AssetID
}

// OutAssetID returns the catalog ID of the asset the swap receives.
func (o SpotOrder) OutAssetID() string {
	if o.Type == SpotOrderBuy {
		return o.AssetID
	}
	return o.CounterID
}
