// Package domain defines the core value types shared by every layer of the
// bot: assets, quotes, round-trip plans, swap outcomes, and the store and
// cache interfaces implemented by the infrastructure packages.
package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Asset describes one tradable Algorand asset. Instances are loaded once at
// startup from the supported-asset catalog and treated as immutable; all
// components share the same read-only values.
type Asset struct {
	// ID is the catalog's logical identifier for the asset. It never
	// changes, regardless of which DEX the asset is traded on.
	ID string

	// OnChainID is the canonical ASA ID. The native asset (ALGO) is stored
	// with OnChainID 0; individual adapters may use a different convention
	// on the wire (see dex.TranslateNative).
	OnChainID uint64

	// Decimals is the number of decimal places in the asset's smallest
	// denomination. Always >= 0.
	Decimals int32

	// Code is the short human ticker, e.g. "ALGO", "USDC".
	Code string

	// Name is the full asset name from the catalog.
	Name string

	IsNative bool
	IsActive bool
}

// Scale converts an unscaled (human) amount into an integer amount expressed
// in the asset's smallest denomination. Fractional remainder below
// 10^-Decimals is truncated, never rounded up.
func (a Asset) Scale(amount decimal.Decimal) uint64 {
	scaled := amount.Shift(a.Decimals).Truncate(0)
	if scaled.Sign() < 0 {
		return 0
	}
	return scaled.BigInt().Uint64()
}

// Unscale converts an integer amount in the smallest denomination back into
// an unscaled decimal amount. Unscale(Scale(x)) may differ from x by less
// than one unit of the smallest denomination.
func (a Asset) Unscale(scaled uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(scaled), 0).Shift(-a.Decimals)
}

// FormatAmount renders an amount with the asset's full precision, for logs
// and operator reports.
func (a Asset) FormatAmount(amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(a.Decimals), a.Code)
}
