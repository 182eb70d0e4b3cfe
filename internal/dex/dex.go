// Package dex defines the uniform adapter contract the quoting and execution
// core consumes, the fixed adapter priority order, and the per-adapter
// native-asset identifier translation.
package dex

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// Pool is an opaque handle to one resolved liquidity pool. Payload belongs to
// the adapter that produced the handle; nothing outside that adapter may
// interpret it.
type Pool struct {
	Dex     string
	Payload any
}

// AdapterQuote is the raw quoting result from one adapter, in scaled
// (smallest denomination) units.
type AdapterQuote struct {
	ScaledOut uint64

	// ScaledOutWithSlippage is set when the adapter computes its own
	// worst-case receive amount. HasSlippageFigure reports whether it did;
	// when false the aggregator applies the slippage tolerance itself.
	ScaledOutWithSlippage uint64
	HasSlippageFigure     bool

	// Payload carries whatever the adapter needs to execute this quote
	// later. Opaque to callers.
	Payload any
}

// SubmitResult reports a completed submission attempt. When the adapter
// learns the settled output amount directly it sets Settled; otherwise the
// executor reads the amount back from the ledger indexer.
type SubmitResult struct {
	TxID string

	// Round is the ledger round the transaction group was confirmed in,
	// when the adapter reports it. Used to scope the indexer read-back.
	Round uint64

	ScaledOut uint64
	Settled   bool
}

// Adapter wraps one exchange's pool-lookup, quoting, and swap-submission
// primitives behind a uniform interface. All methods are blocking network
// operations; implementations must honour ctx cancellation.
type Adapter interface {
	// Name returns the adapter's canonical lowercase name, e.g. "algofi".
	Name() string

	// ResolvePool looks up the liquidity pool for the asset pair. Asset IDs
	// are already in the adapter's wire convention (see WireID). Returns
	// domain.ErrPoolNotFound when the pool does not exist or is not
	// initialised.
	ResolvePool(ctx context.Context, asset1, asset2 uint64) (Pool, error)

	// FetchQuote quotes a fixed-input swap of scaledIn units of the asset
	// identified by fromID against the given pool.
	FetchQuote(ctx context.Context, pool Pool, fromID uint64, scaledIn uint64, slippage decimal.Decimal) (AdapterQuote, error)

	// Submit signs and submits the swap described by the quote payload.
	// Returns domain.ErrSubmissionFailed (wrapped) on any rejection,
	// including slippage-protection trips.
	Submit(ctx context.Context, account wallet.Account, pool Pool, payload any) (SubmitResult, error)
}
