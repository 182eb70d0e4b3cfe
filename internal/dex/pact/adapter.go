package pact

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// Adapter implements dex.Adapter for the Pact AMM.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// New creates the Pact adapter.
func New(client *Client, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger.With(slog.String("component", "dex"), slog.String("dex", dex.Pact)),
	}
}

// Name implements dex.Adapter.
func (a *Adapter) Name() string { return dex.Pact }

// ResolvePool implements dex.Adapter. Pact lists pools in both asset orders,
// so a miss on (a, b) is retried as (b, a) before giving up.
func (a *Adapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (dex.Pool, error) {
	pools, err := a.client.ListPools(ctx, asset1, asset2)
	if err != nil {
		return dex.Pool{}, err
	}
	if len(pools) == 0 {
		if pools, err = a.client.ListPools(ctx, asset2, asset1); err != nil {
			return dex.Pool{}, err
		}
	}

	for _, p := range pools {
		if !p.IsDeprecated {
			return dex.Pool{Dex: dex.Pact, Payload: p}, nil
		}
	}
	return dex.Pool{}, fmt.Errorf("pact: pair %d/%d: %w", asset1, asset2, domain.ErrPoolNotFound)
}

// FetchQuote implements dex.Adapter. The output amount is computed from the
// live reserves with the constant-product formula, fee taken on the input
// side, matching the vendor SDK's client-side quoting.
func (a *Adapter) FetchQuote(ctx context.Context, pool dex.Pool, fromID uint64, scaledIn uint64, slippage decimal.Decimal) (dex.AdapterQuote, error) {
	listing, ok := pool.Payload.(poolListing)
	if !ok {
		return dex.AdapterQuote{}, fmt.Errorf("pact: pool payload is %T, not a pool handle", pool.Payload)
	}

	state, err := a.client.GetPoolState(ctx, listing.ID)
	if err != nil {
		return dex.AdapterQuote{}, err
	}

	reserveIn, reserveOut := state.TotalPrimary, state.TotalSecondary
	if fromID == listing.SecondaryAssetID {
		reserveIn, reserveOut = reserveOut, reserveIn
	}
	if reserveIn == 0 || reserveOut == 0 {
		return dex.AdapterQuote{}, fmt.Errorf("pact: pool %d has empty reserves: %w", listing.ID, domain.ErrPoolNotFound)
	}

	scaledOut := constantProductOut(scaledIn, reserveIn, reserveOut, listing.FeeBps)
	if scaledOut == 0 {
		return dex.AdapterQuote{}, fmt.Errorf("pact: quote for pool %d produced zero output", listing.ID)
	}

	minOut := decimal.NewFromInt(int64(scaledOut)).
		Mul(decimal.NewFromInt(1).Sub(slippage)).
		Truncate(0).IntPart()

	return dex.AdapterQuote{
		ScaledOut: scaledOut,
		Payload: swapPayload{
			poolID:       listing.ID,
			assetInID:    fromID,
			amountIn:     scaledIn,
			minAmountOut: uint64(minOut),
		},
	}, nil
}

// constantProductOut computes the fixed-input swap output for an x*y=k pool
// with the fee charged on the input amount. All arithmetic is done in big.Int
// to avoid overflow on large reserves.
func constantProductOut(amountIn, reserveIn, reserveOut, feeBps uint64) uint64 {
	in := new(big.Int).SetUint64(amountIn)
	in.Mul(in, new(big.Int).SetUint64(10000-feeBps))

	num := new(big.Int).Mul(in, new(big.Int).SetUint64(reserveOut))
	den := new(big.Int).SetUint64(reserveIn)
	den.Mul(den, big.NewInt(10000))
	den.Add(den, in)

	return num.Div(num, den).Uint64()
}

// Submit implements dex.Adapter. Pact's submission response does not carry
// the settled output amount; callers read it back from the ledger indexer.
func (a *Adapter) Submit(ctx context.Context, account wallet.Account, pool dex.Pool, payload any) (dex.SubmitResult, error) {
	swap, ok := payload.(swapPayload)
	if !ok {
		return dex.SubmitResult{}, fmt.Errorf("pact: payload is %T, not a pact quote payload", payload)
	}

	group, err := a.client.PrepareSwap(ctx, swap.poolID, account.Address, swap.assetInID, swap.amountIn, swap.minAmountOut)
	if err != nil {
		return dex.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	resp, err := a.client.SubmitSwap(ctx, account, group)
	if err != nil {
		return dex.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	a.logger.Debug("swap confirmed", slog.String("txid", resp.TxID))
	return dex.SubmitResult{TxID: resp.TxID}, nil
}

var _ dex.Adapter = (*Adapter)(nil)

// DecodePool implements dex.PoolDecoder.
func (a *Adapter) DecodePool(data []byte) (dex.Pool, error) {
	var listing poolListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return dex.Pool{}, fmt.Errorf("pact: decoding cached pool: %w", err)
	}
	return dex.Pool{Dex: dex.Pact, Payload: listing}, nil
}
