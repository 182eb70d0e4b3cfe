package tinyman

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// Adapter implements dex.Adapter for the Tinyman AMM.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// New creates the Tinyman adapter.
func New(client *Client, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger.With(slog.String("component", "dex"), slog.String("dex", dex.Tinyman)),
	}
}

// Name implements dex.Adapter.
func (a *Adapter) Name() string { return dex.Tinyman }

// ResolvePool implements dex.Adapter. Both asset references are fetched
// first, matching the client SDK's lookup sequence.
func (a *Adapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (dex.Pool, error) {
	if _, err := a.client.FetchAsset(ctx, asset1); err != nil {
		return dex.Pool{}, fmt.Errorf("tinyman: asset %d: %w", asset1, domain.ErrPoolNotFound)
	}
	if _, err := a.client.FetchAsset(ctx, asset2); err != nil {
		return dex.Pool{}, fmt.Errorf("tinyman: asset %d: %w", asset2, domain.ErrPoolNotFound)
	}

	info, err := a.client.FetchPool(ctx, asset1, asset2)
	if err != nil {
		return dex.Pool{}, fmt.Errorf("tinyman: pair %d/%d: %w", asset1, asset2, domain.ErrPoolNotFound)
	}
	if !info.Exists {
		return dex.Pool{}, fmt.Errorf("tinyman: pair %d/%d: %w", asset1, asset2, domain.ErrPoolNotFound)
	}

	return dex.Pool{Dex: dex.Tinyman, Payload: info}, nil
}

// FetchQuote implements dex.Adapter. Tinyman applies the slippage tolerance
// server-side, so the returned worst-case figure is used as-is downstream
// with no second adjustment.
func (a *Adapter) FetchQuote(ctx context.Context, pool dex.Pool, fromID uint64, scaledIn uint64, slippage decimal.Decimal) (dex.AdapterQuote, error) {
	info, ok := pool.Payload.(poolInfo)
	if !ok {
		return dex.AdapterQuote{}, fmt.Errorf("tinyman: pool payload is %T, not a pool handle", pool.Payload)
	}

	q, err := a.client.FetchFixedInputQuote(ctx, info.Address, fromID, scaledIn, slippage.String())
	if err != nil {
		return dex.AdapterQuote{}, err
	}
	if q.AmountOut == 0 {
		return dex.AdapterQuote{}, fmt.Errorf("tinyman: quote for pool %s produced zero output", info.Address)
	}

	assetOutID := info.Asset1ID
	if fromID == info.Asset1ID {
		assetOutID = info.Asset2ID
	}

	return dex.AdapterQuote{
		ScaledOut:             q.AmountOut,
		ScaledOutWithSlippage: q.AmountOutWithSlippage,
		HasSlippageFigure:     true,
		Payload: swapPayload{
			poolAddress:           info.Address,
			swapID:                q.SwapID,
			assetOutID:            assetOutID,
			amountOutWithSlippage: q.AmountOutWithSlippage,
		},
	}, nil
}

// Submit implements dex.Adapter. After the swap confirms, any redeemable
// excess on the pool is claimed and added to the settled output, so the
// result is reported as settled without an indexer read-back.
func (a *Adapter) Submit(ctx context.Context, account wallet.Account, pool dex.Pool, payload any) (dex.SubmitResult, error) {
	swap, ok := payload.(swapPayload)
	if !ok {
		return dex.SubmitResult{}, fmt.Errorf("tinyman: payload is %T, not a tinyman quote payload", payload)
	}

	resp, err := a.client.SubmitSwap(ctx, account, swap.poolAddress, swap.swapID)
	if err != nil {
		return dex.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	scaledOut := swap.amountOutWithSlippage

	// Tinyman settles against the worst-case amount and accrues the
	// difference as excess; claim it so the true output is banked.
	excesses, err := a.client.FetchExcessAmounts(ctx, swap.poolAddress, account.Address)
	if err != nil {
		a.logger.Warn("excess lookup failed, keeping worst-case amount",
			slog.String("pool", swap.poolAddress),
			slog.String("error", err.Error()),
		)
	} else {
		for _, ex := range excesses {
			if ex.AssetID != swap.assetOutID || ex.Amount == 0 {
				continue
			}
			if err := a.client.RedeemExcess(ctx, account, swap.poolAddress, ex); err != nil {
				a.logger.Warn("excess redemption failed",
					slog.String("pool", swap.poolAddress),
					slog.Uint64("amount", ex.Amount),
					slog.String("error", err.Error()),
				)
				continue
			}
			scaledOut += ex.Amount
			a.logger.Debug("excess redeemed",
				slog.Uint64("asset_id", ex.AssetID),
				slog.Uint64("amount", ex.Amount),
			)
		}
	}

	return dex.SubmitResult{
		TxID:      resp.TxID,
		ScaledOut: scaledOut,
		Settled:   true,
	}, nil
}

var _ dex.Adapter = (*Adapter)(nil)

// DecodePool implements dex.PoolDecoder.
func (a *Adapter) DecodePool(data []byte) (dex.Pool, error) {
	var info poolInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return dex.Pool{}, fmt.Errorf("tinyman: decoding cached pool: %w", err)
	}
	return dex.Pool{Dex: dex.Tinyman, Payload: info}, nil
}
