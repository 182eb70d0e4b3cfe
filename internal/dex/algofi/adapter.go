package algofi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

var errNotFound = errors.New("algofi: not found")

// nanoswapFee is the raised transaction fee (microalgos) NanoSwap pools
// require for a swap group.
const nanoswapFee = 5000

// stableAssetIDs lists the on-chain IDs with NanoSwap pools, per network.
// Mainnet: USDC, USDT, STBL. Testnet: the test deployments of the same.
var stableAssetIDs = map[string][]uint64{
	"mainnet": {31566704, 312769, 465865291},
	"testnet": {10458941, 26837931},
}

// Adapter implements dex.Adapter for the Algofi AMM.
type Adapter struct {
	client  *Client
	network string
	logger  *slog.Logger
}

// New creates the Algofi adapter for the given network ("mainnet" or
// "testnet").
func New(client *Client, network string, logger *slog.Logger) *Adapter {
	return &Adapter{
		client:  client,
		network: network,
		logger:  logger.With(slog.String("component", "dex"), slog.String("dex", dex.Algofi)),
	}
}

// Name implements dex.Adapter.
func (a *Adapter) Name() string { return dex.Algofi }

// isNanoswapPair reports whether both assets belong to the network's stable
// set, in which case the pair trades on a NanoSwap pool.
func (a *Adapter) isNanoswapPair(asset1, asset2 uint64) bool {
	inSet := func(id uint64) bool {
		for _, s := range stableAssetIDs[a.network] {
			if s == id {
				return true
			}
		}
		return false
	}
	return asset1 != asset2 && inSet(asset1) && inSet(asset2)
}

// ResolvePool implements dex.Adapter. The pool family is chosen from the
// asset pair: stable pairs trade on NanoSwap, everything else on the 25bp
// constant-product pools.
func (a *Adapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (dex.Pool, error) {
	poolType := PoolConstantProduct
	if a.isNanoswapPair(asset1, asset2) {
		poolType = PoolNanoswap
	}

	info, err := a.client.GetPool(ctx, poolType, asset1, asset2)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return dex.Pool{}, fmt.Errorf("algofi: pair %d/%d: %w", asset1, asset2, domain.ErrPoolNotFound)
		}
		return dex.Pool{}, err
	}
	if info.Status != poolStatusActive {
		return dex.Pool{}, fmt.Errorf("algofi: pair %d/%d uninitialised: %w", asset1, asset2, domain.ErrPoolNotFound)
	}

	return dex.Pool{Dex: dex.Algofi, Payload: info}, nil
}

// FetchQuote implements dex.Adapter. Algofi does not report its own
// worst-case amount, so MinAmountOut is derived here from the slippage
// tolerance and enforced on chain at submission time.
func (a *Adapter) FetchQuote(ctx context.Context, pool dex.Pool, fromID uint64, scaledIn uint64, slippage decimal.Decimal) (dex.AdapterQuote, error) {
	info, ok := pool.Payload.(poolInfo)
	if !ok {
		return dex.AdapterQuote{}, fmt.Errorf("algofi: pool payload is %T, not a pool handle", pool.Payload)
	}

	q, err := a.client.GetSwapExactForQuote(ctx, info.AppID, fromID, scaledIn)
	if err != nil {
		return dex.AdapterQuote{}, err
	}

	// The delta for the side being paid out carries the output amount.
	var delta int64
	if fromID == info.Asset1ID {
		delta = q.Asset2Delta
	} else {
		delta = q.Asset1Delta
	}
	if delta <= 0 {
		return dex.AdapterQuote{}, fmt.Errorf("algofi: quote returned non-positive output %d", delta)
	}
	scaledOut := uint64(delta)

	minOut := decimal.NewFromInt(int64(scaledOut)).
		Mul(decimal.NewFromInt(1).Sub(slippage)).
		Truncate(0).IntPart()

	return dex.AdapterQuote{
		ScaledOut: scaledOut,
		Payload: swapPayload{
			appID:        info.AppID,
			assetInID:    fromID,
			amountIn:     scaledIn,
			minAmountOut: uint64(minOut),
			nanoswap:     info.PoolType == string(PoolNanoswap),
		},
	}, nil
}

// Submit implements dex.Adapter. The settled output amount is not part of
// the submission response; callers read it back from the ledger indexer.
func (a *Adapter) Submit(ctx context.Context, account wallet.Account, pool dex.Pool, payload any) (dex.SubmitResult, error) {
	swap, ok := payload.(swapPayload)
	if !ok {
		return dex.SubmitResult{}, fmt.Errorf("algofi: payload is %T, not an algofi quote payload", payload)
	}

	req := swapRequest{
		AppID:        swap.appID,
		AssetInID:    swap.assetInID,
		AmountIn:     swap.amountIn,
		MinAmountOut: swap.minAmountOut,
	}
	if swap.nanoswap {
		req.Fee = nanoswapFee
	}

	resp, err := a.client.SubmitSwap(ctx, account, req)
	if err != nil {
		return dex.SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	a.logger.Debug("swap confirmed",
		slog.String("txid", resp.TxID),
		slog.Uint64("round", resp.ConfirmedRound),
	)
	return dex.SubmitResult{TxID: resp.TxID, Round: resp.ConfirmedRound}, nil
}

var _ dex.Adapter = (*Adapter)(nil)

// DecodePool implements dex.PoolDecoder.
func (a *Adapter) DecodePool(data []byte) (dex.Pool, error) {
	var info poolInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return dex.Pool{}, fmt.Errorf("algofi: decoding cached pool: %w", err)
	}
	return dex.Pool{Dex: dex.Algofi, Payload: info}, nil
}
