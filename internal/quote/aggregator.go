// Package quote aggregates swap quotes across every configured DEX adapter,
// normalises them to a common scale, and selects the best one under a fixed,
// deterministic priority order.
package quote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
)

// Pools maps adapter name to that adapter's resolved pool for one asset
// pair. Adapters without a usable pool are simply absent.
type Pools map[string]dex.Pool

// Option tunes one Collect or Best call.
type Option func(*options)

type options struct {
	require string
}

// Require makes the call fail unless the named adapter contributed a quote.
// Used by call sites that are committed to executing on a specific DEX.
func Require(dexName string) Option {
	return func(o *options) { o.require = dexName }
}

// Aggregator fans a quoting request out to every adapter with a resolved
// pool and normalises the answers. It holds no mutable state.
type Aggregator struct {
	registry *dex.Registry
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator over the given adapter registry.
func NewAggregator(registry *dex.Registry, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		registry: registry,
		logger:   logger.With(slog.String("component", "aggregator")),
	}
}

// ResolvePools resolves the pair's liquidity pool on every registered
// adapter. A missing pool on one DEX is absorbed (logged, entry omitted);
// the mapping may legitimately be empty.
func (a *Aggregator) ResolvePools(ctx context.Context, from, to domain.Asset) (Pools, error) {
	pools := make(Pools)
	for _, adapter := range a.registry.InPriorityOrder() {
		name := adapter.Name()
		pool, err := adapter.ResolvePool(ctx, dex.WireID(name, from), dex.WireID(name, to))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("pool resolution failed, excluding dex",
				slog.String("dex", name),
				slog.String("pair", from.Code+"/"+to.Code),
				slog.String("error", err.Error()),
			)
			continue
		}
		pools[name] = pool
	}
	return pools, nil
}

// Collect asks every adapter with a resolved pool for a fixed-input quote of
// amountIn (unscaled units of from) and returns the normalised quotes keyed
// by adapter name. Single-adapter failures are absorbed unless the adapter
// was marked required via Require.
func (a *Aggregator) Collect(ctx context.Context, pools Pools, from, to domain.Asset, amountIn, slippage decimal.Decimal, opts ...Option) (map[string]domain.Quote, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	scaledIn := from.Scale(amountIn)
	quotes := make(map[string]domain.Quote, len(pools))

	for _, adapter := range a.registry.InPriorityOrder() {
		name := adapter.Name()
		pool, ok := pools[name]
		if !ok {
			continue
		}

		aq, err := adapter.FetchQuote(ctx, pool, dex.WireID(name, from), scaledIn, slippage)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("quote failed, excluding dex",
				slog.String("dex", name),
				slog.String("pair", from.Code+"/"+to.Code),
				slog.String("error", err.Error()),
			)
			continue
		}

		amountOut := to.Unscale(aq.ScaledOut)

		// Adapters that compute their own worst-case figure are taken
		// at their word; applying the tolerance again would double it.
		var withSlippage decimal.Decimal
		if aq.HasSlippageFigure {
			withSlippage = to.Unscale(aq.ScaledOutWithSlippage)
		} else {
			withSlippage = amountOut.Mul(decimal.NewFromInt(1).Sub(slippage))
		}

		q := domain.Quote{
			Dex:                   name,
			FromAsset:             from,
			ToAsset:               to,
			AmountIn:              amountIn,
			AmountOut:             amountOut,
			AmountOutWithSlippage: withSlippage,
			Slippage:              slippage,
			Payload:               aq.Payload,
		}
		quotes[name] = q

		a.logger.Info("quote received",
			slog.String("dex", name),
			slog.String("amount_in", from.FormatAmount(amountIn)),
			slog.String("amount_out", to.FormatAmount(amountOut)),
			slog.String("min_receive", to.FormatAmount(withSlippage)),
		)
	}

	if o.require != "" {
		if _, ok := quotes[o.require]; !ok {
			return nil, fmt.Errorf("quote: required dex %s unavailable: %w", o.require, domain.ErrNoQuote)
		}
	}
	return quotes, nil
}

// Best collects quotes for the pair and returns the one with the highest raw
// AmountOut. Comparison is strictly greater-than over the fixed priority
// order, so ties deterministically go to the earlier-enumerated adapter.
// Returns domain.ErrNoQuote when no adapter produced a usable quote; that
// condition is not retryable for this leg at this point in time.
func (a *Aggregator) Best(ctx context.Context, pools Pools, from, to domain.Asset, amountIn, slippage decimal.Decimal, opts ...Option) (domain.Quote, error) {
	quotes, err := a.Collect(ctx, pools, from, to, amountIn, slippage, opts...)
	if err != nil {
		return domain.Quote{}, err
	}
	return SelectBest(quotes)
}

// SelectBestConservative picks the quote with the highest worst-case
// (slippage-adjusted) receive amount. Spot orders gate on guaranteed
// minimums, so they compare the conservative figures rather than the raw
// outputs the arbitrage path uses.
func SelectBestConservative(quotes map[string]domain.Quote) (domain.Quote, error) {
	var (
		best  domain.Quote
		found bool
	)
	for _, name := range dex.Priority() {
		q, ok := quotes[name]
		if !ok {
			continue
		}
		if !found || q.AmountOutWithSlippage.GreaterThan(best.AmountOutWithSlippage) {
			best = q
			found = true
		}
	}
	if !found {
		return domain.Quote{}, domain.ErrNoQuote
	}
	return best, nil
}

// SelectBest picks the winning quote from an already-collected mapping using
// the fixed priority order for tie-breaking.
func SelectBest(quotes map[string]domain.Quote) (domain.Quote, error) {
	var (
		best  domain.Quote
		found bool
	)
	for _, name := range dex.Priority() {
		q, ok := quotes[name]
		if !ok {
			continue
		}
		if !found || q.AmountOut.GreaterThan(best.AmountOut) {
			best = q
			found = true
		}
	}
	if !found {
		return domain.Quote{}, domain.ErrNoQuote
	}
	return best, nil
}
