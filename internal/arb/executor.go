package arb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/ledger"
	"github.com/blockadjacent/aggrefi/internal/quote"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

const (
	// defaultMaxAttempts bounds the requote-and-retry loop per leg. The
	// adapter-side slippage protection is the only bound against degraded
	// fills within an attempt, so attempts themselves must be finite.
	defaultMaxAttempts = 5

	backoffBase = 500 * time.Millisecond
	backoffMax  = 5 * time.Second
)

// IntendedSwap is the executor's input: the quote to execute and the pools
// it was collected from, so a requote can reuse the pair without another
// resolution round on the happy path.
type IntendedSwap struct {
	Quote domain.Quote
	Pools quote.Pools
}

// Executor drives a single leg against the quote's originating adapter, with
// a bounded requote-and-retry loop on transient failure.
type Executor struct {
	registry    *dex.Registry
	agg         *quote.Aggregator
	ledger      *ledger.Client
	maxAttempts int
	logger      *slog.Logger
}

// NewExecutor creates an Executor. maxAttempts <= 0 selects the default
// bound.
func NewExecutor(registry *dex.Registry, agg *quote.Aggregator, lc *ledger.Client, maxAttempts int, logger *slog.Logger) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Executor{
		registry:    registry,
		agg:         agg,
		ledger:      lc,
		maxAttempts: maxAttempts,
		logger:      logger.With(slog.String("component", "executor")),
	}
}

// Execute submits the intended swap. On success it reads the settled output
// back from the ledger (falling back to the conservative slippage-adjusted
// quote when the ledger has nothing) and returns the outcome.
//
// On failure with allowRequote, pools are re-resolved and the leg re-quoted
// for the ORIGINAL input amount and slippage before the next attempt, with
// exponential backoff between attempts. Each requote reads live pool state,
// so attempt k may execute on materially different terms than attempt 1.
// Without allowRequote a single failed attempt terminates with no outcome.
func (x *Executor) Execute(ctx context.Context, account wallet.Account, intended IntendedSwap, allowRequote bool) (*domain.SwapOutcome, error) {
	q := intended.Quote
	pools := intended.Pools

	attempts := 1
	if allowRequote {
		attempts = x.maxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome, err := x.attempt(ctx, account, q, pools)
		if err == nil {
			return outcome, nil
		}
		lastErr = err

		x.logger.Warn("swap attempt failed",
			slog.Int("attempt", attempt),
			slog.String("dex", q.Dex),
			slog.String("pair", q.FromAsset.Code+"/"+q.ToAsset.Code),
			slog.String("error", err.Error()),
		)

		if !allowRequote || attempt == attempts {
			break
		}

		if err := sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}

		// Re-resolve live pools and re-quote the original amount; the
		// replacement may pick a different dex than the failed attempt.
		pools, err = x.agg.ResolvePools(ctx, q.FromAsset, q.ToAsset)
		if err != nil {
			return nil, err
		}
		requoted, err := x.agg.Best(ctx, pools, q.FromAsset, q.ToAsset, intended.Quote.AmountIn, intended.Quote.Slippage)
		if err != nil {
			return nil, fmt.Errorf("arb: requote %s->%s: %w", q.FromAsset.Code, q.ToAsset.Code, err)
		}
		q = requoted
	}

	return nil, fmt.Errorf("arb: leg %s->%s failed after %d attempt(s): %w",
		q.FromAsset.Code, q.ToAsset.Code, attempts, lastErr)
}

// attempt performs one submission of the quote and settles the outcome.
func (x *Executor) attempt(ctx context.Context, account wallet.Account, q domain.Quote, pools quote.Pools) (*domain.SwapOutcome, error) {
	adapter, ok := x.registry.Get(q.Dex)
	if !ok {
		return nil, fmt.Errorf("arb: no adapter registered for dex %s", q.Dex)
	}
	pool, ok := pools[q.Dex]
	if !ok {
		return nil, fmt.Errorf("arb: no resolved pool for dex %s: %w", q.Dex, domain.ErrPoolNotFound)
	}

	res, err := adapter.Submit(ctx, account, pool, q.Payload)
	if err != nil {
		return nil, err
	}

	outcome := &domain.SwapOutcome{
		Dex:                   q.Dex,
		FromAsset:             q.FromAsset,
		ToAsset:               q.ToAsset,
		AmountIn:              q.AmountIn,
		AmountOutWithSlippage: q.AmountOutWithSlippage,
		Slippage:              q.Slippage,
		Quote:                 q,
	}

	switch {
	case res.Settled:
		outcome.AmountOut = q.ToAsset.Unscale(res.ScaledOut)
		outcome.Settled = true
	default:
		amount, found := x.readBack(ctx, account.Address, res)
		if found {
			outcome.AmountOut = q.ToAsset.Unscale(amount)
			outcome.Settled = true
		} else {
			// Conservative estimate: the swap cannot have produced
			// less than the slippage-protected minimum.
			outcome.AmountOut = q.AmountOutWithSlippage
		}
	}

	x.logger.Info("leg executed",
		slog.String("dex", outcome.Dex),
		slog.String("amount_in", outcome.FromAsset.FormatAmount(outcome.AmountIn)),
		slog.String("amount_out", outcome.ToAsset.FormatAmount(outcome.AmountOut)),
		slog.Bool("settled", outcome.Settled),
	)
	return outcome, nil
}

// readBack asks the ledger indexer for the settled payout. Indexer errors
// degrade to "not found": the conservative quote fallback covers both.
func (x *Executor) readBack(ctx context.Context, address string, res dex.SubmitResult) (uint64, bool) {
	if x.ledger == nil || res.Round == 0 {
		return 0, false
	}
	amount, found, err := x.ledger.SettledAmount(ctx, address, res.Round, "")
	if err != nil {
		x.logger.Warn("ledger read-back failed, using quoted minimum",
			slog.String("txid", res.TxID),
			slog.String("error", err.Error()),
		)
		return 0, false
	}
	return amount, found
}

// sleepBackoff waits out the exponential backoff for the given attempt
// number, honouring ctx cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	d := backoffBase << (attempt - 1)
	if d > backoffMax {
		d = backoffMax
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// IsNoQuote reports whether err means no DEX could quote the leg, a
// non-retryable condition for that leg at that point in time.
func IsNoQuote(err error) bool {
	return errors.Is(err, domain.ErrNoQuote)
}
