package arb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/quote"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

var errRejected = errors.New("pact: group rejected: slippage exceeded")

// quoteLeg prices one ALGO->USDC swap through the adapter so the resulting
// payload round-trips into Submit the way production quotes do.
func quoteLeg(t *testing.T, agg *quote.Aggregator, amountIn string) IntendedSwap {
	t.Helper()
	pools, err := agg.ResolvePools(context.Background(), testAlgo, testUsdc)
	require.NoError(t, err)
	q, err := agg.Best(context.Background(), pools, testAlgo, testUsdc,
		decimal.RequireFromString(amountIn), decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	return IntendedSwap{Quote: q, Pools: pools}
}

func TestExecuteSettlesAdapterReportedAmount(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 1, testLogger())

	outcome, err := x.Execute(context.Background(), wallet.Account{}, quoteLeg(t, agg, "10"), false)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(outcome.AmountOut))
	assert.True(t, outcome.Settled)
	assert.Equal(t, 1, adapter.submits)
}

func TestExecuteFallsBackToQuotedMinimum(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, unsettled: true}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 1, testLogger())

	intended := quoteLeg(t, agg, "10")
	outcome, err := x.Execute(context.Background(), wallet.Account{}, intended, false)
	require.NoError(t, err)

	// No settled amount and no ledger round to read back from, so the
	// conservative slippage-adjusted quote stands in.
	assert.True(t, intended.Quote.AmountOutWithSlippage.Equal(outcome.AmountOut))
	assert.False(t, outcome.Settled)
}

func TestExecuteWithoutRequoteStopsAfterOneAttempt(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, submitErrs: []error{errRejected}}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 5, testLogger())

	outcome, err := x.Execute(context.Background(), wallet.Account{}, quoteLeg(t, agg, "10"), false)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, 1, adapter.submits)
}

func TestExecuteRequoteBoundedByMaxAttempts(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, submitErrs: []error{errRejected}}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 2, testLogger())

	intended := quoteLeg(t, agg, "10")
	fetchesBefore := adapter.fetches

	outcome, err := x.Execute(context.Background(), wallet.Account{}, intended, true)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, 2, adapter.submits)
	// One fresh quote between the two attempts.
	assert.Equal(t, fetchesBefore+1, adapter.fetches)
}

func TestExecuteRequoteRecoversOnLaterAttempt(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, submitErrs: []error{errRejected, nil}}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 3, testLogger())

	outcome, err := x.Execute(context.Background(), wallet.Account{}, quoteLeg(t, agg, "10"), true)
	require.NoError(t, err)

	assert.True(t, outcome.Settled)
	assert.Equal(t, 2, adapter.submits)
}

func TestIsNoQuote(t *testing.T) {
	wrapped := fmt.Errorf("round trip loop: %w", domain.ErrNoQuote)

	assert.True(t, IsNoQuote(wrapped))
	assert.False(t, IsNoQuote(errRejected))
	assert.False(t, IsNoQuote(nil))
}

func TestExecuteHonoursContextDuringBackoff(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, submitErrs: []error{errRejected}}
	registry, agg := newTestAggregator(adapter)
	x := NewExecutor(registry, agg, nil, 5, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Execute(ctx, wallet.Account{}, quoteLeg(t, agg, "10"), true)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, adapter.submits)
}
