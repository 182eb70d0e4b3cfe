package arb

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/quote"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

var (
	testAlgo = domain.Asset{ID: "algo", OnChainID: 0, Decimals: 6, Code: "ALGO", IsNative: true}
	testUsdc = domain.Asset{ID: "usdc", OnChainID: 31566704, Decimals: 6, Code: "USDC"}
)

// scriptedAdapter quotes through a rate function and settles submissions
// against the quoted amount, with a per-call error script for failure paths.
type scriptedAdapter struct {
	name    string
	poolErr error

	// rate maps scaled input to scaled output per quote. Nil means 1:1.
	rate func(fromID, scaledIn uint64) uint64

	// submitErrs scripts Submit calls in order; a nil entry succeeds. The
	// last entry repeats once the script runs out.
	submitErrs []error

	// unsettled makes successful submissions report no settled amount.
	unsettled bool

	fetches int
	submits int
}

func (s *scriptedAdapter) Name() string { return s.name }

func (s *scriptedAdapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (dex.Pool, error) {
	if s.poolErr != nil {
		return dex.Pool{}, s.poolErr
	}
	return dex.Pool{Dex: s.name}, nil
}

func (s *scriptedAdapter) FetchQuote(ctx context.Context, pool dex.Pool, fromID, scaledIn uint64, slippage decimal.Decimal) (dex.AdapterQuote, error) {
	s.fetches++
	out := scaledIn
	if s.rate != nil {
		out = s.rate(fromID, scaledIn)
	}
	return dex.AdapterQuote{ScaledOut: out, Payload: out}, nil
}

func (s *scriptedAdapter) Submit(ctx context.Context, account wallet.Account, pool dex.Pool, payload any) (dex.SubmitResult, error) {
	s.submits++
	if n := len(s.submitErrs); n > 0 {
		idx := s.submits - 1
		if idx >= n {
			idx = n - 1
		}
		if err := s.submitErrs[idx]; err != nil {
			return dex.SubmitResult{}, err
		}
	}
	if s.unsettled {
		return dex.SubmitResult{TxID: "tx"}, nil
	}
	return dex.SubmitResult{TxID: "tx", ScaledOut: payload.(uint64), Settled: true}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAggregator(adapters ...dex.Adapter) (*dex.Registry, *quote.Aggregator) {
	registry := dex.NewRegistry(adapters...)
	return registry, quote.NewAggregator(registry, testLogger())
}

// doubleAlgoLeg doubles the ALGO->X leg and passes the return leg through
// unchanged, so a 2-leg round trip doubles the input.
func doubleAlgoLeg(fromID, scaledIn uint64) uint64 {
	if fromID == 1 || fromID == 0 {
		return scaledIn * 2
	}
	return scaledIn
}

func TestEvaluateChainsRawLegOutputs(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, rate: doubleAlgoLeg}
	_, agg := newTestAggregator(adapter)
	ev := NewEvaluator(agg, decimal.RequireFromString("0.01"), decimal.NewFromInt(1), testLogger())

	plan := domain.NewRoundTripPlan(testAlgo, testUsdc)
	eval, err := ev.Evaluate(context.Background(), plan, decimal.NewFromInt(50))
	require.NoError(t, err)

	require.Len(t, eval.LegQuotes, 2)
	require.Len(t, eval.LegPools, 2)

	// Leg 2 is priced from leg 1's raw output, not the worst-case figure;
	// slippage protection belongs to execution, not evaluation.
	assert.True(t, decimal.NewFromInt(100).Equal(eval.LegQuotes[1].AmountIn))
	assert.True(t, decimal.NewFromInt(100).Equal(eval.FinalOut))
	assert.True(t, eval.Profitable)
	assert.Equal(t, 0, adapter.submits)
}

func TestEvaluateProfitBoundaryIsInclusive(t *testing.T) {
	cases := []struct {
		name       string
		minProfit  string
		profitable bool
	}{
		{"exactly break even", "0", true},
		{"one unit short", "0.000001", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter := &scriptedAdapter{name: dex.Pact}
			_, agg := newTestAggregator(adapter)
			ev := NewEvaluator(agg, decimal.Zero, decimal.RequireFromString(tc.minProfit), testLogger())

			plan := domain.NewRoundTripPlan(testAlgo, testUsdc)
			eval, err := ev.Evaluate(context.Background(), plan, decimal.NewFromInt(50))
			require.NoError(t, err)

			assert.Equal(t, tc.profitable, eval.Profitable)
		})
	}
}

func TestEvaluatePicksBestDexPerLeg(t *testing.T) {
	generous := &scriptedAdapter{name: dex.Tinyman, rate: func(_, in uint64) uint64 { return in * 2 }}
	stingy := &scriptedAdapter{name: dex.Algofi}
	_, agg := newTestAggregator(generous, stingy)
	ev := NewEvaluator(agg, decimal.Zero, decimal.Zero, testLogger())

	plan := domain.NewRoundTripPlan(testAlgo, testUsdc)
	eval, err := ev.Evaluate(context.Background(), plan, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.Equal(t, dex.Tinyman, eval.LegQuotes[0].Dex)
	assert.Equal(t, dex.Tinyman, eval.LegQuotes[1].Dex)
}

func TestEvaluateFailsWhenNoDexHasPool(t *testing.T) {
	adapter := &scriptedAdapter{name: dex.Algofi, poolErr: domain.ErrPoolNotFound}
	_, agg := newTestAggregator(adapter)
	ev := NewEvaluator(agg, decimal.Zero, decimal.Zero, testLogger())

	plan := domain.NewRoundTripPlan(testAlgo, testUsdc)
	_, err := ev.Evaluate(context.Background(), plan, decimal.NewFromInt(10))

	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}
