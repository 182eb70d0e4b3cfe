package algofi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdapter(t *testing.T, pool poolInfo, quote quoteResponse) (*Adapter, *string) {
	t.Helper()
	var lastPoolType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pools":
			lastPoolType = r.URL.Query().Get("pool_type")
			_ = json.NewEncoder(w).Encode(pool)
		case "/pools/42/quote":
			_ = json.NewEncoder(w).Encode(quote)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return New(NewClient(srv.URL), "mainnet", testLogger()), &lastPoolType
}

func TestIsNanoswapPair(t *testing.T) {
	a := New(NewClient("http://unused"), "mainnet", testLogger())

	// USDC/USDT is a stable pair on mainnet; ALGO/USDC is not.
	assert.True(t, a.isNanoswapPair(31566704, 312769))
	assert.False(t, a.isNanoswapPair(1, 31566704))
	assert.False(t, a.isNanoswapPair(31566704, 31566704))

	testnet := New(NewClient("http://unused"), "testnet", testLogger())
	assert.True(t, testnet.isNanoswapPair(10458941, 26837931))
	assert.False(t, testnet.isNanoswapPair(31566704, 312769))
}

func TestResolvePoolSelectsPoolFamily(t *testing.T) {
	active := poolInfo{AppID: 42, Asset1ID: 31566704, Asset2ID: 312769, Status: poolStatusActive}
	a, lastPoolType := newTestAdapter(t, active, quoteResponse{})

	_, err := a.ResolvePool(context.Background(), 31566704, 312769)
	require.NoError(t, err)
	assert.Equal(t, string(PoolNanoswap), *lastPoolType)

	_, err = a.ResolvePool(context.Background(), 1, 31566704)
	require.NoError(t, err)
	assert.Equal(t, string(PoolConstantProduct), *lastPoolType)
}

func TestResolvePoolRejectsInactive(t *testing.T) {
	a, _ := newTestAdapter(t, poolInfo{AppID: 42, Status: "empty"}, quoteResponse{})

	_, err := a.ResolvePool(context.Background(), 1, 31566704)
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func TestFetchQuoteReadsOpposingDelta(t *testing.T) {
	pool := poolInfo{AppID: 42, Asset1ID: 1, Asset2ID: 31566704, Status: poolStatusActive, PoolType: string(PoolConstantProduct)}
	a, _ := newTestAdapter(t, pool, quoteResponse{Asset1Delta: -1_000_000, Asset2Delta: 1_992_000})

	q, err := a.FetchQuote(context.Background(),
		dex.Pool{Dex: dex.Algofi, Payload: pool},
		1, 1_000_000, decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1_992_000), q.ScaledOut)
	assert.False(t, q.HasSlippageFigure)

	payload, ok := q.Payload.(swapPayload)
	require.True(t, ok)
	assert.Equal(t, uint64(42), payload.appID)
	// minAmountOut enforces the tolerance on chain.
	assert.Equal(t, uint64(1_972_080), payload.minAmountOut)
	assert.False(t, payload.nanoswap)
}

func TestFetchQuoteRejectsNonPositiveOutput(t *testing.T) {
	pool := poolInfo{AppID: 42, Asset1ID: 1, Asset2ID: 31566704, Status: poolStatusActive}
	a, _ := newTestAdapter(t, pool, quoteResponse{Asset1Delta: -1_000_000, Asset2Delta: 0})

	_, err := a.FetchQuote(context.Background(),
		dex.Pool{Dex: dex.Algofi, Payload: pool},
		1, 1_000_000, decimal.Zero)
	assert.Error(t, err)
}
