package pact

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

// newTestAPI serves a single ALGO/USDC pool listed under primary asset 0.
func newTestAPI(t *testing.T, listing poolListing, state poolState) *Adapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pools":
			resp := poolListResponse{}
			if r.URL.Query().Get("primary_asset__algoid") == "0" {
				resp.Results = []poolListing{listing}
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/pools/7/state":
			_ = json.NewEncoder(w).Encode(state)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return New(NewClient(srv.URL), testLogger())
}

var testListing = poolListing{ID: 7, PrimaryAssetID: 0, SecondaryAssetID: 31566704, FeeBps: 30}

func TestResolvePoolFindsListedPair(t *testing.T) {
	a := newTestAPI(t, testListing, poolState{})

	pool, err := a.ResolvePool(context.Background(), 0, 31566704)
	require.NoError(t, err)

	assert.Equal(t, dex.Pact, pool.Dex)
	assert.Equal(t, testListing, pool.Payload)
}

func TestResolvePoolRetriesReversedOrder(t *testing.T) {
	a := newTestAPI(t, testListing, poolState{})

	// The listing only exists under primary 0; querying (usdc, algo) must
	// fall back to the swapped order.
	pool, err := a.ResolvePool(context.Background(), 31566704, 0)
	require.NoError(t, err)
	assert.Equal(t, testListing, pool.Payload)
}

func TestResolvePoolSkipsDeprecated(t *testing.T) {
	deprecated := testListing
	deprecated.IsDeprecated = true
	a := newTestAPI(t, deprecated, poolState{})

	_, err := a.ResolvePool(context.Background(), 0, 31566704)
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func TestFetchQuoteUsesLiveReserves(t *testing.T) {
	state := poolState{TotalPrimary: 1_000_000_000, TotalSecondary: 2_000_000_000}
	a := newTestAPI(t, testListing, state)

	q, err := a.FetchQuote(context.Background(),
		dex.Pool{Dex: dex.Pact, Payload: testListing},
		0, 1_000_000, decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	want := constantProductOut(1_000_000, state.TotalPrimary, state.TotalSecondary, testListing.FeeBps)
	assert.Equal(t, want, q.ScaledOut)
	assert.False(t, q.HasSlippageFigure)

	payload, ok := q.Payload.(swapPayload)
	require.True(t, ok)
	assert.Equal(t, uint64(7), payload.poolID)
	assert.Equal(t, uint64(1_000_000), payload.amountIn)
	wantMin := decimal.NewFromInt(int64(want)).
		Mul(decimal.RequireFromString("0.99")).Truncate(0).IntPart()
	assert.Equal(t, uint64(wantMin), payload.minAmountOut)
}

func TestFetchQuoteSwapsReservesForSecondaryInput(t *testing.T) {
	state := poolState{TotalPrimary: 1_000_000_000, TotalSecondary: 2_000_000_000}
	a := newTestAPI(t, testListing, state)

	q, err := a.FetchQuote(context.Background(),
		dex.Pool{Dex: dex.Pact, Payload: testListing},
		31566704, 1_000_000, decimal.Zero)
	require.NoError(t, err)

	want := constantProductOut(1_000_000, state.TotalSecondary, state.TotalPrimary, testListing.FeeBps)
	assert.Equal(t, want, q.ScaledOut)
}

func TestConstantProductOut(t *testing.T) {
	// 0.3% fee on a balanced pool.
	assert.Equal(t, uint64(996), constantProductOut(1000, 1_000_000, 1_000_000, 30))
	// No fee still pays the price impact.
	assert.Equal(t, uint64(999), constantProductOut(1000, 1_000_000, 1_000_000, 0))
	// Doubling the opposing reserve roughly doubles the output.
	assert.Equal(t, uint64(1992), constantProductOut(1000, 1_000_000, 2_000_000, 30))
}

func TestDecodePoolRoundTrip(t *testing.T) {
	a := New(NewClient("http://unused"), testLogger())

	data, err := json.Marshal(testListing)
	require.NoError(t, err)

	pool, err := a.DecodePool(data)
	require.NoError(t, err)
	assert.Equal(t, testListing, pool.Payload)
}
