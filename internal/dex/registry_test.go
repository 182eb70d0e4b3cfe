package dex

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockadjacent/aggrefi/internal/wallet"
)

type fakeAdapter struct {
	name     string
	resolves int
	pool     Pool
	poolErr  error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) ResolvePool(ctx context.Context, asset1, asset2 uint64) (Pool, error) {
	f.resolves++
	if f.poolErr != nil {
		return Pool{}, f.poolErr
	}
	return f.pool, nil
}

func (f *fakeAdapter) FetchQuote(ctx context.Context, pool Pool, fromID, scaledIn uint64, slippage decimal.Decimal) (AdapterQuote, error) {
	return AdapterQuote{ScaledOut: scaledIn}, nil
}

func (f *fakeAdapter) Submit(ctx context.Context, account wallet.Account, pool Pool, payload any) (SubmitResult, error) {
	return SubmitResult{TxID: "tx"}, nil
}

func TestRegistryInPriorityOrder(t *testing.T) {
	// Registered out of order; enumeration follows the fixed priority.
	r := NewRegistry(
		&fakeAdapter{name: Tinyman},
		&fakeAdapter{name: Algofi},
		&fakeAdapter{name: Pact},
	)

	assert.Equal(t, []string{Algofi, Pact, Tinyman}, r.Names())
}

func TestRegistrySkipsUnregistered(t *testing.T) {
	r := NewRegistry(&fakeAdapter{name: Tinyman})

	adapters := r.InPriorityOrder()
	require.Len(t, adapters, 1)
	assert.Equal(t, Tinyman, adapters[0].Name())

	_, ok := r.Get(Algofi)
	assert.False(t, ok)
}
