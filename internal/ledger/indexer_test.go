package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "TRADERADDR"

func newTestClient(t *testing.T, resp searchResponse) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		require.Equal(t, addr, r.URL.Query().Get("address"))
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "")
}

func TestSettledAmountFindsInnerPayout(t *testing.T) {
	c := newTestClient(t, searchResponse{Transactions: []transaction{
		{
			TxType: "appl",
			Group:  "grp1",
			Inner: []transaction{
				{TxType: "axfer", Transfer: &transferTx{Receiver: "SOMEONEELSE", Amount: 999}},
				{TxType: "axfer", Transfer: &transferTx{Receiver: addr, Amount: 1_995_000}},
			},
		},
	}})

	amount, found, err := c.SettledAmount(context.Background(), addr, 1000, "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(1_995_000), amount)
}

func TestSettledAmountMatchesNativePayment(t *testing.T) {
	c := newTestClient(t, searchResponse{Transactions: []transaction{
		{
			TxType: "appl",
			Inner: []transaction{
				{TxType: "pay", Payment: &paymentTx{Receiver: addr, Amount: 55_000_000}},
			},
		},
	}})

	amount, found, err := c.SettledAmount(context.Background(), addr, 1000, "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(55_000_000), amount)
}

func TestSettledAmountFiltersByGroup(t *testing.T) {
	c := newTestClient(t, searchResponse{Transactions: []transaction{
		{
			TxType: "appl",
			Group:  "other",
			Inner: []transaction{
				{TxType: "pay", Payment: &paymentTx{Receiver: addr, Amount: 1}},
			},
		},
	}})

	_, found, err := c.SettledAmount(context.Background(), addr, 1000, "wanted")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSettledAmountEmptyRoundIsNotAnError(t *testing.T) {
	c := newTestClient(t, searchResponse{})

	amount, found, err := c.SettledAmount(context.Background(), addr, 1000, "")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, amount)
}
