// Package ledger reads settled transaction amounts back from an Algorand
// indexer. The executor uses it to learn the actual output of a swap whose
// submission response did not carry one.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the REST client for the indexer API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new indexer client. baseURL is the API root, e.g.
// "https://mainnet-idx.algonode.cloud/v2".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// transaction is the subset of the indexer's transaction representation the
// scan needs.
type transaction struct {
	TxType   string        `json:"tx-type"`
	Group    string        `json:"group"`
	Sender   string        `json:"sender"`
	Inner    []transaction `json:"inner-txns"`
	Payment  *paymentTx    `json:"payment-transaction"`
	Transfer *transferTx   `json:"asset-transfer-transaction"`
}

type paymentTx struct {
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

type transferTx struct {
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

type searchResponse struct {
	Transactions []transaction `json:"transactions"`
}

// searchByAddress returns the transactions touching address in the given
// round.
func (c *Client) searchByAddress(ctx context.Context, address string, round uint64) ([]transaction, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("round", strconv.FormatUint(round, 10))

	u := c.baseURL + "/transactions?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger: search transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ledger: search transactions: status %d: %s", resp.StatusCode, msg)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ledger: decode search response: %w", err)
	}
	return out.Transactions, nil
}

// SettledAmount scans the given round for the swap group's payout to the
// account and returns the scaled amount received. found is false when the
// round holds no matching payout; callers then fall back to the worst-case
// quoted amount. A false found with a nil error is a normal result, not a
// failure.
func (c *Client) SettledAmount(ctx context.Context, address string, round uint64, group string) (amount uint64, found bool, err error) {
	txns, err := c.searchByAddress(ctx, address, round)
	if err != nil {
		return 0, false, err
	}

	for _, tx := range txns {
		if tx.TxType != "appl" || (group != "" && tx.Group != group) {
			continue
		}
		for _, inner := range tx.Inner {
			switch {
			case inner.TxType == "pay" && inner.Payment != nil && inner.Payment.Receiver == address:
				return inner.Payment.Amount, true, nil
			case inner.TxType == "axfer" && inner.Transfer != nil && inner.Transfer.Receiver == address:
				return inner.Transfer.Amount, true, nil
			}
		}
	}
	return 0, false, nil
}
