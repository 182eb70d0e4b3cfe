// Package pact implements the dex.Adapter contract against the Pact AMM.
// Pool discovery and state use the hosted Pact API; fixed-input quotes are
// computed client-side from the pool's constant-product invariant, the same
// way the vendor SDK does.
package pact

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// Client is the REST client for the Pact API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Pact REST client. baseURL is the API root, e.g.
// "https://api.pact.fi/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListPools returns the pools trading the given asset pair.
func (c *Client) ListPools(ctx context.Context, primary, secondary uint64) ([]poolListing, error) {
	params := url.Values{}
	params.Set("primary_asset__algoid", strconv.FormatUint(primary, 10))
	params.Set("secondary_asset__algoid", strconv.FormatUint(secondary, 10))

	var out poolListResponse
	if err := c.getJSON(ctx, "/pools", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetPoolState fetches the live reserve snapshot for a pool.
func (c *Client) GetPoolState(ctx context.Context, poolID uint64) (poolState, error) {
	var out poolState
	if err := c.getJSON(ctx, fmt.Sprintf("/pools/%d/state", poolID), nil, &out); err != nil {
		return poolState{}, err
	}
	return out, nil
}

// PrepareSwap asks the swap builder for the transaction group realising the
// given fixed-input swap.
func (c *Client) PrepareSwap(ctx context.Context, poolID uint64, sender string, assetInID, amountIn, minAmountOut uint64) (swapTxGroup, error) {
	body, err := json.Marshal(map[string]any{
		"pool_id":        poolID,
		"sender":         sender,
		"asset_in_id":    assetInID,
		"amount_in":      amountIn,
		"min_amount_out": minAmountOut,
	})
	if err != nil {
		return swapTxGroup{}, fmt.Errorf("pact: marshal swap request: %w", err)
	}

	var out swapTxGroup
	if err := c.postJSON(ctx, "/swaps/prepare", body, nil, &out); err != nil {
		return swapTxGroup{}, err
	}
	return out, nil
}

// SubmitSwap signs the prepared transaction group and submits it, blocking
// until confirmation.
func (c *Client) SubmitSwap(ctx context.Context, account wallet.Account, group swapTxGroup) (submitResponse, error) {
	signatures := make([]string, 0, len(group.Transactions))
	for _, tx := range group.Transactions {
		raw, err := base64.StdEncoding.DecodeString(tx)
		if err != nil {
			return submitResponse{}, fmt.Errorf("pact: decode prepared transaction: %w", err)
		}
		signatures = append(signatures, base64.StdEncoding.EncodeToString(account.Sign(raw)))
	}

	body, err := json.Marshal(map[string]any{
		"sender":       account.Address,
		"transactions": group.Transactions,
		"signatures":   signatures,
		"wait":         true,
	})
	if err != nil {
		return submitResponse{}, fmt.Errorf("pact: marshal submit request: %w", err)
	}

	var out submitResponse
	if err := c.postJSON(ctx, "/swaps/submit", body, nil, &out); err != nil {
		return submitResponse{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("pact: create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pact: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pact: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pact: %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pact: decode %s response: %w", path, err)
	}
	return nil
}
