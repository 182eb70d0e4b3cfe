// Package algofi implements the dex.Adapter contract against the Algofi AMM
// REST surface. Algofi identifies the native asset as 1 on the wire and runs
// NanoSwap pools for a small set of stablecoin pairs.
package algofi

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

// Client is the REST client for the Algofi AMM API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Algofi REST client. baseURL is the API root, e.g.
// "https://api.algofi.org/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetPool looks up the pool for an asset pair within one pool family.
func (c *Client) GetPool(ctx context.Context, poolType PoolType, asset1, asset2 uint64) (poolInfo, error) {
	params := url.Values{}
	params.Set("pool_type", string(poolType))
	params.Set("asset1_id", strconv.FormatUint(asset1, 10))
	params.Set("asset2_id", strconv.FormatUint(asset2, 10))

	var out poolInfo
	if err := c.getJSON(ctx, "/pools", params, &out); err != nil {
		return poolInfo{}, err
	}
	return out, nil
}

// GetSwapExactForQuote quotes a fixed-input swap against the given pool app.
func (c *Client) GetSwapExactForQuote(ctx context.Context, appID, assetInID, amountIn uint64) (quoteResponse, error) {
	params := url.Values{}
	params.Set("asset_in_id", strconv.FormatUint(assetInID, 10))
	params.Set("amount_in", strconv.FormatUint(amountIn, 10))

	var out quoteResponse
	path := fmt.Sprintf("/pools/%d/quote", appID)
	if err := c.getJSON(ctx, path, params, &out); err != nil {
		return quoteResponse{}, err
	}
	return out, nil
}

// SubmitSwap signs and submits a swap, blocking until the transaction group
// is confirmed or rejected.
func (c *Client) SubmitSwap(ctx context.Context, account wallet.Account, req swapRequest) (swapResponse, error) {
	req.Sender = account.Address

	body, err := json.Marshal(req)
	if err != nil {
		return swapResponse{}, fmt.Errorf("algofi: marshal swap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return swapResponse{}, fmt.Errorf("algofi: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Algo-Address", account.Address)
	httpReq.Header.Set("X-Algo-Signature", base64.StdEncoding.EncodeToString(account.Sign(body)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return swapResponse{}, fmt.Errorf("algofi: submit swap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return swapResponse{}, fmt.Errorf("algofi: swap rejected: status %d: %s", resp.StatusCode, msg)
	}

	var out swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return swapResponse{}, fmt.Errorf("algofi: decode swap response: %w", err)
	}
	return out, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("algofi: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("algofi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("algofi: %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("algofi: decode %s response: %w", path, err)
	}
	return nil
}
