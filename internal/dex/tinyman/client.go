// Package tinyman implements the dex.Adapter contract against the Tinyman
// AMM REST surface. Tinyman identifies the native asset as 0 on the wire,
// supplies its own slippage-adjusted quote figures, and can leave redeemable
// excess amounts behind after a swap.
package tinyman

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

// Client is the REST client for the Tinyman API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Tinyman REST client. baseURL is the API root, e.g.
// "https://mainnet.analytics.tinyman.org/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchAsset looks up an asset reference by on-chain ID.
func (c *Client) FetchAsset(ctx context.Context, assetID uint64) (assetRef, error) {
	var out assetRef
	if err := c.getJSON(ctx, fmt.Sprintf("/assets/%d", assetID), nil, &out); err != nil {
		return assetRef{}, err
	}
	return out, nil
}

// FetchPool looks up the pool for an asset pair.
func (c *Client) FetchPool(ctx context.Context, asset1, asset2 uint64) (poolInfo, error) {
	params := url.Values{}
	params.Set("asset_1_id", strconv.FormatUint(asset1, 10))
	params.Set("asset_2_id", strconv.FormatUint(asset2, 10))

	var out poolInfo
	if err := c.getJSON(ctx, "/pools", params, &out); err != nil {
		return poolInfo{}, err
	}
	return out, nil
}

// FetchFixedInputQuote quotes a fixed-input swap with the given slippage
// tolerance applied server-side.
func (c *Client) FetchFixedInputQuote(ctx context.Context, poolAddress string, assetInID, amountIn uint64, slippage string) (quoteResponse, error) {
	params := url.Values{}
	params.Set("asset_in_id", strconv.FormatUint(assetInID, 10))
	params.Set("amount_in", strconv.FormatUint(amountIn, 10))
	params.Set("slippage", slippage)

	var out quoteResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/pools/%s/quote", poolAddress), params, &out); err != nil {
		return quoteResponse{}, err
	}
	return out, nil
}

// SubmitSwap executes a previously quoted swap, blocking until the group is
// confirmed or rejected.
func (c *Client) SubmitSwap(ctx context.Context, account wallet.Account, poolAddress, swapID string) (submitResponse, error) {
	body, err := json.Marshal(map[string]any{
		"sender":  account.Address,
		"swap_id": swapID,
		"wait":    true,
	})
	if err != nil {
		return submitResponse{}, fmt.Errorf("tinyman: marshal swap request: %w", err)
	}

	var out submitResponse
	path := fmt.Sprintf("/pools/%s/swap", poolAddress)
	if err := c.postSigned(ctx, account, path, body, &out); err != nil {
		return submitResponse{}, err
	}
	return out, nil
}

// FetchExcessAmounts returns redeemable excess left for the account on a
// pool after a swap.
func (c *Client) FetchExcessAmounts(ctx context.Context, poolAddress, address string) ([]excessAmount, error) {
	params := url.Values{}
	params.Set("address", address)

	var out []excessAmount
	if err := c.getJSON(ctx, fmt.Sprintf("/pools/%s/excess", poolAddress), params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RedeemExcess claims a reported excess amount back to the account.
func (c *Client) RedeemExcess(ctx context.Context, account wallet.Account, poolAddress string, excess excessAmount) error {
	body, err := json.Marshal(map[string]any{
		"sender":   account.Address,
		"asset_id": excess.AssetID,
		"amount":   excess.Amount,
		"wait":     true,
	})
	if err != nil {
		return fmt.Errorf("tinyman: marshal redeem request: %w", err)
	}

	var out submitResponse
	return c.postSigned(ctx, account, fmt.Sprintf("/pools/%s/redeem", poolAddress), body, &out)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("tinyman: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tinyman: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tinyman: %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tinyman: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postSigned(ctx context.Context, account wallet.Account, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tinyman: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Algo-Address", account.Address)
	req.Header.Set("X-Algo-Signature", base64.StdEncoding.EncodeToString(account.Sign(body)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tinyman: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tinyman: %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tinyman: decode %s response: %w", path, err)
	}
	return nil
}
