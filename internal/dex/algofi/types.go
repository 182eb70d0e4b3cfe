package algofi

// PoolType selects which Algofi pool family a pair trades on.
type PoolType string

const (
	PoolConstantProduct PoolType = "constant_product_25bp"
	PoolNanoswap        PoolType = "nanoswap"
)

// poolStatus values reported by the pool endpoint.
const poolStatusActive = "active"

// poolInfo is the pool-lookup response.
type poolInfo struct {
	AppID    uint64 `json:"app_id"`
	Asset1ID uint64 `json:"asset1_id"`
	Asset2ID uint64 `json:"asset2_id"`
	PoolType string `json:"pool_type"`
	Status   string `json:"pool_status"`
}

// quoteResponse is the fixed-input quote response. Deltas are signed from
// the pool's perspective: the asset paid out has a positive delta.
type quoteResponse struct {
	Asset1Delta int64 `json:"asset1_delta"`
	Asset2Delta int64 `json:"asset2_delta"`
}

// swapRequest is the signed swap-submission body.
type swapRequest struct {
	Sender       string `json:"sender"`
	AppID        uint64 `json:"app_id"`
	AssetInID    uint64 `json:"asset_in_id"`
	AmountIn     uint64 `json:"amount_in"`
	MinAmountOut uint64 `json:"min_amount_out"`
	Fee          uint64 `json:"fee,omitempty"`
}

// swapResponse reports the submitted transaction group.
type swapResponse struct {
	TxID           string `json:"txid"`
	ConfirmedRound uint64 `json:"confirmed_round"`
}

// swapPayload is the opaque quote payload carried from FetchQuote to Submit.
type swapPayload struct {
	appID        uint64
	assetInID    uint64
	amountIn     uint64
	minAmountOut uint64
	nanoswap     bool
}
