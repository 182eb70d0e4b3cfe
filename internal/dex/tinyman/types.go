package tinyman

// assetRef is the asset-lookup response.
type assetRef struct {
	ID       uint64 `json:"id"`
	UnitName string `json:"unit_name"`
	Decimals int32  `json:"decimals"`
}

// poolInfo is the pool-lookup response.
type poolInfo struct {
	Address  string `json:"address"`
	Asset1ID uint64 `json:"asset_1_id"`
	Asset2ID uint64 `json:"asset_2_id"`
	Exists   bool   `json:"exists"`
}

// quoteResponse is the fixed-input quote response. Tinyman computes the
// worst-case receive amount itself from the requested slippage.
type quoteResponse struct {
	AmountIn              uint64  `json:"amount_in"`
	AmountOut             uint64  `json:"amount_out"`
	AmountOutWithSlippage uint64  `json:"amount_out_with_slippage"`
	Price                 float64 `json:"price"`
	PriceWithSlippage     float64 `json:"price_with_slippage"`
	SwapID                string  `json:"swap_id"`
}

// submitResponse reports the submitted swap group.
type submitResponse struct {
	TxID string `json:"txid"`
}

// excessAmount is one entry of the post-swap excess report. Leftover amounts
// accrue to the pool until redeemed.
type excessAmount struct {
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

// swapPayload is the opaque quote payload carried from FetchQuote to Submit.
type swapPayload struct {
	poolAddress           string
	swapID                string
	assetOutID            uint64
	amountOutWithSlippage uint64
}
