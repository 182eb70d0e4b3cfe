package pact

// poolListing is one entry of the pool-list response.
type poolListing struct {
	ID               uint64 `json:"id"`
	PrimaryAssetID   uint64 `json:"primary_asset_id"`
	SecondaryAssetID uint64 `json:"secondary_asset_id"`
	FeeBps           uint64 `json:"fee_bps"`
	IsDeprecated     bool   `json:"is_deprecated"`
}

// poolListResponse wraps the paginated pool list.
type poolListResponse struct {
	Results []poolListing `json:"results"`
}

// poolState is the live reserve snapshot used for client-side quoting.
type poolState struct {
	TotalPrimary   uint64 `json:"total_primary"`
	TotalSecondary uint64 `json:"total_secondary"`
}

// swapTxGroup is the prepared transaction group returned by the swap
// builder, submitted as-is after signing.
type swapTxGroup struct {
	Transactions []string `json:"transactions"` // base64-encoded
}

// submitResponse reports the submitted transaction group.
type submitResponse struct {
	TxID string `json:"txid"`
}

// swapPayload is the opaque quote payload carried from FetchQuote to Submit.
type swapPayload struct {
	poolID       uint64
	assetInID    uint64
	amountIn     uint64
	minAmountOut uint64
}
