package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedAsset = errors.New("asset not in supported catalog")
	ErrPoolNotFound     = errors.New("liquidity pool not found")
	ErrNoQuote          = errors.New("no quote available from any dex")
	ErrSubmissionFailed = errors.New("swap submission failed")
	ErrLockHeld         = errors.New("lock already held")
)
