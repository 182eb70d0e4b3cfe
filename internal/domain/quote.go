package domain

import (
	"github.com/shopspring/decimal"
)

// Quote is one DEX's answer to "how much of ToAsset do I get for AmountIn of
// FromAsset". Amounts are unscaled (human) values. A Quote is owned by the
// call that produced it and passed by value downstream; nothing holds a
// long-lived reference to it.
type Quote struct {
	// Dex is the name of the adapter that produced the quote.
	Dex string

	FromAsset Asset
	ToAsset   Asset

	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal

	// AmountOutWithSlippage is the worst-case acceptable receive amount.
	// When the adapter supplies its own slippage-adjusted figure it is used
	// as-is; otherwise it is AmountOut * (1 - Slippage). For a positive
	// slippage tolerance it is always <= AmountOut.
	AmountOutWithSlippage decimal.Decimal

	Slippage decimal.Decimal

	// Payload is whatever the originating adapter needs to later execute
	// the trade. The core never interprets it.
	Payload any
}

// SwapOutcome records a leg that was actually submitted and settled. It is
// created only after a submission attempt completes, never speculatively.
type SwapOutcome struct {
	Dex       string
	FromAsset Asset
	ToAsset   Asset

	AmountIn decimal.Decimal

	// AmountOut is the settled amount read back from the ledger indexer,
	// or the slippage-adjusted quoted amount when the indexer had nothing
	// for the transaction (conservative estimate).
	AmountOut decimal.Decimal

	AmountOutWithSlippage decimal.Decimal
	Slippage              decimal.Decimal

	// Settled is true when AmountOut came from the ledger rather than the
	// quote fallback.
	Settled bool

	// Quote is the quote the swap was executed against.
	Quote Quote
}

// Leg is a single (from, to) pair within a round-trip plan.
type Leg struct {
	From Asset
	To   Asset
}

// RoundTripPlan is an ordered cycle of legs that starts and ends at the same
// asset. Length is 2 or 3 in this bot, though nothing below depends on that.
type RoundTripPlan struct {
	Legs []Leg
}

// NewRoundTripPlan builds the cyclic plan visiting the given assets in order
// and returning to the first one.
func NewRoundTripPlan(assets ...Asset) RoundTripPlan {
	legs := make([]Leg, 0, len(assets))
	for i, a := range assets {
		legs = append(legs, Leg{From: a, To: assets[(i+1)%len(assets)]})
	}
	return RoundTripPlan{Legs: legs}
}

// Start returns the asset the cycle begins and ends at.
func (p RoundTripPlan) Start() Asset {
	return p.Legs[0].From
}

// Reverse returns the plan walking the same cycle in the opposite direction.
// For a 3-asset cycle A->B->C->A this yields A->C->B->A.
func (p RoundTripPlan) Reverse() RoundTripPlan {
	n := len(p.Legs)
	legs := make([]Leg, 0, n)
	for i := n - 1; i >= 0; i-- {
		legs = append(legs, Leg{From: p.Legs[i].To, To: p.Legs[i].From})
	}
	// Rotate so the cycle still starts at the original starting asset.
	for legs[0].From.ID != p.Start().ID {
		legs = append(legs[1:], legs[0])
	}
	return RoundTripPlan{Legs: legs}
}

// Evaluation is the side-effect-free verdict on one round-trip plan: the
// chained best quotes per leg and whether the final output clears the
// configured minimum profit.
type Evaluation struct {
	Plan       RoundTripPlan
	AmountIn   decimal.Decimal
	FinalOut   decimal.Decimal
	MinProfit  decimal.Decimal
	Profitable bool
	LegQuotes  []Quote
}
