package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundTripStatus is the terminal state of one executed round trip.
type RoundTripStatus string

const (
	// RoundTripCompleted means every leg settled.
	RoundTripCompleted RoundTripStatus = "completed"
	// RoundTripAbandoned means the first leg failed before any capital was
	// committed; safe to retry on the next polling cycle.
	RoundTripAbandoned RoundTripStatus = "abandoned"
	// RoundTripStranded means a leg after the first failed, leaving an
	// intermediate asset position behind. Fatal for the process.
	RoundTripStranded RoundTripStatus = "stranded"
)

// RoundTripLeg is the persisted record of one executed leg.
type RoundTripLeg struct {
	Dex         string
	FromAssetID string
	ToAssetID   string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	QuotedOut   decimal.Decimal
	Slippage    decimal.Decimal
	Settled     bool
}

// RoundTrip is the persisted record of one executed (or abandoned) round
// trip, written after the orchestrator finishes with the round.
type RoundTrip struct {
	ID          string
	Network     string
	StartAsset  string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	MinProfit   decimal.Decimal
	Profit      decimal.Decimal
	Status      RoundTripStatus
	Legs        []RoundTripLeg
	StartedAt   time.Time
	CompletedAt *time.Time
}
