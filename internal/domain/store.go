package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssetStore is the supported-asset catalog. The bot reads it once at
// startup; assets are immutable afterwards.
type AssetStore interface {
	GetByOnChainID(ctx context.Context, onChainID uint64) (Asset, error)
	ListActive(ctx context.Context) ([]Asset, error)
}

// SpotOrderStore persists the off-chain order book driven by the orderbook
// mode.
type SpotOrderStore interface {
	ListOpen(ctx context.Context, userID string) ([]SpotOrder, error)
	MarkCompleted(ctx context.Context, id string, amtReceived decimal.Decimal, completedAt time.Time) error
}

// RoundTripStore persists executed round-trip history.
type RoundTripStore interface {
	Create(ctx context.Context, rt RoundTrip) error
	GetByID(ctx context.Context, id string) (RoundTrip, error)
	ListRecent(ctx context.Context, limit int) ([]RoundTrip, error)
}

// AuditEntry is a single append-only audit row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists the append-only audit log so every decision point can
// be reconstructed after the fact.
type AuditStore interface {
	Append(ctx context.Context, event string, detail map[string]any) error
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// PoolCache caches resolved pool metadata per (dex, pair) with a TTL so
// successive polling cycles do not re-resolve unchanged pools.
type PoolCache interface {
	Get(ctx context.Context, dex string, asset1, asset2 uint64) (payload []byte, ok bool, err error)
	Set(ctx context.Context, dex string, asset1, asset2 uint64, payload []byte, ttl time.Duration) error
}

// LockManager serializes round trips per account: only one round trip may be
// in flight at a time for a given wallet.
type LockManager interface {
	// Acquire returns an unlock function on success, or ErrLockHeld when
	// another holder owns the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// ReportWriter archives completed round-trip reports to blob storage.
// Archival is best effort; failures are logged, never fatal.
type ReportWriter interface {
	WriteReport(ctx context.Context, rt RoundTrip) error
}
