package dex

import "github.com/blockadjacent/aggrefi/internal/domain"

// Adapter names, in the fixed priority order used for tie-breaking.
const (
	Algofi  = "algofi"
	Pact    = "pactfi"
	Tinyman = "tinyman"
)

// Priority is the deterministic adapter enumeration order. Best-quote
// selection uses strictly-greater-than comparisons, so the earlier adapter
// wins ties.
func Priority() []string {
	return []string{Algofi, Pact, Tinyman}
}

// nativeWireID records the on-chain identifier each DEX uses for the native
// asset (ALGO). Tinyman and Pact use 0; Algofi uses 1. The translation is
// applied here, at the core's boundary, never inside adapter code.
var nativeWireID = map[string]uint64{
	Algofi:  1,
	Pact:    0,
	Tinyman: 0,
}

// WireID returns the on-chain identifier the named adapter expects for the
// asset. Non-native assets pass through unchanged; the native asset maps to
// the adapter's own convention regardless of which convention the catalog
// was configured with.
func WireID(dexName string, a domain.Asset) uint64 {
	if !a.IsNative {
		return a.OnChainID
	}
	return nativeWireID[dexName]
}
