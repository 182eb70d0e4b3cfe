package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	algo = Asset{ID: "algo", OnChainID: 0, Decimals: 6, Code: "ALGO", IsNative: true}
	usdc = Asset{ID: "usdc", OnChainID: 31566704, Decimals: 6, Code: "USDC"}
	btc  = Asset{ID: "gobtc", OnChainID: 386192725, Decimals: 8, Code: "goBTC"}
)

func TestNewRoundTripPlanTwoAssets(t *testing.T) {
	plan := NewRoundTripPlan(algo, usdc)

	require.Len(t, plan.Legs, 2)
	assert.Equal(t, Leg{From: algo, To: usdc}, plan.Legs[0])
	assert.Equal(t, Leg{From: usdc, To: algo}, plan.Legs[1])
	assert.Equal(t, "algo", plan.Start().ID)
}

func TestNewRoundTripPlanThreeAssets(t *testing.T) {
	plan := NewRoundTripPlan(algo, usdc, btc)

	require.Len(t, plan.Legs, 3)
	assert.Equal(t, Leg{From: algo, To: usdc}, plan.Legs[0])
	assert.Equal(t, Leg{From: usdc, To: btc}, plan.Legs[1])
	assert.Equal(t, Leg{From: btc, To: algo}, plan.Legs[2])
}

func TestRoundTripPlanReverseThreeAssets(t *testing.T) {
	plan := NewRoundTripPlan(algo, usdc, btc)
	rev := plan.Reverse()

	// A->B->C->A walked backwards is A->C->B->A, still starting at A.
	require.Len(t, rev.Legs, 3)
	assert.Equal(t, Leg{From: algo, To: btc}, rev.Legs[0])
	assert.Equal(t, Leg{From: btc, To: usdc}, rev.Legs[1])
	assert.Equal(t, Leg{From: usdc, To: algo}, rev.Legs[2])
	assert.Equal(t, plan.Start().ID, rev.Start().ID)
}

func TestRoundTripPlanReverseTwoAssetsIsSameCycle(t *testing.T) {
	plan := NewRoundTripPlan(algo, usdc)
	rev := plan.Reverse()

	assert.Equal(t, plan.Legs, rev.Legs)
}
