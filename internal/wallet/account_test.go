package wallet

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeedHex = "8e5f7a1c3b9d2e4f6a8c0b1d3e5f7a9c1b3d5e7f9a0c2b4d6e8f0a1c3b5d7e9f"

func TestFromSeedHexDerivesStableAddress(t *testing.T) {
	a, err := FromSeedHex(testSeedHex)
	require.NoError(t, err)
	b, err := FromSeedHex("0x" + testSeedHex)
	require.NoError(t, err)

	// Algorand addresses are 58-char base32 with no padding.
	assert.Len(t, a.Address, 58)
	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, strings.ToUpper(a.Address), a.Address)
}

func TestFromSeedRejectsWrongLength(t *testing.T) {
	_, err := FromSeed([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestFromSeedHexRejectsBadHex(t *testing.T) {
	_, err := FromSeedHex("not-hex")
	assert.Error(t, err)
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	a, err := FromSeedHex(testSeedHex)
	require.NoError(t, err)

	msg := []byte("unsigned transaction group")
	sig := a.Sign(msg)

	pub := a.PrivateKey.Public().(ed25519.PublicKey)
	assert.True(t, ed25519.Verify(pub, msg, sig))
	assert.False(t, ed25519.Verify(pub, []byte("tampered"), sig))
}
