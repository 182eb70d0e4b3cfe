// Package wallet holds the trading account: an ed25519 key pair and the
// derived Algorand address, plus encrypted at-rest storage of the key seed.
package wallet

import (
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
)

// checksumLen is the number of trailing digest bytes appended to the public
// key before base32 encoding an address.
const checksumLen = 4

var addrEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Account is the bot's trading identity. The zero value is unusable; build
// one with FromSeed or FromSeedHex.
type Account struct {
	Address    string
	PrivateKey ed25519.PrivateKey
}

// FromSeed derives an Account from a 32-byte ed25519 seed.
func FromSeed(seed []byte) (Account, error) {
	if len(seed) != ed25519.SeedSize {
		return Account{}, fmt.Errorf("wallet: expected %d-byte seed, got %d bytes", ed25519.SeedSize, len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)
	return Account{
		Address:    encodeAddress(pub),
		PrivateKey: key,
	}, nil
}

// FromSeedHex derives an Account from a hex-encoded 32-byte seed, accepting
// an optional 0x prefix.
func FromSeedHex(seedHex string) (Account, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(seedHex, "0x"))
	if err != nil {
		return Account{}, fmt.Errorf("wallet: invalid seed hex: %w", err)
	}
	return FromSeed(raw)
}

// Sign returns the ed25519 signature of msg under the account key.
func (a Account) Sign(msg []byte) []byte {
	return ed25519.Sign(a.PrivateKey, msg)
}

// encodeAddress renders a public key in the standard Algorand address format:
// base32(pubkey || last 4 bytes of SHA-512/256(pubkey)).
func encodeAddress(pub ed25519.PublicKey) string {
	digest := sha512.Sum512_256(pub)
	body := make([]byte, 0, len(pub)+checksumLen)
	body = append(body, pub...)
	body = append(body, digest[len(digest)-checksumLen:]...)
	return addrEncoding.EncodeToString(body)
}
