package wallet

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSeedRoundTrip(t *testing.T) {
	blob, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)

	got, err := DecryptSeed(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, testSeedHex, got)
}

func TestDecryptSeedWrongPassword(t *testing.T) {
	blob, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)

	_, err = DecryptSeed(blob, "*******")
	assert.Error(t, err)
}

func TestDecryptSeedRejectsTruncatedBlob(t *testing.T) {
	blob, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)

	var stored encryptedSeedJSON
	require.NoError(t, json.Unmarshal(blob, &stored))

	t.Run("short nonce", func(t *testing.T) {
		tampered := stored
		tampered.Nonce = base64.StdEncoding.EncodeToString([]byte{0x01})
		raw, err := json.Marshal(tampered)
		require.NoError(t, err)

		_, err = DecryptSeed(raw, "hunter2")
		assert.ErrorContains(t, err, "malformed ciphertext")
	})

	t.Run("short ciphertext", func(t *testing.T) {
		tampered := stored
		tampered.Ciphertext = base64.StdEncoding.EncodeToString([]byte{0x01})
		raw, err := json.Marshal(tampered)
		require.NoError(t, err)

		_, err = DecryptSeed(raw, "hunter2")
		assert.ErrorContains(t, err, "malformed ciphertext")
	})
}

func TestEncryptSeedRequiresPassword(t *testing.T) {
	_, err := EncryptSeed(testSeedHex, "")
	assert.Error(t, err)
}

func TestEncryptSeedRejectsBadSeed(t *testing.T) {
	_, err := EncryptSeed("abcd", "hunter2")
	assert.Error(t, err)
}

func TestEncryptSeedSaltsEachBlob(t *testing.T) {
	a, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)
	b, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLoadAccountPrefersRawSeed(t *testing.T) {
	a, err := LoadAccount(KeyConfig{RawSeed: testSeedHex})
	require.NoError(t, err)
	assert.Len(t, a.Address, 58)
}

func TestLoadAccountFromEncryptedFile(t *testing.T) {
	blob, err := EncryptSeed(testSeedHex, "hunter2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	fromFile, err := LoadAccount(KeyConfig{EncryptedSeedPath: path, SeedPassword: "hunter2"})
	require.NoError(t, err)

	fromRaw, err := FromSeedHex(testSeedHex)
	require.NoError(t, err)
	assert.Equal(t, fromRaw.Address, fromFile.Address)
}

func TestLoadAccountWithoutSeedFails(t *testing.T) {
	_, err := LoadAccount(KeyConfig{})
	assert.Error(t, err)
}
