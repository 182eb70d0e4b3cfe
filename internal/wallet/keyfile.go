package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	saltLen          = 16
	aesKeyLen        = 32
	// currentVersion is the encrypted-seed JSON schema version.
	currentVersion = 1
)

// encryptedSeedJSON is the on-disk format for an encrypted account seed.
type encryptedSeedJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// KeyConfig carries the information LoadAccount needs to resolve the trading
// key. Populate the fields from the config file or environment.
type KeyConfig struct {
	// RawSeed is the hex-encoded 32-byte seed. If non-empty, LoadAccount
	// uses it directly.
	RawSeed string

	// EncryptedSeedPath points at a JSON file produced by EncryptSeed.
	EncryptedSeedPath string

	// SeedPassword decrypts the file at EncryptedSeedPath.
	SeedPassword string
}

// LoadAccount resolves the trading account from cfg, preferring the raw seed
// over the encrypted file.
func LoadAccount(cfg KeyConfig) (Account, error) {
	if strings.TrimSpace(cfg.RawSeed) != "" {
		return FromSeedHex(cfg.RawSeed)
	}

	if cfg.EncryptedSeedPath == "" {
		return Account{}, errors.New("wallet: no seed configured")
	}

	blob, err := os.ReadFile(cfg.EncryptedSeedPath)
	if err != nil {
		return Account{}, fmt.Errorf("wallet: reading encrypted seed: %w", err)
	}

	seedHex, err := DecryptSeed(blob, cfg.SeedPassword)
	if err != nil {
		return Account{}, err
	}
	return FromSeedHex(seedHex)
}

// EncryptSeed encrypts a hex-encoded seed with a password using
// PBKDF2-HMAC-SHA256 key derivation and AES-256-GCM authenticated encryption,
// returning the JSON blob suitable for writing to disk.
func EncryptSeed(seedHex, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("wallet: password must not be empty")
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(seedHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid seed hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("wallet: expected 32-byte seed, got %d bytes", len(raw))
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: generating salt: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("wallet: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("wallet: creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, raw, nil)

	out := encryptedSeedJSON{
		Version:    currentVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return json.MarshalIndent(out, "", "  ")
}

// DecryptSeed decrypts a JSON blob produced by EncryptSeed, returning the
// hex-encoded seed.
func DecryptSeed(encryptedJSON []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("wallet: password must not be empty")
	}

	var stored encryptedSeedJSON
	if err := json.Unmarshal(encryptedJSON, &stored); err != nil {
		return "", fmt.Errorf("wallet: parsing encrypted seed JSON: %w", err)
	}
	if stored.Version != currentVersion {
		return "", fmt.Errorf("wallet: unsupported version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("wallet: decoding ciphertext: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return "", fmt.Errorf("wallet: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("wallet: creating GCM: %w", err)
	}
	if len(nonce) != gcm.NonceSize() || len(ciphertext) < gcm.Overhead() {
		return "", errors.New("wallet: malformed ciphertext")
	}

	raw, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("wallet: wrong password or corrupted seed file")
	}

	return hex.EncodeToString(raw), nil
}
