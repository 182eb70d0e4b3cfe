package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "8e5f7a1c3b9d2e4f6a8c0b1d3e5f7a9c1b3d5e7f9a0c2b4d6e8f0a1c3b5d7e9f"

func validConfig() Config {
	cfg := Defaults()
	cfg.Wallet.RawSeed = testSeed
	return cfg
}

func TestDefaultsWithSeedValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresSeedMaterial(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw_seed or encrypted_seed_path")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "yolo" }, "unknown mode"},
		{"single asset cycle", func(c *Config) { c.Arbitrage.AssetIDs = []uint64{0} }, "2 or 3 assets"},
		{"four asset cycle", func(c *Config) { c.Arbitrage.AssetIDs = []uint64{0, 1, 2, 3} }, "2 or 3 assets"},
		{"duplicate assets", func(c *Config) { c.Arbitrage.AssetIDs = []uint64{0, 0} }, "duplicate asset id"},
		{"slippage out of range", func(c *Config) { c.Arbitrage.Slippage = 1.0 }, "slippage"},
		{"no dex enabled", func(c *Config) {
			c.Algofi.Enabled = false
			c.Pact.Enabled = false
			c.Tinyman.Enabled = false
		}, "at least one DEX"},
		{"orderbook without user", func(c *Config) {
			c.Mode = "orderbook"
			c.Orderbook.UserID = ""
		}, "user_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
network = "testnet"
mode = "full"

[wallet]
raw_seed = "` + testSeed + `"

[orderbook]
user_id = "user-1"

[arbitrage]
asset_ids = [0, 31566704, 386192725]
interval = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, []uint64{0, 31566704, 386192725}, cfg.Arbitrage.AssetIDs)
	assert.Equal(t, 30*time.Second, cfg.Arbitrage.Interval.Duration)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://api.pact.fi", cfg.Pact.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`network = "mainnet"`), 0o600))

	t.Setenv("AGGREFI_NETWORK", "testnet")
	t.Setenv("AGGREFI_WALLET_RAW_SEED", testSeed)
	t.Setenv("AGGREFI_POSTGRES_PASSWORD", "s3cret")
	t.Setenv("AGGREFI_ARBITRAGE_MAX_ATTEMPTS", "3")
	t.Setenv("AGGREFI_ARBITRAGE_INTERVAL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, testSeed, cfg.Wallet.RawSeed)
	assert.Equal(t, "s3cret", cfg.Postgres.Password)
	assert.Equal(t, 3, cfg.Arbitrage.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Arbitrage.Interval.Duration)
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Password = "s3cret"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Wallet.RawSeed)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// Non-secret fields survive untouched, and the original is unchanged.
	assert.Equal(t, cfg.Network, red.Network)
	assert.Equal(t, testSeed, cfg.Wallet.RawSeed)
}
