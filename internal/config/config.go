// Package config defines the top-level configuration for the bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by AGGREFI_* environment variables.
type Config struct {
	Network   string          `toml:"network"`
	Wallet    WalletConfig    `toml:"wallet"`
	Indexer   IndexerConfig   `toml:"indexer"`
	Algofi    DexConfig       `toml:"algofi"`
	Pact      DexConfig       `toml:"pact"`
	Tinyman   DexConfig       `toml:"tinyman"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Orderbook OrderbookConfig `toml:"orderbook"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// WalletConfig holds the trading account's seed material. Exactly one of
// raw_seed or encrypted_seed_path is required for trading modes.
type WalletConfig struct {
	RawSeed           string `toml:"raw_seed"`
	EncryptedSeedPath string `toml:"encrypted_seed_path"`
	SeedPassword      string `toml:"seed_password"`
}

// IndexerConfig holds the Algorand indexer endpoint used to read back
// settled swap amounts.
type IndexerConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// DexConfig holds one DEX aggregation API endpoint.
type DexConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report
// archival. Archival is optional; leave enabled false to skip it.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ReportPrefix   string `toml:"report_prefix"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArbitrageConfig parameterizes the round-trip loop. AssetIDs lists the
// on-chain IDs of the cycle in trade order, starting asset first; two IDs
// make a there-and-back pair, three a triangle.
type ArbitrageConfig struct {
	AssetIDs       []uint64 `toml:"asset_ids"`
	StartingAmount float64  `toml:"starting_amount"`
	Slippage       float64  `toml:"slippage"`
	MinProfit      float64  `toml:"min_profit"`
	MaxAttempts    int      `toml:"max_attempts"`
	Interval       duration `toml:"interval"`
}

// OrderbookConfig parameterizes the spot-order loop.
type OrderbookConfig struct {
	UserID   string   `toml:"user_id"`
	Interval duration `toml:"interval"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Network: "mainnet",
		Indexer: IndexerConfig{
			BaseURL: "https://mainnet-idx.algonode.cloud",
		},
		Algofi: DexConfig{
			Enabled: true,
			BaseURL: "https://api.algofi.org",
		},
		Pact: DexConfig{
			Enabled: true,
			BaseURL: "https://api.pact.fi",
		},
		Tinyman: DexConfig{
			Enabled: true,
			BaseURL: "https://mainnet.analytics.tinyman.org",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "aggrefi",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "aggrefi-reports",
			ReportPrefix:   "reports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Arbitrage: ArbitrageConfig{
			AssetIDs:       []uint64{0, 31566704},
			StartingAmount: 10.0,
			Slippage:       0.002,
			MinProfit:      0.01,
			MaxAttempts:    5,
			Interval:       duration{5 * time.Second},
		},
		Orderbook: OrderbookConfig{
			Interval: duration{10 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"round_trip_completed", "round_trip_stranded", "order_completed"},
		},
		Mode:     "arbitrage",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"arbitrage": true,
	"orderbook": true,
	"full":      true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: arbitrage, orderbook, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if c.Network != "mainnet" && c.Network != "testnet" {
		errs = append(errs, fmt.Sprintf("network must be mainnet or testnet, got %q", c.Network))
	}

	// Wallet. Every mode trades, so seed material is always required.
	if c.Wallet.RawSeed == "" && c.Wallet.EncryptedSeedPath == "" {
		errs = append(errs, "wallet: either raw_seed or encrypted_seed_path must be set")
	}
	if c.Wallet.EncryptedSeedPath != "" && c.Wallet.SeedPassword == "" {
		errs = append(errs, "wallet: seed_password is required when encrypted_seed_path is set")
	}

	if c.Indexer.BaseURL == "" {
		errs = append(errs, "indexer: base_url must not be empty")
	}

	enabledDexes := 0
	for name, dc := range map[string]DexConfig{"algofi": c.Algofi, "pact": c.Pact, "tinyman": c.Tinyman} {
		if !dc.Enabled {
			continue
		}
		enabledDexes++
		if dc.BaseURL == "" {
			errs = append(errs, name+": base_url must not be empty when enabled")
		}
	}
	if enabledDexes == 0 {
		errs = append(errs, "at least one DEX must be enabled")
	}

	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Arbitrage.
	runsArb := c.Mode == "arbitrage" || c.Mode == "full"
	if runsArb {
		if n := len(c.Arbitrage.AssetIDs); n < 2 || n > 3 {
			errs = append(errs, fmt.Sprintf("arbitrage: asset_ids must list 2 or 3 assets, got %d", n))
		}
		seen := map[uint64]bool{}
		for _, id := range c.Arbitrage.AssetIDs {
			if seen[id] {
				errs = append(errs, fmt.Sprintf("arbitrage: duplicate asset id %d", id))
			}
			seen[id] = true
		}
		if c.Arbitrage.StartingAmount <= 0 {
			errs = append(errs, "arbitrage: starting_amount must be > 0")
		}
		if c.Arbitrage.Slippage < 0 || c.Arbitrage.Slippage >= 1 {
			errs = append(errs, fmt.Sprintf("arbitrage: slippage must be in [0, 1), got %g", c.Arbitrage.Slippage))
		}
		if c.Arbitrage.MinProfit < 0 {
			errs = append(errs, "arbitrage: min_profit must be >= 0")
		}
		if c.Arbitrage.MaxAttempts < 1 {
			errs = append(errs, "arbitrage: max_attempts must be >= 1")
		}
		if c.Arbitrage.Interval.Duration <= 0 {
			errs = append(errs, "arbitrage: interval must be > 0")
		}
	}

	// Orderbook.
	if c.Mode == "orderbook" || c.Mode == "full" {
		if c.Orderbook.UserID == "" {
			errs = append(errs, "orderbook: user_id must not be empty for mode "+c.Mode)
		}
		if c.Orderbook.Interval.Duration <= 0 {
			errs = append(errs, "orderbook: interval must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
