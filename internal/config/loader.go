package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies AGGREFI_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known AGGREFI_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Network, "AGGREFI_NETWORK")

	// Wallet
	setStr(&cfg.Wallet.RawSeed, "AGGREFI_WALLET_RAW_SEED")
	setStr(&cfg.Wallet.EncryptedSeedPath, "AGGREFI_WALLET_ENCRYPTED_SEED_PATH")
	setStr(&cfg.Wallet.SeedPassword, "AGGREFI_WALLET_SEED_PASSWORD")

	// Indexer
	setStr(&cfg.Indexer.BaseURL, "AGGREFI_INDEXER_BASE_URL")
	setStr(&cfg.Indexer.APIKey, "AGGREFI_INDEXER_API_KEY")

	// DEX endpoints
	setBool(&cfg.Algofi.Enabled, "AGGREFI_ALGOFI_ENABLED")
	setStr(&cfg.Algofi.BaseURL, "AGGREFI_ALGOFI_BASE_URL")
	setBool(&cfg.Pact.Enabled, "AGGREFI_PACT_ENABLED")
	setStr(&cfg.Pact.BaseURL, "AGGREFI_PACT_BASE_URL")
	setBool(&cfg.Tinyman.Enabled, "AGGREFI_TINYMAN_ENABLED")
	setStr(&cfg.Tinyman.BaseURL, "AGGREFI_TINYMAN_BASE_URL")

	// Postgres
	setStr(&cfg.Postgres.DSN, "AGGREFI_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "AGGREFI_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "AGGREFI_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "AGGREFI_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "AGGREFI_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "AGGREFI_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "AGGREFI_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "AGGREFI_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "AGGREFI_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "AGGREFI_POSTGRES_RUN_MIGRATIONS")

	// Redis
	setStr(&cfg.Redis.Addr, "AGGREFI_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "AGGREFI_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "AGGREFI_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "AGGREFI_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "AGGREFI_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "AGGREFI_REDIS_TLS_ENABLED")

	// S3
	setBool(&cfg.S3.Enabled, "AGGREFI_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "AGGREFI_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "AGGREFI_S3_REGION")
	setStr(&cfg.S3.Bucket, "AGGREFI_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "AGGREFI_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "AGGREFI_S3_SECRET_KEY")
	setStr(&cfg.S3.ReportPrefix, "AGGREFI_S3_REPORT_PREFIX")
	setBool(&cfg.S3.UseSSL, "AGGREFI_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "AGGREFI_S3_FORCE_PATH_STYLE")

	// Arbitrage
	setUint64Slice(&cfg.Arbitrage.AssetIDs, "AGGREFI_ARBITRAGE_ASSET_IDS")
	setFloat64(&cfg.Arbitrage.StartingAmount, "AGGREFI_ARBITRAGE_STARTING_AMOUNT")
	setFloat64(&cfg.Arbitrage.Slippage, "AGGREFI_ARBITRAGE_SLIPPAGE")
	setFloat64(&cfg.Arbitrage.MinProfit, "AGGREFI_ARBITRAGE_MIN_PROFIT")
	setInt(&cfg.Arbitrage.MaxAttempts, "AGGREFI_ARBITRAGE_MAX_ATTEMPTS")
	setDuration(&cfg.Arbitrage.Interval, "AGGREFI_ARBITRAGE_INTERVAL")

	// Orderbook
	setStr(&cfg.Orderbook.UserID, "AGGREFI_ORDERBOOK_USER_ID")
	setDuration(&cfg.Orderbook.Interval, "AGGREFI_ORDERBOOK_INTERVAL")

	// Notify
	setStr(&cfg.Notify.TelegramToken, "AGGREFI_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "AGGREFI_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "AGGREFI_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "AGGREFI_NOTIFY_EVENTS")

	// Top-level
	setStr(&cfg.Mode, "AGGREFI_MODE")
	setStr(&cfg.LogLevel, "AGGREFI_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

func setUint64Slice(dst *[]uint64, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		ids := make([]uint64, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.ParseUint(p, 10, 64)
			if err != nil {
				return
			}
			ids = append(ids, n)
		}
		if len(ids) > 0 {
			*dst = ids
		}
	}
}
