package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/blockadjacent/aggrefi/internal/blob/s3"
	"github.com/blockadjacent/aggrefi/internal/cache/redis"
	"github.com/blockadjacent/aggrefi/internal/config"
	"github.com/blockadjacent/aggrefi/internal/dex"
	"github.com/blockadjacent/aggrefi/internal/dex/algofi"
	"github.com/blockadjacent/aggrefi/internal/dex/pact"
	"github.com/blockadjacent/aggrefi/internal/dex/tinyman"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/ledger"
	"github.com/blockadjacent/aggrefi/internal/notify"
	"github.com/blockadjacent/aggrefi/internal/service"
	"github.com/blockadjacent/aggrefi/internal/store/postgres"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// poolCacheTTL bounds how long a resolved pool handle is reused before the
// adapter re-resolves it.
const poolCacheTTL = 5 * time.Minute

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Account wallet.Account
	Catalog *service.AssetCatalog

	// Stores
	AssetStore     domain.AssetStore
	SpotOrderStore domain.SpotOrderStore
	RoundTripStore domain.RoundTripStore
	AuditStore     domain.AuditStore

	// Caches
	PoolCache   domain.PoolCache
	LockManager domain.LockManager

	// Blob storage, nil when S3 is disabled.
	Reports domain.ReportWriter

	// Trading surface
	Registry *dex.Registry
	Ledger   *ledger.Client
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Trading account ---
	account, err := wallet.LoadAccount(wallet.KeyConfig{
		RawSeed:           cfg.Wallet.RawSeed,
		EncryptedSeedPath: cfg.Wallet.EncryptedSeedPath,
		SeedPassword:      cfg.Wallet.SeedPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: wallet: %w", err)
	}
	deps.Account = account

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.AssetStore = postgres.NewAssetStore(pool)
	deps.SpotOrderStore = postgres.NewSpotOrderStore(pool)
	deps.RoundTripStore = postgres.NewRoundTripStore(pool)
	deps.AuditStore = postgres.NewAuditStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.PoolCache = redis.NewPoolCache(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)

	// --- S3 report archival (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Reports = s3blob.NewReportWriter(s3Client, cfg.S3.ReportPrefix)
	}

	// --- Asset catalog ---
	catalog, err := service.LoadCatalog(ctx, deps.AssetStore)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: asset catalog: %w", err)
	}
	deps.Catalog = catalog

	// --- DEX adapters ---
	var adapters []dex.Adapter
	if cfg.Algofi.Enabled {
		adapters = append(adapters, algofi.New(algofi.NewClient(cfg.Algofi.BaseURL), cfg.Network, logger))
	}
	if cfg.Pact.Enabled {
		adapters = append(adapters, pact.New(pact.NewClient(cfg.Pact.BaseURL), logger))
	}
	if cfg.Tinyman.Enabled {
		adapters = append(adapters, tinyman.New(tinyman.NewClient(cfg.Tinyman.BaseURL), logger))
	}
	for i, adapter := range adapters {
		adapters[i] = dex.Cached(adapter, deps.PoolCache, poolCacheTTL)
	}
	deps.Registry = dex.NewRegistry(adapters...)

	// --- Ledger indexer ---
	deps.Ledger = ledger.NewClient(cfg.Indexer.BaseURL, cfg.Indexer.APIKey)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
