package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// AssetStore implements domain.AssetStore using PostgreSQL.
type AssetStore struct {
	pool *pgxpool.Pool
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(pool *pgxpool.Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// GetByOnChainID returns the asset with the given canonical ASA ID.
func (s *AssetStore) GetByOnChainID(ctx context.Context, onChainID uint64) (domain.Asset, error) {
	var a domain.Asset
	err := s.pool.QueryRow(ctx, `
		SELECT id, on_chain_id, decimals, code, name, is_native, is_active
		FROM assets WHERE on_chain_id = $1`,
		int64(onChainID),
	).Scan(&a.ID, &a.OnChainID, &a.Decimals, &a.Code, &a.Name, &a.IsNative, &a.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("postgres: get asset %d: %w", onChainID, err)
	}
	return a, nil
}

// ListActive returns every asset currently enabled for trading.
func (s *AssetStore) ListActive(ctx context.Context) ([]domain.Asset, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, on_chain_id, decimals, code, name, is_native, is_active
		FROM assets WHERE is_active ORDER BY on_chain_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.OnChainID, &a.Decimals, &a.Code, &a.Name, &a.IsNative, &a.IsActive); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Upsert inserts or updates a catalog entry. Used by seeding tooling, not
// the trading loops.
func (s *AssetStore) Upsert(ctx context.Context, a domain.Asset) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (id, on_chain_id, decimals, code, name, is_native, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			on_chain_id = EXCLUDED.on_chain_id,
			decimals = EXCLUDED.decimals,
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			is_native = EXCLUDED.is_native,
			is_active = EXCLUDED.is_active`,
		a.ID, int64(a.OnChainID), a.Decimals, a.Code, a.Name, a.IsNative, a.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert asset %s: %w", a.ID, err)
	}
	return nil
}
