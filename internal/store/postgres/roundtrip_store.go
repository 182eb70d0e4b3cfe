package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// RoundTripStore implements domain.RoundTripStore using PostgreSQL.
type RoundTripStore struct {
	pool *pgxpool.Pool
}

// NewRoundTripStore creates a new RoundTripStore.
func NewRoundTripStore(pool *pgxpool.Pool) *RoundTripStore {
	return &RoundTripStore{pool: pool}
}

// Create inserts a round trip and its legs in one transaction.
func (s *RoundTripStore) Create(ctx context.Context, rt domain.RoundTrip) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO round_trips (id, network, start_asset, amount_in, amount_out, min_profit, profit, status, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rt.ID, rt.Network, rt.StartAsset, rt.AmountIn, rt.AmountOut,
		rt.MinProfit, rt.Profit, string(rt.Status), rt.StartedAt, rt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert round_trip: %w", err)
	}

	for _, leg := range rt.Legs {
		_, err = tx.Exec(ctx, `
			INSERT INTO round_trip_legs (round_trip_id, dex, from_asset_id, to_asset_id, amount_in, amount_out, quoted_out, slippage, settled)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rt.ID, leg.Dex, leg.FromAssetID, leg.ToAssetID,
			leg.AmountIn, leg.AmountOut, leg.QuotedOut, leg.Slippage, leg.Settled,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert round_trip_leg: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID returns a round trip with its legs.
func (s *RoundTripStore) GetByID(ctx context.Context, id string) (domain.RoundTrip, error) {
	var rt domain.RoundTrip
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, network, start_asset, amount_in, amount_out, min_profit, profit, status, started_at, completed_at
		FROM round_trips WHERE id = $1`,
		id,
	).Scan(&rt.ID, &rt.Network, &rt.StartAsset, &rt.AmountIn, &rt.AmountOut,
		&rt.MinProfit, &rt.Profit, &status, &rt.StartedAt, &rt.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoundTrip{}, domain.ErrNotFound
		}
		return domain.RoundTrip{}, fmt.Errorf("postgres: get round_trip %s: %w", id, err)
	}
	rt.Status = domain.RoundTripStatus(status)

	rows, err := s.pool.Query(ctx, `
		SELECT dex, from_asset_id, to_asset_id, amount_in, amount_out, quoted_out, slippage, settled
		FROM round_trip_legs WHERE round_trip_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return domain.RoundTrip{}, fmt.Errorf("postgres: get round_trip_legs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var leg domain.RoundTripLeg
		if err := rows.Scan(&leg.Dex, &leg.FromAssetID, &leg.ToAssetID,
			&leg.AmountIn, &leg.AmountOut, &leg.QuotedOut, &leg.Slippage, &leg.Settled); err != nil {
			return domain.RoundTrip{}, err
		}
		rt.Legs = append(rt.Legs, leg)
	}
	if err := rows.Err(); err != nil {
		return domain.RoundTrip{}, err
	}
	return rt, nil
}

// ListRecent returns the most recent round trips, legs omitted.
func (s *RoundTripStore) ListRecent(ctx context.Context, limit int) ([]domain.RoundTrip, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, network, start_asset, amount_in, amount_out, min_profit, profit, status, started_at, completed_at
		FROM round_trips ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list round_trips: %w", err)
	}
	defer rows.Close()

	var list []domain.RoundTrip
	for rows.Next() {
		var rt domain.RoundTrip
		var status string
		if err := rows.Scan(&rt.ID, &rt.Network, &rt.StartAsset, &rt.AmountIn, &rt.AmountOut,
			&rt.MinProfit, &rt.Profit, &status, &rt.StartedAt, &rt.CompletedAt); err != nil {
			return nil, err
		}
		rt.Status = domain.RoundTripStatus(status)
		list = append(list, rt)
	}
	return list, rows.Err()
}
