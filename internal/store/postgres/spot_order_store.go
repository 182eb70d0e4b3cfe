package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/domain"
)

// SpotOrderStore implements domain.SpotOrderStore using PostgreSQL.
type SpotOrderStore struct {
	pool *pgxpool.Pool
}

// NewSpotOrderStore creates a new SpotOrderStore.
func NewSpotOrderStore(pool *pgxpool.Pool) *SpotOrderStore {
	return &SpotOrderStore{pool: pool}
}

// ListOpen returns the user's active, uncompleted orders, oldest first.
func (s *SpotOrderStore) ListOpen(ctx context.Context, userID string) ([]domain.SpotOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, order_type, asset_id, counter_id, amount, slippage,
		       min_receive_per_unit, max_receive_per_unit,
		       is_active, is_completed, amt_received, completed_at, created_at
		FROM spot_orders
		WHERE user_id = $1 AND is_active AND NOT is_completed
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list open orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.SpotOrder
	for rows.Next() {
		var o domain.SpotOrder
		var orderType string
		if err := rows.Scan(&o.ID, &o.UserID, &orderType, &o.AssetID, &o.CounterID,
			&o.Amount, &o.Slippage, &o.MinReceivePerUnit, &o.MaxReceivePerUnit,
			&o.IsActive, &o.IsCompleted, &o.AmtReceived, &o.CompletedAt, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Type = domain.SpotOrderType(orderType)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// MarkCompleted records the settled receive amount and closes the order.
func (s *SpotOrderStore) MarkCompleted(ctx context.Context, id string, amtReceived decimal.Decimal, completedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE spot_orders
		SET is_completed = TRUE, is_active = FALSE, amt_received = $2, completed_at = $3
		WHERE id = $1`,
		id, amtReceived, completedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: mark order %s completed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
