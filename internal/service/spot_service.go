package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/arb"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/quote"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// SpotOrderService fills resting orders from the off-chain order book: each
// polling cycle it quotes every open order across all DEXs and executes the
// ones whose receive requirement is met.
type SpotOrderService struct {
	agg     *quote.Aggregator
	exec    *arb.Executor
	orders  domain.SpotOrderStore
	catalog *AssetCatalog
	alerter arb.Alerter
	logger  *slog.Logger
}

// NewSpotOrderService creates a SpotOrderService. alerter may be nil, in
// which case fills are not reported to the operator.
func NewSpotOrderService(
	agg *quote.Aggregator,
	exec *arb.Executor,
	orders domain.SpotOrderStore,
	catalog *AssetCatalog,
	alerter arb.Alerter,
	logger *slog.Logger,
) *SpotOrderService {
	return &SpotOrderService{
		agg:     agg,
		exec:    exec,
		orders:  orders,
		catalog: catalog,
		alerter: alerter,
		logger:  logger.With(slog.String("component", "spot_service")),
	}
}

// RunOnce processes every open order for the user once. Order-level failures
// are absorbed so one broken order cannot wedge the book.
func (s *SpotOrderService) RunOnce(ctx context.Context, account wallet.Account, userID string) error {
	orders, err := s.orders.ListOpen(ctx, userID)
	if err != nil {
		return fmt.Errorf("service: listing open orders: %w", err)
	}

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processOrder(ctx, account, order); err != nil {
			s.logger.Error("order processing failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// processOrder quotes one order and executes it when its requirement is met.
func (s *SpotOrderService) processOrder(ctx context.Context, account wallet.Account, order domain.SpotOrder) error {
	fromAsset, err := s.catalog.ByID(order.InAssetID())
	if err != nil {
		return err
	}
	toAsset, err := s.catalog.ByID(order.OutAssetID())
	if err != nil {
		return err
	}

	log := s.logger.With(
		slog.String("order_id", order.ID),
		slog.String("pair", fromAsset.Code+"/"+toAsset.Code),
	)

	pools, err := s.agg.ResolvePools(ctx, fromAsset, toAsset)
	if err != nil {
		return err
	}
	quotes, err := s.agg.Collect(ctx, pools, fromAsset, toAsset, order.Amount, order.Slippage)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		return domain.ErrNoQuote
	}

	eligible, threshold := eligibleQuotes(order, quotes)
	if len(eligible) == 0 {
		log.Info("order requirement not yet met",
			slog.String("threshold", toAsset.FormatAmount(threshold)),
		)
		return nil
	}

	// Spot fills chase the guaranteed minimum, not the optimistic figure.
	best, err := quote.SelectBestConservative(eligible)
	if err != nil {
		return err
	}

	log.Info("order requirement met, executing swap",
		slog.String("dex", best.Dex),
		slog.String("amount_in", fromAsset.FormatAmount(order.Amount)),
		slog.String("min_receive", toAsset.FormatAmount(best.AmountOutWithSlippage)),
	)

	outcome, err := s.exec.Execute(ctx, account, arb.IntendedSwap{Quote: best, Pools: pools}, false)
	if err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.orders.MarkCompleted(ctx, order.ID, outcome.AmountOut, completedAt); err != nil {
		return fmt.Errorf("service: marking order %s completed: %w", order.ID, err)
	}

	log.Info("order completed",
		slog.String("received", toAsset.FormatAmount(outcome.AmountOut)),
	)
	if s.alerter != nil {
		msg := fmt.Sprintf("order %s filled on %s: %s in, %s received",
			order.ID, best.Dex,
			fromAsset.FormatAmount(order.Amount),
			toAsset.FormatAmount(outcome.AmountOut))
		if nerr := s.alerter.Notify(ctx, "order_completed", "Order completed", msg); nerr != nil {
			log.Error("operator alert failed", slog.String("error", nerr.Error()))
		}
	}
	return nil
}

// eligibleQuotes keeps the quotes whose worst-case output satisfies the
// order's per-unit receive bound. An order with no bound set never fills.
func eligibleQuotes(order domain.SpotOrder, quotes map[string]domain.Quote) (map[string]domain.Quote, decimal.Decimal) {
	eligible := make(map[string]domain.Quote, len(quotes))
	var threshold decimal.Decimal
	switch {
	case order.MinReceivePerUnit != nil:
		threshold = order.MinReceivePerUnit.Mul(order.Amount)
		for dex, q := range quotes {
			if q.AmountOutWithSlippage.GreaterThanOrEqual(threshold) {
				eligible[dex] = q
			}
		}
	case order.MaxReceivePerUnit != nil:
		threshold = order.MaxReceivePerUnit.Mul(order.Amount)
		for dex, q := range quotes {
			if q.AmountOutWithSlippage.LessThanOrEqual(threshold) {
				eligible[dex] = q
			}
		}
	}
	return eligible, threshold
}
