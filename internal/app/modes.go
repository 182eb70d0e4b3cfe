package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/blockadjacent/aggrefi/internal/arb"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/notify"
	"github.com/blockadjacent/aggrefi/internal/quote"
	"github.com/blockadjacent/aggrefi/internal/service"
)

// ArbitrageMode runs the round-trip polling loop until the context is
// cancelled or a round trip strands.
func (a *App) ArbitrageMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting arbitrage mode",
		slog.Any("asset_ids", a.cfg.Arbitrage.AssetIDs),
	)

	svc, assets, err := a.buildRoundTripService(deps)
	if err != nil {
		return fmt.Errorf("arbitrage mode: %w", err)
	}

	_ = deps.Notifier.Notify(ctx, notify.EventBotStarted, "aggrefi started",
		fmt.Sprintf("arbitrage mode on %s, account %s", a.cfg.Network, deps.Account.Address))

	return a.runRoundTripLoop(ctx, deps, svc, assets)
}

// OrderbookMode runs the spot-order polling loop.
func (a *App) OrderbookMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting orderbook mode",
		slog.String("user_id", a.cfg.Orderbook.UserID),
	)

	svc := a.buildSpotOrderService(deps)

	_ = deps.Notifier.Notify(ctx, notify.EventBotStarted, "aggrefi started",
		fmt.Sprintf("orderbook mode on %s, account %s", a.cfg.Network, deps.Account.Address))

	return a.runSpotOrderLoop(ctx, deps, svc)
}

// FullMode runs both loops concurrently. A stranded round trip cancels the
// whole group.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	rtSvc, assets, err := a.buildRoundTripService(deps)
	if err != nil {
		return fmt.Errorf("full mode: %w", err)
	}
	spotSvc := a.buildSpotOrderService(deps)

	_ = deps.Notifier.Notify(ctx, notify.EventBotStarted, "aggrefi started",
		fmt.Sprintf("full mode on %s, account %s", a.cfg.Network, deps.Account.Address))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.runRoundTripLoop(ctx, deps, rtSvc, assets)
	})
	g.Go(func() error {
		return a.runSpotOrderLoop(ctx, deps, spotSvc)
	})
	return g.Wait()
}

// buildRoundTripService assembles the evaluation and execution pipeline and
// resolves the configured cycle assets against the catalog.
func (a *App) buildRoundTripService(deps *Dependencies) (*service.RoundTripService, []domain.Asset, error) {
	logger := a.logger

	assets, err := deps.Catalog.ResolveOnChain(a.cfg.Arbitrage.AssetIDs...)
	if err != nil {
		return nil, nil, err
	}

	slippage := decimal.NewFromFloat(a.cfg.Arbitrage.Slippage)
	minProfit := decimal.NewFromFloat(a.cfg.Arbitrage.MinProfit)

	agg := quote.NewAggregator(deps.Registry, logger)
	evaluator := arb.NewEvaluator(agg, slippage, minProfit, logger)
	executor := arb.NewExecutor(deps.Registry, agg, deps.Ledger, a.cfg.Arbitrage.MaxAttempts, logger)
	orch := arb.NewOrchestrator(executor, deps.Notifier, logger)

	svc := service.NewRoundTripService(
		evaluator, orch,
		deps.RoundTripStore, deps.AuditStore, deps.LockManager, deps.Reports,
		a.cfg.Network, logger,
	)
	return svc, assets, nil
}

func (a *App) buildSpotOrderService(deps *Dependencies) *service.SpotOrderService {
	logger := a.logger

	agg := quote.NewAggregator(deps.Registry, logger)
	executor := arb.NewExecutor(deps.Registry, agg, deps.Ledger, 1, logger)

	return service.NewSpotOrderService(agg, executor, deps.SpotOrderStore, deps.Catalog, deps.Notifier, logger)
}

// runRoundTripLoop polls RunOnce on the configured interval. Quote-side
// misses are routine and keep the loop alive; anything else is fatal, above
// all a stranded round trip.
func (a *App) runRoundTripLoop(ctx context.Context, deps *Dependencies, svc *service.RoundTripService, assets []domain.Asset) error {
	amountIn := decimal.NewFromFloat(a.cfg.Arbitrage.StartingAmount)

	ticker := time.NewTicker(a.cfg.Arbitrage.Interval.Duration)
	defer ticker.Stop()

	for {
		if err := svc.RunOnce(ctx, deps.Account, assets, amountIn); err != nil {
			if arb.IsNoQuote(err) || errors.Is(err, domain.ErrPoolNotFound) {
				a.logger.Warn("round skipped, no executable quotes",
					slog.String("error", err.Error()),
				)
			} else {
				return fmt.Errorf("round trip loop: %w", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runSpotOrderLoop polls the order book on the configured interval.
// Order-level failures are already absorbed inside the service.
func (a *App) runSpotOrderLoop(ctx context.Context, deps *Dependencies, svc *service.SpotOrderService) error {
	ticker := time.NewTicker(a.cfg.Orderbook.Interval.Duration)
	defer ticker.Stop()

	for {
		if err := svc.RunOnce(ctx, deps.Account, a.cfg.Orderbook.UserID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("order book cycle failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
