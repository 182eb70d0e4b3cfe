package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/arb"
	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// lockTTL caps how long a crashed process can keep its round-trip lock.
const lockTTL = 2 * time.Minute

// RoundTripService is the surface the bot loop drives: evaluate a cycle,
// execute it when profitable, and record what happened. Both entry points
// are synchronous, blocking calls with no retries beyond the executor's own
// bounded requote loop.
type RoundTripService struct {
	evaluator *arb.Evaluator
	orch      *arb.Orchestrator
	trips     domain.RoundTripStore
	audit     domain.AuditStore
	locks     domain.LockManager
	reports   domain.ReportWriter
	network   string
	logger    *slog.Logger
}

// NewRoundTripService creates a RoundTripService. trips, audit, locks, and
// reports may each be nil; the corresponding side channel is then skipped.
func NewRoundTripService(
	evaluator *arb.Evaluator,
	orch *arb.Orchestrator,
	trips domain.RoundTripStore,
	audit domain.AuditStore,
	locks domain.LockManager,
	reports domain.ReportWriter,
	network string,
	logger *slog.Logger,
) *RoundTripService {
	return &RoundTripService{
		evaluator: evaluator,
		orch:      orch,
		trips:     trips,
		audit:     audit,
		locks:     locks,
		reports:   reports,
		network:   network,
		logger:    logger.With(slog.String("component", "roundtrip_service")),
	}
}

// EvaluateRoundTrip prices the plan without side effects.
func (s *RoundTripService) EvaluateRoundTrip(ctx context.Context, plan domain.RoundTripPlan, amountIn decimal.Decimal) (arb.Evaluation, error) {
	return s.evaluator.Evaluate(ctx, plan, amountIn)
}

// ExecuteRoundTrip runs the evaluated cycle and persists the result. It
// returns true when every leg settled. A stranded round (leg >= 2 failing
// for good) returns an error the caller must treat as fatal.
func (s *RoundTripService) ExecuteRoundTrip(ctx context.Context, eval arb.Evaluation, account wallet.Account) (bool, error) {
	startedAt := time.Now().UTC()
	result, runErr := s.orch.Run(ctx, account, eval)

	s.record(ctx, eval, result, startedAt)

	if runErr != nil {
		return false, runErr
	}
	return result.Status == domain.RoundTripCompleted, nil
}

// RunOnce performs one full polling-cycle round: evaluate the primary
// direction, fall back to the reverse direction for 3-asset cycles, and
// execute whichever (if either) clears the profit threshold. Rounds are
// serialised per account through the lock manager.
func (s *RoundTripService) RunOnce(ctx context.Context, account wallet.Account, assets []domain.Asset, amountIn decimal.Decimal) error {
	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "roundtrip:"+account.Address, lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				s.logger.Warn("round trip already in flight for account, skipping round")
				return nil
			}
			return fmt.Errorf("service: acquiring round-trip lock: %w", err)
		}
		defer unlock()
	}

	plan := domain.NewRoundTripPlan(assets...)
	eval, err := s.EvaluateRoundTrip(ctx, plan, amountIn)
	if err != nil {
		return err
	}

	// A 3-asset cycle unprofitable one way may still pay the other way
	// round; only after both directions fail is there no opportunity.
	if !eval.Profitable && len(assets) == 3 {
		reversed := plan.Reverse()
		s.logger.Info("primary direction unprofitable, trying reverse cycle")
		if eval, err = s.EvaluateRoundTrip(ctx, reversed, amountIn); err != nil {
			return err
		}
	}

	if !eval.Profitable {
		s.logger.Info("no opportunity this round")
		return nil
	}

	s.logger.Info("arbitrage condition met, executing round trip")
	_, err = s.ExecuteRoundTrip(ctx, eval, account)
	return err
}

// record persists and archives the finished round. Side-channel failures
// are logged, never escalated: the trade already happened.
func (s *RoundTripService) record(ctx context.Context, eval arb.Evaluation, result arb.Result, startedAt time.Time) {
	rt := buildRecord(eval, result, s.network, startedAt)

	if s.trips != nil {
		if err := s.trips.Create(ctx, rt); err != nil {
			s.logger.Error("round trip persistence failed",
				slog.String("id", rt.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.audit != nil {
		detail := map[string]any{
			"id":         rt.ID,
			"status":     string(rt.Status),
			"amount_in":  rt.AmountIn.String(),
			"amount_out": rt.AmountOut.String(),
			"legs":       len(rt.Legs),
		}
		if err := s.audit.Append(ctx, "round_trip_"+string(rt.Status), detail); err != nil {
			s.logger.Warn("audit append failed", slog.String("error", err.Error()))
		}
	}
	if s.reports != nil && rt.Status != domain.RoundTripAbandoned {
		if err := s.reports.WriteReport(ctx, rt); err != nil {
			s.logger.Warn("report archival failed",
				slog.String("id", rt.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// buildRecord assembles the persisted record from the evaluation and the
// execution result.
func buildRecord(eval arb.Evaluation, result arb.Result, network string, startedAt time.Time) domain.RoundTrip {
	rt := domain.RoundTrip{
		ID:         uuid.New().String(),
		Network:    network,
		StartAsset: eval.Plan.Start().ID,
		AmountIn:   eval.AmountIn,
		MinProfit:  eval.MinProfit,
		Status:     result.Status,
		StartedAt:  startedAt,
		Legs:       make([]domain.RoundTripLeg, 0, len(result.Outcomes)),
	}

	for _, out := range result.Outcomes {
		rt.Legs = append(rt.Legs, domain.RoundTripLeg{
			Dex:         out.Dex,
			FromAssetID: out.FromAsset.ID,
			ToAssetID:   out.ToAsset.ID,
			AmountIn:    out.AmountIn,
			AmountOut:   out.AmountOut,
			QuotedOut:   out.Quote.AmountOut,
			Slippage:    out.Slippage,
			Settled:     out.Settled,
		})
	}

	if n := len(result.Outcomes); n > 0 {
		rt.AmountOut = result.Outcomes[n-1].AmountOut
	}
	if rt.Status == domain.RoundTripCompleted {
		rt.Profit = rt.AmountOut.Sub(rt.AmountIn)
		now := time.Now().UTC()
		rt.CompletedAt = &now
	}
	return rt
}
