// Package arb contains the round-trip arbitrage core: side-effect-free
// profitability evaluation, single-leg execution with bounded
// requote-and-retry, and leg-by-leg orchestration of a full cycle.
package arb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/quote"
)

// Evaluation is a priced round-trip plan: the domain verdict plus the
// resolved pools per leg, kept so execution does not have to re-resolve them
// on the happy path.
type Evaluation struct {
	domain.Evaluation
	LegPools []quote.Pools
}

// Evaluator prices a round-trip plan without side effects. Given unchanged
// pool state it is a pure function of its inputs and may be invoked
// arbitrarily often.
type Evaluator struct {
	agg       *quote.Aggregator
	slippage  decimal.Decimal
	minProfit decimal.Decimal
	logger    *slog.Logger
}

// NewEvaluator creates an Evaluator with the configured slippage tolerance
// and minimum profit threshold.
func NewEvaluator(agg *quote.Aggregator, slippage, minProfit decimal.Decimal, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		agg:       agg,
		slippage:  slippage,
		minProfit: minProfit,
		logger:    logger.With(slog.String("component", "evaluator")),
	}
}

// Evaluate walks the plan leg by leg, feeding each leg's optimistic (raw)
// best AmountOut into the next leg. The profitability check deliberately
// uses raw quotes rather than the conservative slippage figures: slippage
// protection is enforced again at execution time, and a plan rejected on
// worst-case numbers would leave real opportunities on the table.
//
// The verdict is profitable iff finalOut >= amountIn + minProfit, boundary
// inclusive. Nothing is submitted; aggregation errors surface unchanged.
func (e *Evaluator) Evaluate(ctx context.Context, plan domain.RoundTripPlan, amountIn decimal.Decimal) (Evaluation, error) {
	eval := Evaluation{
		Evaluation: domain.Evaluation{
			Plan:      plan,
			AmountIn:  amountIn,
			MinProfit: e.minProfit,
			LegQuotes: make([]domain.Quote, 0, len(plan.Legs)),
		},
		LegPools: make([]quote.Pools, 0, len(plan.Legs)),
	}

	legIn := amountIn
	for i, leg := range plan.Legs {
		pools, err := e.agg.ResolvePools(ctx, leg.From, leg.To)
		if err != nil {
			return Evaluation{}, err
		}
		if len(pools) == 0 {
			return Evaluation{}, fmt.Errorf("arb: leg %d %s->%s: no pool on any dex: %w",
				i+1, leg.From.Code, leg.To.Code, domain.ErrPoolNotFound)
		}

		best, err := e.agg.Best(ctx, pools, leg.From, leg.To, legIn, e.slippage)
		if err != nil {
			return Evaluation{}, fmt.Errorf("arb: leg %d %s->%s: %w", i+1, leg.From.Code, leg.To.Code, err)
		}

		e.logger.Info("leg quoted",
			slog.Int("leg", i+1),
			slog.String("dex", best.Dex),
			slog.String("amount_in", leg.From.FormatAmount(legIn)),
			slog.String("amount_out", leg.To.FormatAmount(best.AmountOut)),
		)

		eval.LegQuotes = append(eval.LegQuotes, best)
		eval.LegPools = append(eval.LegPools, pools)
		legIn = best.AmountOut
	}

	eval.FinalOut = legIn
	eval.Profitable = eval.FinalOut.GreaterThanOrEqual(amountIn.Add(e.minProfit))

	e.logger.Info("round trip evaluated",
		slog.String("start", plan.Start().Code),
		slog.String("amount_in", plan.Start().FormatAmount(amountIn)),
		slog.String("final_out", plan.Start().FormatAmount(eval.FinalOut)),
		slog.String("min_profit", e.minProfit.String()),
		slog.Bool("profitable", eval.Profitable),
	)
	return eval, nil
}
