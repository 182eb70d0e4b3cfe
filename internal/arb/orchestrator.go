package arb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blockadjacent/aggrefi/internal/domain"
	"github.com/blockadjacent/aggrefi/internal/wallet"
)

// Alerter delivers operator notifications. Implemented by notify.Notifier.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Result is the orchestrator's verdict on one executed round.
type Result struct {
	Status   domain.RoundTripStatus
	Outcomes []domain.SwapOutcome
}

// Orchestrator sequences leg execution for an evaluated round trip. Legs are
// strictly sequential: each leg's input is the previous leg's real output,
// so no parallelism is possible by construction.
type Orchestrator struct {
	exec    *Executor
	alerter Alerter
	logger  *slog.Logger
}

// NewOrchestrator creates an Orchestrator. alerter may be nil, in which case
// fatal conditions are only logged.
func NewOrchestrator(exec *Executor, alerter Alerter, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		exec:    exec,
		alerter: alerter,
		logger:  logger.With(slog.String("component", "orchestrator")),
	}
}

// Run executes the evaluation's legs in order.
//
// Leg 1 runs without requoting: a failure there abandons the round with no
// capital committed (Status abandoned, nil error), safe to retry on the
// next polling cycle. Legs 2..N run with requoting enabled and are re-quoted
// from the previous leg's actual settled output, never from the original
// optimistic plan: capital is already parked in an intermediate asset, so
// completing the cycle takes priority over optimal pricing. A leg >= 2 that
// terminates without an outcome strands that position; the round is reported
// fatal and the error must stop the process rather than leave the imbalance
// to be retried silently.
func (o *Orchestrator) Run(ctx context.Context, account wallet.Account, eval Evaluation) (Result, error) {
	if !eval.Profitable {
		return Result{Status: domain.RoundTripAbandoned}, fmt.Errorf("arb: refusing to execute unprofitable evaluation")
	}

	outcomes := make([]domain.SwapOutcome, 0, len(eval.LegQuotes))

	first := IntendedSwap{Quote: eval.LegQuotes[0], Pools: eval.LegPools[0]}
	o.logger.Info("executing leg",
		slog.Int("leg", 1),
		slog.String("dex", first.Quote.Dex),
		slog.String("amount_in", first.Quote.FromAsset.FormatAmount(first.Quote.AmountIn)),
	)

	outcome, err := o.exec.Execute(ctx, account, first, false)
	if err != nil {
		o.logger.Warn("first leg failed, abandoning round",
			slog.String("error", err.Error()),
		)
		return Result{Status: domain.RoundTripAbandoned}, nil
	}
	outcomes = append(outcomes, *outcome)

	for i := 1; i < len(eval.LegQuotes); i++ {
		leg := eval.Plan.Legs[i]
		carryIn := outcomes[i-1].AmountOut

		// Re-quote from the settled carry amount; the evaluation's
		// optimistic figure is stale the moment leg i-1 fills.
		best, err := o.exec.agg.Best(ctx, eval.LegPools[i], leg.From, leg.To, carryIn, eval.LegQuotes[i].Slippage)
		if err != nil {
			return o.fatal(ctx, outcomes, i+1, err)
		}

		o.logger.Info("executing leg",
			slog.Int("leg", i+1),
			slog.String("dex", best.Dex),
			slog.String("amount_in", leg.From.FormatAmount(carryIn)),
		)

		outcome, err := o.exec.Execute(ctx, account, IntendedSwap{Quote: best, Pools: eval.LegPools[i]}, true)
		if err != nil {
			return o.fatal(ctx, outcomes, i+1, err)
		}
		outcomes = append(outcomes, *outcome)
	}

	finalOut := outcomes[len(outcomes)-1].AmountOut
	o.logger.Info("round trip completed",
		slog.String("start", eval.Plan.Start().Code),
		slog.String("amount_in", eval.Plan.Start().FormatAmount(eval.AmountIn)),
		slog.String("amount_out", eval.Plan.Start().FormatAmount(finalOut)),
	)
	if o.alerter != nil {
		msg := fmt.Sprintf("%s in, %s out",
			eval.Plan.Start().FormatAmount(eval.AmountIn),
			eval.Plan.Start().FormatAmount(finalOut))
		if nerr := o.alerter.Notify(ctx, "round_trip_completed", "Round trip completed", msg); nerr != nil {
			o.logger.Error("operator alert failed", slog.String("error", nerr.Error()))
		}
	}
	return Result{Status: domain.RoundTripCompleted, Outcomes: outcomes}, nil
}

// fatal reports a stranded intermediate position to the operator and wraps
// the leg error. No further legs are attempted.
func (o *Orchestrator) fatal(ctx context.Context, outcomes []domain.SwapOutcome, legNo int, err error) (Result, error) {
	held := outcomes[len(outcomes)-1]
	msg := fmt.Sprintf("leg %d failed with %s held from leg %d: %v",
		legNo, held.ToAsset.FormatAmount(held.AmountOut), legNo-1, err)

	o.logger.Error("round trip stranded, stopping",
		slog.Int("leg", legNo),
		slog.String("held", held.ToAsset.FormatAmount(held.AmountOut)),
		slog.String("error", err.Error()),
	)
	if o.alerter != nil {
		if nerr := o.alerter.Notify(ctx, "round_trip_stranded", "Round trip stranded", msg); nerr != nil {
			o.logger.Error("operator alert failed", slog.String("error", nerr.Error()))
		}
	}

	return Result{Status: domain.RoundTripStranded, Outcomes: outcomes},
		fmt.Errorf("arb: %s", msg)
}
