package submitobs

import (
	"context"
	"errors"

	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/metrics"
	"smc-dashboard/internal/render"
	"smc-dashboard/internal/submit"
	"smc-dashboard/internal/trace"
	"smc-dashboard/internal/types"
)

// observableSubmitter wraps a Submitter with observability (logging & tracing)
type observableSubmitter struct {
	submitter interfaces.Submitter
}

// Compile-time interface check
var _ interfaces.Submitter = (*observableSubmitter)(nil)

// Wrap wraps a submitter with observability middleware
func Wrap(submitter interfaces.Submitter) interfaces.Submitter {
	return &observableSubmitter{
		submitter: submitter,
	}
}

// Submit sends an execution request with observability
func (ws *observableSubmitter) Submit(ctx context.Context, row render.RowState) (*types.SubmissionOutcome, error) {
	ctx, span := trace.StartSpan(ctx, "submit.Submit")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting order",
		"symbol", row.Symbol,
		"action", row.Action,
		"lots", row.Lots,
		"lot_size", row.LotSize,
		"quantity", row.Quantity(),
	)

	outcome, err := ws.submitter.Submit(ctx, row)
	if err != nil {
		metrics.IncSubmission(resultLabel(err))
		logger.ErrorWithErrSkip(ctx, 1, "Order submission failed", err,
			"symbol", row.Symbol,
			"action", row.Action,
			"quantity", row.Quantity(),
		)
		return nil, err
	}

	if outcome.TPError != "" || outcome.SLError != "" {
		metrics.IncSubmission("partial")
		logger.WarnSkip(ctx, 1, "Entry placed, protection leg failed",
			"symbol", row.Symbol,
			"entry_order_id", outcome.EntryOrderID,
			"tp_error", outcome.TPError,
			"sl_error", outcome.SLError,
		)
	} else {
		metrics.IncSubmission("ok")
	}

	logger.Trade(ctx, row.Symbol, row.Action, row.Quantity(), outcome.EntryOrderID)
	return outcome, nil
}

// InFlight reports the row's guard state
func (ws *observableSubmitter) InFlight(symbol string) bool {
	return ws.submitter.InFlight(symbol)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, submit.ErrInvalidQuantity):
		return "invalid"
	case errors.Is(err, submit.ErrDeclined):
		return "declined"
	case errors.Is(err, submit.ErrSubmissionInFlight):
		return "in_flight"
	}
	var failure *types.FetchFailure
	if errors.As(err, &failure) {
		return string(failure.Kind)
	}
	return "error"
}
