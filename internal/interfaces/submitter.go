package interfaces

import (
	"context"

	"smc-dashboard/internal/render"
	"smc-dashboard/internal/types"
)

type Submitter interface {
	Submit(ctx context.Context, row render.RowState) (*types.SubmissionOutcome, error)
	InFlight(symbol string) bool
}

// Confirmer asks the operator to approve a submission. Declining must abort
// with no network call and no state change.
type Confirmer interface {
	Confirm(ctx context.Context, summary string) (bool, error)
}
