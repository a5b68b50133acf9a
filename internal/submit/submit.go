// Package submit builds, validates, and sends order-execution requests.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"smc-dashboard/internal/api"
	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/render"
	"smc-dashboard/internal/types"
)

var (
	// ErrInvalidQuantity is returned when lots x lot size is not a positive
	// integer. Caught locally; no request is sent.
	ErrInvalidQuantity = errors.New("invalid quantity: lots and lot size must be positive integers")
	// ErrDeclined is returned when the operator declines the confirmation.
	ErrDeclined = errors.New("submission declined by operator")
	// ErrSubmissionInFlight is returned when the row's control is already
	// mid-submission. Guards against duplicate double-click submissions.
	ErrSubmissionInFlight = errors.New("submission already in flight for this row")
)

// Submitter derives an execution request from a row's current input state,
// validates it, asks for operator confirmation, guards the row against
// duplicate submission, and interprets the execution response.
type Submitter struct {
	client  *api.Client
	path    string
	confirm interfaces.Confirmer

	mu     sync.Mutex
	guards map[string]*guard
}

var _ interfaces.Submitter = (*Submitter)(nil)

func New(client *api.Client, path string, confirm interfaces.Confirmer) *Submitter {
	return &Submitter{
		client:  client,
		path:    path,
		confirm: confirm,
		guards:  make(map[string]*guard),
	}
}

// guard is the per-row submission-in-progress flag: the sole concurrency
// control, scoped to one row's control. Distinct rows submit independently.
type guard struct {
	busy bool
	mu   sync.Mutex
}

func (g *guard) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

func (g *guard) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

func (s *Submitter) guardFor(symbol string) *guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[symbol]
	if !ok {
		g = &guard{}
		s.guards[symbol] = g
	}
	return g
}

// InFlight reports whether the row's control is mid-submission. Surfaces use
// this to disable the control and swap its label while a request is out.
func (s *Submitter) InFlight(symbol string) bool {
	s.mu.Lock()
	g, ok := s.guards[symbol]
	s.mu.Unlock()
	if !ok {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Summary builds the human-readable confirmation text shown to the operator
// before anything is sent.
func Summary(row render.RowState) string {
	return fmt.Sprintf("%s %d x %s (%s)\nTP %s / SL %s\nEntry is a LIMIT order; the server derives the price from the market best bid/ask.",
		row.Action, row.Quantity(), row.Symbol, row.Tag(),
		render.OptPrice(row.TP), render.OptPrice(row.SL))
}

// Submit sends one execution request for the row's current input state.
//
// Local validation and operator confirmation run before any network call;
// the in-flight guard is held for the duration of the request and released
// on every exit path. A nil error with a non-empty TPError or SLError on the
// outcome means the entry was placed but a protection leg failed; that is
// additive information, not an overall failure.
func (s *Submitter) Submit(ctx context.Context, row render.RowState) (*types.SubmissionOutcome, error) {
	if row.Lots <= 0 || row.LotSize <= 0 {
		return nil, ErrInvalidQuantity
	}

	ok, err := s.confirm.Confirm(ctx, Summary(row))
	if err != nil {
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return nil, ErrDeclined
	}

	g := s.guardFor(row.Symbol)
	if !g.begin() {
		return nil, ErrSubmissionInFlight
	}
	defer g.end()

	req := types.ExecutionRequest{
		Symbol:    row.Symbol,
		Action:    row.Action,
		Type:      row.Type,
		TradeType: row.TradeType,
		Quantity:  row.Quantity(),
		OrderType: types.OrderTypeLimit,
		WithTPSL:  true,
		TP:        row.TP,
		SL:        row.SL,
		Product:   types.ProductNRML,
	}

	resp, err := s.client.POST(ctx, s.path, req)
	if err != nil {
		return nil, &types.FetchFailure{Kind: types.FailTransport, Err: err}
	}

	// Same content-type guard as the scan path: a proxy error page or HTML
	// body must become a readable failure, not a decode panic.
	if !resp.IsJSON() {
		return nil, &types.FetchFailure{
			Kind:       types.FailProtocol,
			StatusCode: resp.StatusCode,
			Snippet:    types.Snippet(resp.Body),
		}
	}

	var er types.ExecutionResponse
	if err := resp.ParseJSON(&er); err != nil {
		return nil, &types.FetchFailure{
			Kind:       types.FailProtocol,
			StatusCode: resp.StatusCode,
			Snippet:    types.Snippet(resp.Body),
			Err:        err,
		}
	}

	if er.Status != "ok" {
		msg := er.Error
		if msg == "" {
			msg = types.Snippet(resp.Body)
		}
		return nil, &types.FetchFailure{
			Kind:       types.FailBusiness,
			StatusCode: resp.StatusCode,
			Snippet:    msg,
		}
	}

	return &types.SubmissionOutcome{
		EntryOrderID:   er.EntryOrderID,
		UsedLimitPrice: er.UsedLimitPrice,
		TPOrderID:      er.TPOrderID,
		TPPrice:        er.TPPrice,
		SLOrderID:      er.SLOrderID,
		SLTrigger:      er.SLTrigger,
		SLPrice:        er.SLPrice,
		TPError:        er.TPError,
		SLError:        er.SLError,
	}, nil
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, summary string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, summary string) (bool, error) {
	return f(ctx, summary)
}

// Confirmed returns a Confirmer that always approves. Used where the
// operator already confirmed through an earlier interaction, such as the web
// surface's confirm round-trip.
func Confirmed() interfaces.Confirmer {
	return ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
}
