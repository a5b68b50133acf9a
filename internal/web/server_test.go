package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"smc-dashboard/internal/render"
	"smc-dashboard/internal/submit"
	"smc-dashboard/internal/types"
)

func f(v float64) *float64 { return &v }

type fakeSubmitter struct {
	calls    int
	lastRow  render.RowState
	outcome  *types.SubmissionOutcome
	err      error
	inFlight bool
}

func (s *fakeSubmitter) Submit(ctx context.Context, row render.RowState) (*types.SubmissionOutcome, error) {
	s.calls++
	s.lastRow = row
	return s.outcome, s.err
}

func (s *fakeSubmitter) InFlight(symbol string) bool { return s.inFlight }

type fakeRows map[string]render.RowState

func (r fakeRows) Row(symbol string) (render.RowState, bool) {
	row, ok := r[symbol]
	return row, ok
}

func testRow() render.RowState {
	return render.RowState{
		Symbol:    "NIFTY24000CE",
		LotSize:   50,
		Lots:      2,
		Action:    types.ActionBuy,
		Type:      types.TypeCE,
		TradeType: types.DirectionLong,
		TP:        f(130),
		SL:        f(110),
	}
}

func newTestServer(sub *fakeSubmitter) *Server {
	srv := NewServer("SMC Dashboard", sub)
	srv.SetRowSource(fakeRows{"NIFTY24000CE": testRow()})
	return srv
}

func postForm(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestIndexShowsSurfaces(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{})
	surfaces := srv.Surfaces()
	surfaces.LongCE.Replace(`<div class="idea" data-symbol="NIFTY24000CE">row</div>`)
	surfaces.Meta.Replace(`<span class="status">ok</span>`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Long CE", "Short CE", "Long PE", "Short PE", "NIFTY24000CE", `class="status"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestSubmitWithoutConfirmShowsSummary(t *testing.T) {
	sub := &fakeSubmitter{}
	srv := newTestServer(sub)

	w := postForm(t, srv, url.Values{"symbol": {"NIFTY24000CE"}, "lots": {"3"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 confirm page, got %d", w.Code)
	}
	if sub.calls != 0 {
		t.Errorf("Expected no submission before confirmation, got %d", sub.calls)
	}
	body := w.Body.String()
	// Summary reflects the operator-edited lots: 3 x 50 = 150.
	if !strings.Contains(body, "150") || !strings.Contains(body, "NIFTY24000CE") {
		t.Errorf("Expected confirmation summary with derived quantity, got %q", body)
	}
	if !strings.Contains(body, `name="confirm" value="yes"`) {
		t.Error("Expected confirm form in response")
	}
}

func TestSubmitConfirmed(t *testing.T) {
	sub := &fakeSubmitter{outcome: &types.SubmissionOutcome{
		EntryOrderID:   "E1",
		UsedLimitPrice: f(120.55),
	}}
	srv := newTestServer(sub)

	w := postForm(t, srv, url.Values{
		"symbol": {"NIFTY24000CE"}, "lots": {"3"}, "confirm": {"yes"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sub.calls != 1 {
		t.Fatalf("Expected 1 submission, got %d", sub.calls)
	}
	if sub.lastRow.Lots != 3 {
		t.Errorf("Expected operator-edited lots 3, got %d", sub.lastRow.Lots)
	}

	body := w.Body.String()
	if !strings.Contains(body, "E1") || !strings.Contains(body, "120.55") {
		t.Errorf("Expected outcome with order id and limit price, got %q", body)
	}
}

func TestSubmitReportsPartialLegFailure(t *testing.T) {
	sub := &fakeSubmitter{outcome: &types.SubmissionOutcome{
		EntryOrderID: "E1",
		TPError:      "rejected: price band",
		SLOrderID:    "S1",
		SLTrigger:    f(110),
	}}
	srv := newTestServer(sub)

	w := postForm(t, srv, url.Values{
		"symbol": {"NIFTY24000CE"}, "confirm": {"yes"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected overall success page, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Entry placed") {
		t.Errorf("Expected entry success shown, got %q", body)
	}
	if !strings.Contains(body, "TP leg failed") || !strings.Contains(body, "rejected: price band") {
		t.Errorf("Expected TP failure as non-fatal note, got %q", body)
	}
	if !strings.Contains(body, "S1") {
		t.Errorf("Expected SL leg reported independently, got %q", body)
	}
}

func TestSubmitUnknownRow(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{})

	w := postForm(t, srv, url.Values{"symbol": {"NOPE"}, "confirm": {"yes"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown row, got %d", w.Code)
	}
}

func TestSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{submit.ErrInvalidQuantity, http.StatusBadRequest},
		{submit.ErrSubmissionInFlight, http.StatusConflict},
		{&types.FetchFailure{Kind: types.FailBusiness, Snippet: "insufficient margin"}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		srv := newTestServer(&fakeSubmitter{err: tc.err})
		w := postForm(t, srv, url.Values{"symbol": {"NIFTY24000CE"}, "confirm": {"yes"}})
		if w.Code != tc.code {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.code, w.Code)
		}
		if !strings.Contains(w.Body.String(), tc.err.Error()[:10]) {
			t.Errorf("%v: expected failure text shown to operator", tc.err)
		}
	}
}

func TestRowStateEndpoint(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{inFlight: true})

	req := httptest.NewRequest(http.MethodGet, "/row/NIFTY24000CE/state", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"in_flight":true`) {
		t.Errorf("Expected in_flight true, got %s", w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(&fakeSubmitter{})

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}
