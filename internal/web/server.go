// Package web is the operator surface: a small HTTP server that shows the
// four bucket surfaces and routes submit actions to the order submitter.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smc-dashboard/internal/classify"
	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/render"
	"smc-dashboard/internal/session"
	"smc-dashboard/internal/submit"
	"smc-dashboard/internal/types"
)

// RowSource resolves a displayed row by symbol. Satisfied by
// session.Session.
type RowSource interface {
	Row(symbol string) (render.RowState, bool)
}

type Server struct {
	router    chi.Router
	title     string
	submitter interfaces.Submitter
	rows      RowSource

	longCE  *Surface
	shortCE *Surface
	longPE  *Surface
	shortPE *Surface
	meta    *Surface
	diag    *Surface
	errs    *Surface
}

func NewServer(title string, submitter interfaces.Submitter) *Server {
	s := &Server{
		title:     title,
		submitter: submitter,
		longCE:    &Surface{},
		shortCE:   &Surface{},
		longPE:    &Surface{},
		shortPE:   &Surface{},
		meta:      &Surface{},
		diag:      &Surface{},
		errs:      &Surface{},
	}
	s.router = s.buildRouter()
	return s
}

// SetRowSource attaches the session after construction; the session needs
// this server's surfaces first.
func (s *Server) SetRowSource(rows RowSource) {
	s.rows = rows
}

// Surfaces exposes this server's outputs for the refresh loop to render into.
func (s *Server) Surfaces() session.Surfaces {
	return session.Surfaces{
		LongCE:  s.longCE,
		ShortCE: s.shortCE,
		LongPE:  s.longPE,
		ShortPE: s.shortPE,
		Meta:    s.meta,
		Diag:    s.diag,
		Errors:  s.errs,
	}
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server; Shutdown stops it.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/submit", s.handleSubmit)
	r.Get("/row/{symbol}/state", s.handleRowState)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

var bucketHeadings = map[classify.BucketKey]string{
	classify.LongCE:  "Long CE",
	classify.ShortCE: "Short CE",
	classify.LongPE:  "Long PE",
	classify.ShortPE: "Short PE",
}

func (s *Server) bucketSurface(key classify.BucketKey) *Surface {
	switch key {
	case classify.LongCE:
		return s.longCE
	case classify.ShortCE:
		return s.shortCE
	case classify.LongPE:
		return s.longPE
	case classify.ShortPE:
		return s.shortPE
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html><html><head><title>%s</title></head><body>", html.EscapeString(s.title))
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(s.title))
	fmt.Fprintf(&b, `<div id="meta">%s</div>`, s.meta.Content())
	for _, key := range classify.Keys {
		fmt.Fprintf(&b, `<section id="%s"><h2>%s</h2>%s</section>`,
			strings.ToLower(string(key)), bucketHeadings[key], s.bucketSurface(key).Content())
	}
	if errs := s.errs.Content(); errs != "" {
		fmt.Fprintf(&b, `<div id="errors">%s</div>`, errs)
	}
	if diag := s.diag.Content(); diag != "" {
		fmt.Fprintf(&b, `<details id="diag"><summary>Diagnostics</summary>%s</details>`, diag)
	}
	b.WriteString("</body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// handleSubmit is the operator action path. Without confirm=yes it answers
// with the confirmation summary instead of submitting, so nothing reaches
// the network until the operator explicitly approves.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if s.rows == nil {
		http.Error(w, "dashboard not ready", http.StatusServiceUnavailable)
		return
	}

	symbol := r.PostFormValue("symbol")
	row, ok := s.rows.Row(symbol)
	if !ok {
		http.Error(w, "unknown row: "+symbol, http.StatusNotFound)
		return
	}

	// Operator-edited lots; a non-integer value becomes 0 and is rejected
	// by the submitter's local validation.
	if lotsText := r.PostFormValue("lots"); lotsText != "" {
		lots, err := strconv.Atoi(lotsText)
		if err != nil {
			lots = 0
		}
		row.Lots = lots
	}

	if r.PostFormValue("confirm") != "yes" {
		s.writeConfirmPage(w, row)
		return
	}

	outcome, err := s.submitter.Submit(r.Context(), row)
	if err != nil {
		s.writeSubmitError(w, r.Context(), row, err)
		return
	}
	s.writeOutcomePage(w, row, outcome)
}

func (s *Server) writeConfirmPage(w http.ResponseWriter, row render.RowState) {
	var b strings.Builder
	b.WriteString(`<div class="confirm"><pre>`)
	b.WriteString(html.EscapeString(submit.Summary(row)))
	b.WriteString(`</pre><form method="post" action="/submit">`)
	fmt.Fprintf(&b, `<input type="hidden" name="symbol" value="%s">`, html.EscapeString(row.Symbol))
	fmt.Fprintf(&b, `<input type="hidden" name="lots" value="%d">`, row.Lots)
	b.WriteString(`<input type="hidden" name="confirm" value="yes">`)
	b.WriteString(`<button>Confirm</button> <a href="/">Cancel</a></form></div>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) writeOutcomePage(w http.ResponseWriter, row render.RowState, outcome *types.SubmissionOutcome) {
	var b strings.Builder
	b.WriteString(`<div class="outcome">`)
	fmt.Fprintf(&b, `<p class="ok">Entry placed: %s, order %s</p>`,
		html.EscapeString(row.Symbol), html.EscapeString(outcome.EntryOrderID))
	if outcome.UsedLimitPrice != nil {
		fmt.Fprintf(&b, `<p class="limit">Limit price used: %s</p>`, render.Price(*outcome.UsedLimitPrice))
	}
	// TP and SL outcomes are reported independently: either leg can fail
	// without invalidating the entry.
	if outcome.TPError != "" {
		fmt.Fprintf(&b, `<p class="leg-error">TP leg failed: %s</p>`, html.EscapeString(outcome.TPError))
	} else if outcome.TPOrderID != "" {
		fmt.Fprintf(&b, `<p class="leg">TP order %s at %s</p>`,
			html.EscapeString(outcome.TPOrderID), render.OptPrice(outcome.TPPrice))
	}
	if outcome.SLError != "" {
		fmt.Fprintf(&b, `<p class="leg-error">SL leg failed: %s</p>`, html.EscapeString(outcome.SLError))
	} else if outcome.SLOrderID != "" {
		fmt.Fprintf(&b, `<p class="leg">SL order %s, trigger %s</p>`,
			html.EscapeString(outcome.SLOrderID), render.OptPrice(outcome.SLTrigger))
	}
	b.WriteString(`<a href="/">Back</a></div>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) writeSubmitError(w http.ResponseWriter, ctx context.Context, row render.RowState, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, submit.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, submit.ErrSubmissionInFlight):
		status = http.StatusConflict
	case errors.Is(err, submit.ErrDeclined):
		status = http.StatusBadRequest
	}
	logger.Warn(ctx, "Submission rejected", "symbol", row.Symbol, "error", err)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="outcome"><p class="error">%s</p><a href="/">Back</a></div>`,
		html.EscapeString(err.Error()))
}

// handleRowState reports whether a row's control is mid-submission, so the
// page can disable the control and swap its label while a request is out.
func (s *Server) handleRowState(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"symbol":    symbol,
		"in_flight": s.submitter.InFlight(symbol),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
