// Package session owns the dashboard's refresh loop: the polling cadence,
// the output surfaces, and the currently displayed row set.
package session

import (
	"context"
	"encoding/json"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smc-dashboard/internal/classify"
	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/metrics"
	"smc-dashboard/internal/render"
	"smc-dashboard/internal/types"
)

// Surfaces are the named outputs a session renders into: one per bucket
// plus the meta, diagnostics, and errors surfaces.
type Surfaces struct {
	LongCE  interfaces.Surface
	ShortCE interfaces.Surface
	LongPE  interfaces.Surface
	ShortPE interfaces.Surface

	Meta   interfaces.Surface
	Diag   interfaces.Surface
	Errors interfaces.Surface
}

func (s Surfaces) bucket(key classify.BucketKey) interfaces.Surface {
	switch key {
	case classify.LongCE:
		return s.LongCE
	case classify.ShortCE:
		return s.ShortCE
	case classify.LongPE:
		return s.LongPE
	case classify.ShortPE:
		return s.ShortPE
	}
	return nil
}

// Session drives fetch -> classify -> render on an interval and on start,
// replacing displayed content wholesale each pass. Ticks are independent: a
// slow fetch may overlap the next tick and the last pass to finish wins,
// which is acceptable because reads are idempotent.
type Session struct {
	fetcher  interfaces.Fetcher
	surfaces Surfaces
	interval time.Duration

	mu   sync.RWMutex
	rows map[string]render.RowState

	stopOnce sync.Once
	stop     chan struct{}
}

func New(fetcher interfaces.Fetcher, surfaces Surfaces, interval time.Duration) *Session {
	return &Session{
		fetcher:  fetcher,
		surfaces: surfaces,
		interval: interval,
		rows:     make(map[string]render.RowState),
		stop:     make(chan struct{}),
	}
}

// Run performs one immediate refresh, then one per tick, until the context
// is cancelled or Stop is called.
func (s *Session) Run(ctx context.Context) {
	s.Refresh(ctx)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			s.Refresh(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the refresh loop. Idempotent; safe to call from any
// goroutine. Required when the session is embedded in a longer-lived host so
// the timer does not leak ticks after the surfaces are torn down.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Row returns the displayed row state for a symbol, if any.
func (s *Session) Row(symbol string) (render.RowState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[symbol]
	return row, ok
}

// Refresh runs one fetch -> classify -> render pass.
func (s *Session) Refresh(ctx context.Context) {
	cycleID := uuid.NewString()
	op := logger.StartOperation(ctx, "session.refresh", "cycle_id", cycleID)
	ctx = op.GetContext()

	result, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.IncRefresh("error")
		s.renderFailure(err)
		op.EndWithError(err)
		return
	}

	buckets := classify.Classify(result.Picks)
	rendered := render.RenderBuckets(buckets)

	s.mu.Lock()
	s.rows = rendered.Rows
	s.mu.Unlock()

	for _, key := range classify.Keys {
		s.surfaces.bucket(key).Replace(rendered.Content[key])
		metrics.SetIdeasDisplayed(string(key), len(buckets.Get(key)))
	}
	s.surfaces.Meta.Replace(metaContent(result))
	s.surfaces.Diag.Replace(diagContent(result))
	s.surfaces.Errors.Replace(errorsContent(result.Errors, buckets.Unclassified))

	metrics.IncRefresh("ok")
	logger.Refresh(ctx, cycleID, len(result.Picks), "status", result.Status)
	op.End("picks", len(result.Picks))
}

// renderFailure puts a readable error state on every bucket surface so the
// operator sees the real failure text, never a stale or silently blank list.
func (s *Session) renderFailure(err error) {
	s.mu.Lock()
	s.rows = make(map[string]render.RowState)
	s.mu.Unlock()

	content := render.ErrorContent("scan unavailable: " + err.Error())
	for _, key := range classify.Keys {
		s.surfaces.bucket(key).Replace(content)
		metrics.SetIdeasDisplayed(string(key), 0)
	}
	s.surfaces.Errors.Replace(content)
}

func metaContent(result *types.ScanResult) string {
	var b strings.Builder
	b.WriteString(`<span class="status">` + html.EscapeString(result.Status) + `</span>`)
	b.WriteString(` <span class="ts">` + html.EscapeString(result.TS) + `</span>`)
	if result.Budget != nil {
		b.WriteString(` <span class="budget">Budget ` + render.Price(*result.Budget) + `</span>`)
	}
	return b.String()
}

func diagContent(result *types.ScanResult) string {
	if len(result.Diag) == 0 {
		return ""
	}
	// Opaque payload: pretty-print, escape, done.
	pretty, err := json.MarshalIndent(result.Diag, "", "  ")
	if err != nil {
		return ""
	}
	return `<pre class="diag">` + html.EscapeString(string(pretty)) + `</pre>`
}

func errorsContent(scanErrors []string, unclassified []types.TradeIdea) string {
	if len(scanErrors) == 0 && len(unclassified) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="scan-errors">`)
	for _, msg := range scanErrors {
		b.WriteString(`<li>` + html.EscapeString(msg) + `</li>`)
	}
	for _, idea := range unclassified {
		b.WriteString(`<li>unclassified idea: ` + html.EscapeString(idea.Symbol) +
			` (` + html.EscapeString(idea.Type) + ` ` + html.EscapeString(idea.TradeType) + `)</li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}
