// Package render maps trade ideas to displayable rows. Pure: no network
// access, no clock, no surface mutation.
package render

import (
	"fmt"
	"html"
	"strings"

	"smc-dashboard/internal/classify"
	"smc-dashboard/internal/types"
)

// Placeholder shown for an absent TP or SL level. A dash is deliberate:
// blank would read as "not loaded yet".
const Placeholder = "—"

// EmptyBucket is the content rendered for a bucket with no ideas.
const EmptyBucket = `<p class="empty">No trade ideas</p>`

// RowState is the submission seed a rendered row carries: everything the
// submitter needs except the operator's final lots value. Lots starts at the
// scan's suggestion and is operator-editable after render; LotSize is fixed
// from the idea.
type RowState struct {
	Symbol    string
	LotSize   int
	Lots      int
	Action    string
	Type      string
	TradeType string
	TP        *float64
	SL        *float64
}

// Quantity derives the order quantity from the row's current input state.
func (s RowState) Quantity() int {
	return s.Lots * s.LotSize
}

// Tag is the human-readable direction/instrument tag, e.g. "LONG CE".
func (s RowState) Tag() string {
	return s.TradeType + " " + s.Type
}

// Row is one renderable trade idea: display strings plus the submission
// state. Display fields are final, reason already escaped.
type Row struct {
	State  RowState
	Title  string
	LTP    string
	TP     string
	SL     string
	Reason string
}

// RenderRow maps a trade idea to its renderable row. Formatting contract:
// prices fixed to two decimals, absent TP/SL as the placeholder dash, an
// absent strike renders no strike suffix, and the free-text reason is
// HTML-escaped because it comes from an external, potentially adversarial
// source.
func RenderRow(idea types.TradeIdea) Row {
	title := idea.Symbol
	if idea.Strike != nil {
		title += " " + Price(*idea.Strike)
	}
	return Row{
		State: RowState{
			Symbol:    idea.Symbol,
			LotSize:   idea.LotSize,
			Lots:      idea.SuggestedLots,
			Action:    idea.ResolveAction(),
			Type:      idea.Type,
			TradeType: idea.TradeType,
			TP:        idea.TP,
			SL:        idea.SL,
		},
		Title:  title,
		LTP:    Price(idea.LTP),
		TP:     OptPrice(idea.TP),
		SL:     OptPrice(idea.SL),
		Reason: html.EscapeString(idea.Reason),
	}
}

// HTML renders the row as an HTML fragment for a bucket surface. The
// fragment tags itself with the data later submission needs.
func (r Row) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="idea" data-symbol="%s" data-action="%s" data-lot-size="%d">`,
		html.EscapeString(r.State.Symbol), r.State.Action, r.State.LotSize)
	fmt.Fprintf(&b, `<span class="title">%s</span>`, html.EscapeString(r.Title))
	fmt.Fprintf(&b, `<span class="tag">%s</span>`, r.State.Tag())
	fmt.Fprintf(&b, `<span class="ltp">LTP %s</span>`, r.LTP)
	fmt.Fprintf(&b, `<span class="levels">TP %s / SL %s</span>`, r.TP, r.SL)
	fmt.Fprintf(&b, `<input class="lots" name="lots" type="number" min="1" value="%d"> x %d`,
		r.State.Lots, r.State.LotSize)
	fmt.Fprintf(&b, `<button class="submit" name="symbol" value="%s">%s</button>`,
		html.EscapeString(r.State.Symbol), r.State.Action)
	if r.Reason != "" {
		fmt.Fprintf(&b, `<p class="reason">%s</p>`, r.Reason)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// Rendered is one render pass over classified buckets: per-bucket content
// plus the row states keyed by symbol for later submission.
type Rendered struct {
	Content map[classify.BucketKey]string
	Rows    map[string]RowState
}

// RenderBuckets renders each bucket's ideas into its surface content.
func RenderBuckets(b classify.Buckets) Rendered {
	out := Rendered{
		Content: make(map[classify.BucketKey]string, len(classify.Keys)),
		Rows:    make(map[string]RowState),
	}
	for _, key := range classify.Keys {
		ideas := b.Get(key)
		if len(ideas) == 0 {
			out.Content[key] = EmptyBucket
			continue
		}
		var sb strings.Builder
		for _, idea := range ideas {
			row := RenderRow(idea)
			sb.WriteString(row.HTML())
			out.Rows[row.State.Symbol] = row.State
		}
		out.Content[key] = sb.String()
	}
	return out
}

// ErrorContent renders a readable error state for a surface, used when a
// refresh fails and the buckets must show why instead of a stale or blank
// list.
func ErrorContent(msg string) string {
	return `<p class="surface-error">` + html.EscapeString(msg) + `</p>`
}

// Price formats a price fixed to two decimals.
func Price(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// OptPrice formats an optional price, rendering absence as the placeholder.
func OptPrice(p *float64) string {
	if p == nil {
		return Placeholder
	}
	return Price(*p)
}
