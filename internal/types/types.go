package types

// Wire values shared by the scan and execute endpoints.
const (
	TypeCE = "CE"
	TypePE = "PE"

	DirectionLong  = "LONG"
	DirectionShort = "SHORT"

	ActionBuy  = "BUY"
	ActionSell = "SELL"

	OrderTypeLimit = "LIMIT"
	ProductNRML    = "NRML"
)

// TradeIdea is one candidate option trade returned by the scan endpoint.
// Immutable once decoded; the next refresh replaces the whole set, there is
// no merge or diff. TP, SL and Strike are pointers because absent is
// distinct from zero on the wire.
type TradeIdea struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Type          string   `json:"type"` // CE | PE
	Strike        *float64 `json:"strike,omitempty"`
	LTP           float64  `json:"ltp"`
	LotSize       int      `json:"lot_size"`
	SuggestedLots int      `json:"suggested_lots"`
	TP            *float64 `json:"tp,omitempty"`
	SL            *float64 `json:"sl,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	TradeType     string   `json:"trade_type"`             // LONG | SHORT
	EntryAction   string   `json:"entry_action,omitempty"` // optional BUY/SELL override
}

// ResolveAction returns the order side for the idea. Precedence: the
// explicit entry_action override wins, otherwise LONG derives BUY and
// anything else derives SELL. Protocol revisions layered type/trade_type on
// top of the legacy action field, so this chain must stay single-sourced to
// keep rendering and submission from drifting apart.
func (t TradeIdea) ResolveAction() string {
	switch t.EntryAction {
	case ActionBuy, ActionSell:
		return t.EntryAction
	}
	if t.TradeType == DirectionLong {
		return ActionBuy
	}
	return ActionSell
}

// ScanResult is the decoded body of a successful scan-status poll. Owned by
// the refresh loop for the duration of one render pass.
type ScanResult struct {
	Status string         `json:"status"`
	TS     string         `json:"ts"`
	Budget *float64       `json:"budget,omitempty"`
	Diag   map[string]any `json:"diag,omitempty"`
	Errors []string       `json:"errors,omitempty"`
	Picks  []TradeIdea    `json:"picks"`
}

// ExecutionRequest is the execute-trade POST body. Price is intentionally
// absent: the entry is always a LIMIT order whose price the server derives
// from the market best bid/ask. TP and SL carry no omitempty so that a
// missing level is forwarded as null, never dropped and never zero.
type ExecutionRequest struct {
	Symbol    string   `json:"symbol"`
	Action    string   `json:"action"`
	Type      string   `json:"type,omitempty"`
	TradeType string   `json:"trade_type,omitempty"`
	Quantity  int      `json:"quantity"`
	OrderType string   `json:"order_type"`
	WithTPSL  bool     `json:"with_tp_sl"`
	TP        *float64 `json:"tp"`
	SL        *float64 `json:"sl"`
	Product   string   `json:"product"`
}

// ExecutionResponse is the execute-trade response body. status == "ok"
// means the entry order was placed; tp_error / sl_error report protection
// legs that failed without invalidating the entry.
type ExecutionResponse struct {
	Status         string   `json:"status"`
	Error          string   `json:"error,omitempty"`
	EntryOrderID   string   `json:"entry_order_id,omitempty"`
	UsedLimitPrice *float64 `json:"used_limit_price,omitempty"`
	TPOrderID      string   `json:"tp_order_id,omitempty"`
	TPPrice        *float64 `json:"tp_price,omitempty"`
	SLOrderID      string   `json:"sl_order_id,omitempty"`
	SLTrigger      *float64 `json:"sl_trigger,omitempty"`
	SLPrice        *float64 `json:"sl_price,omitempty"`
	TPError        string   `json:"tp_error,omitempty"`
	SLError        string   `json:"sl_error,omitempty"`
}

// SubmissionOutcome is what the operator sees after a successful entry.
// TPError / SLError are non-fatal notes: the entry stands even when a
// protection leg was rejected.
type SubmissionOutcome struct {
	EntryOrderID   string
	UsedLimitPrice *float64
	TPOrderID      string
	TPPrice        *float64
	SLOrderID      string
	SLTrigger      *float64
	SLPrice        *float64
	TPError        string
	SLError        string
}
