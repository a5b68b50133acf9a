package types

import "fmt"

// FailureKind classifies remote failures for logging, metrics, and display.
type FailureKind string

const (
	// FailTransport covers network-level failures: unreachable host,
	// timeout, connection reset.
	FailTransport FailureKind = "transport"
	// FailProtocol covers a non-JSON or malformed body where JSON was
	// expected.
	FailProtocol FailureKind = "protocol"
	// FailBusiness covers a well-formed response reporting a non-success
	// status.
	FailBusiness FailureKind = "business"
)

// FetchFailure is a remote operation failure carrying enough context to show
// the operator the real failure instead of a generic parse error: the HTTP
// status and the leading bytes of whatever body the server actually sent.
type FetchFailure struct {
	Kind       FailureKind
	StatusCode int
	Snippet    string
	Err        error
}

func (f *FetchFailure) Error() string {
	switch {
	case f.Kind == FailTransport && f.Err != nil:
		return fmt.Sprintf("transport failure: %v", f.Err)
	case f.Snippet != "" && f.StatusCode > 0:
		return fmt.Sprintf("%s failure: HTTP %d: %s", f.Kind, f.StatusCode, f.Snippet)
	case f.Snippet != "":
		return fmt.Sprintf("%s failure: %s", f.Kind, f.Snippet)
	case f.Err != nil:
		return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
	default:
		return fmt.Sprintf("%s failure: HTTP %d", f.Kind, f.StatusCode)
	}
}

func (f *FetchFailure) Unwrap() error { return f.Err }

// Snippet truncates a raw response body for operator display and failure
// messages. Roughly the first 200 bytes is enough to recognize an HTML error
// page or a proxy message without flooding the surface.
func Snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
