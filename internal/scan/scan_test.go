package scan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smc-dashboard/internal/api"
	"smc-dashboard/internal/types"
)

func newFetcher(serverURL string) *Fetcher {
	client := api.NewClient(
		api.WithBaseURL(serverURL),
		api.WithTimeout(2*time.Second),
	)
	return NewFetcher(client, "/api/smc-status")
}

func TestFetchDecodesScanResult(t *testing.T) {
	body := `{
		"status": "ok",
		"ts": "2026-08-29T10:15:00+05:30",
		"budget": 50000,
		"errors": ["token refresh slow"],
		"picks": [
			{"symbol":"NIFTY24000CE","name":"NIFTY 24000 CE","type":"CE","strike":24000,
			 "ltp":120.5,"lot_size":50,"suggested_lots":2,"tp":130,"sl":110,
			 "reason":"order block retest","trade_type":"LONG"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	result, err := newFetcher(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Status != "ok" {
		t.Errorf("Expected status ok, got %s", result.Status)
	}
	if result.Budget == nil || *result.Budget != 50000 {
		t.Errorf("Expected budget 50000, got %v", result.Budget)
	}
	if len(result.Picks) != 1 {
		t.Fatalf("Expected 1 pick, got %d", len(result.Picks))
	}

	pick := result.Picks[0]
	if pick.Symbol != "NIFTY24000CE" || pick.LotSize != 50 || pick.SuggestedLots != 2 {
		t.Errorf("Pick decoded wrong: %+v", pick)
	}
	if pick.TP == nil || *pick.TP != 130 || pick.SL == nil || *pick.SL != 110 {
		t.Errorf("Expected TP/SL decoded as values, got %v/%v", pick.TP, pick.SL)
	}
}

func TestFetchBypassesCaches(t *testing.T) {
	var gotQuery, gotCacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("_")
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","ts":"","picks":[]}`))
	}))
	defer srv.Close()

	f := newFetcher(srv.URL)
	f.now = func() time.Time { return time.UnixMilli(1724900000000) }

	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotQuery != "1724900000000" {
		t.Errorf("Expected cache-busting query param, got %q", gotQuery)
	}
	if !strings.Contains(gotCacheControl, "no-cache") {
		t.Errorf("Expected no-cache header, got %q", gotCacheControl)
	}
}

func TestFetchNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
	}))
	defer srv.Close()

	_, err := newFetcher(srv.URL).Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected failure for HTML error page")
	}

	var failure *types.FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected FetchFailure, got %T", err)
	}
	if failure.Kind != types.FailProtocol {
		t.Errorf("Expected protocol failure, got %s", failure.Kind)
	}
	if failure.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", failure.StatusCode)
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("Expected message with status and body text, got %q", err.Error())
	}
}

func TestFetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "picks": [`))
	}))
	defer srv.Close()

	_, err := newFetcher(srv.URL).Fetch(context.Background())

	var failure *types.FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected FetchFailure, got %v", err)
	}
	if failure.Kind != types.FailProtocol {
		t.Errorf("Expected protocol failure, got %s", failure.Kind)
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := newFetcher(srv.URL).Fetch(context.Background())

	var failure *types.FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected FetchFailure, got %v", err)
	}
	if failure.Kind != types.FailTransport {
		t.Errorf("Expected transport failure, got %s", failure.Kind)
	}
}

func TestFetchRejectsBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","ts":"","picks":[{"symbol":"X","type":"CE","trade_type":"LONG","lot_size":0}]}`))
	}))
	defer srv.Close()

	_, err := newFetcher(srv.URL).Fetch(context.Background())

	var failure *types.FetchFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Expected FetchFailure for bad shape, got %v", err)
	}
	if failure.Kind != types.FailProtocol {
		t.Errorf("Expected protocol failure, got %s", failure.Kind)
	}
	if !strings.Contains(failure.Snippet, "lot_size") {
		t.Errorf("Expected shape error to name the field, got %q", failure.Snippet)
	}
}
