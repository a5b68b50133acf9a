// Package scan retrieves and validates the periodic scan-status document.
package scan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"smc-dashboard/internal/api"
	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/types"
)

// Fetcher issues the scan-status request and normalizes the response into a
// typed ScanResult or a typed failure. No retries: the refresh cadence is
// the retry mechanism.
type Fetcher struct {
	client *api.Client
	path   string

	// now is the cache-buster clock, swappable in tests.
	now func() time.Time
}

var _ interfaces.Fetcher = (*Fetcher)(nil)

func NewFetcher(client *api.Client, path string) *Fetcher {
	return &Fetcher{
		client: client,
		path:   path,
		now:    time.Now,
	}
}

// Fetch performs one scan-status poll. The request carries a cache-busting
// query parameter and no-cache headers so the operator always sees fresh
// data, even behind an aggressively caching intermediary. The response is
// only JSON-decoded when its content type says it is JSON; anything else is
// read as text and surfaced as a failure carrying the status and the leading
// body bytes.
func (f *Fetcher) Fetch(ctx context.Context) (*types.ScanResult, error) {
	url := f.path + "?_=" + strconv.FormatInt(f.now().UnixMilli(), 10)

	resp, err := f.client.GET(ctx, url, api.NoCacheHeaders())
	if err != nil {
		return nil, &types.FetchFailure{Kind: types.FailTransport, Err: err}
	}

	if !resp.IsJSON() {
		return nil, &types.FetchFailure{
			Kind:       types.FailProtocol,
			StatusCode: resp.StatusCode,
			Snippet:    types.Snippet(resp.Body),
		}
	}

	var result types.ScanResult
	if err := resp.ParseJSON(&result); err != nil {
		return nil, &types.FetchFailure{
			Kind:       types.FailProtocol,
			StatusCode: resp.StatusCode,
			Snippet:    types.Snippet(resp.Body),
			Err:        err,
		}
	}

	if err := validate(&result); err != nil {
		return nil, &types.FetchFailure{
			Kind:       types.FailProtocol,
			StatusCode: resp.StatusCode,
			Snippet:    err.Error(),
		}
	}

	return &result, nil
}

// validate rejects shape mismatches on the JSON boundary so no undefined
// field access propagates downstream.
func validate(result *types.ScanResult) error {
	for i, pick := range result.Picks {
		if pick.Symbol == "" {
			return fmt.Errorf("pick %d: missing symbol", i)
		}
		if pick.LotSize <= 0 {
			return fmt.Errorf("pick %d (%s): lot_size must be positive, got %d", i, pick.Symbol, pick.LotSize)
		}
		if pick.SuggestedLots < 0 {
			return fmt.Errorf("pick %d (%s): suggested_lots cannot be negative, got %d", i, pick.Symbol, pick.SuggestedLots)
		}
	}
	return nil
}
