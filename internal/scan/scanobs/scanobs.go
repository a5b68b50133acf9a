package scanobs

import (
	"context"
	"errors"

	"smc-dashboard/internal/interfaces"
	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/metrics"
	"smc-dashboard/internal/trace"
	"smc-dashboard/internal/types"
)

// observableFetcher wraps a Fetcher with observability (logging & tracing)
type observableFetcher struct {
	fetcher interfaces.Fetcher
}

// Compile-time interface check
var _ interfaces.Fetcher = (*observableFetcher)(nil)

// Wrap wraps a fetcher with observability middleware
func Wrap(fetcher interfaces.Fetcher) interfaces.Fetcher {
	return &observableFetcher{
		fetcher: fetcher,
	}
}

// Fetch polls the scan endpoint with observability
func (of *observableFetcher) Fetch(ctx context.Context) (*types.ScanResult, error) {
	ctx, span := trace.StartSpan(ctx, "scan.Fetch")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching scan status")

	result, err := of.fetcher.Fetch(ctx)
	if err != nil {
		var failure *types.FetchFailure
		if errors.As(err, &failure) {
			metrics.IncFetchFailure(string(failure.Kind))
		} else {
			metrics.IncFetchFailure(string(types.FailTransport))
		}
		logger.ErrorWithErrSkip(ctx, 1, "Scan fetch failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Scan fetched successfully",
		"status", result.Status,
		"ts", result.TS,
		"picks", len(result.Picks),
		"scan_errors", len(result.Errors),
	)
	return result, nil
}
