package interfaces

import (
	"context"

	"smc-dashboard/internal/types"
)

type Fetcher interface {
	Fetch(ctx context.Context) (*types.ScanResult, error)
}
