package collector

import (
	"context"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// Fetcher supplies the current cycle's raw price observations, keyed by
// item id. Items may be missing entirely; per-item sample counts vary.
type Fetcher interface {
	FetchSamples(ctx context.Context) (map[string][]model.RawSample, error)
	Name() string
}
