package collector

import (
	"context"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Samples map[string][]model.RawSample
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSamples(_ context.Context) (map[string][]model.RawSample, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Samples, nil
}
