package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/series"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/store"
)

// MultiResolution maintains the 1h/12h/24h series of one identity from a
// stream of 30-minute representative prices. Boundary detection is pure
// timestamp arithmetic, so restarts cannot accumulate drift.
type MultiResolution struct {
	id      string
	series  map[model.Interval]*series.Series
	pending map[model.Interval]*store.PendingBucket
}

// NewMultiResolution creates empty series with the given capacities
// (zero capacity means the interval default).
func NewMultiResolution(id string, capacities map[model.Interval]int) *MultiResolution {
	m := &MultiResolution{
		id:      id,
		series:  make(map[model.Interval]*series.Series, len(model.Intervals)),
		pending: make(map[model.Interval]*store.PendingBucket),
	}
	for _, iv := range model.Intervals {
		m.series[iv] = series.New(iv, capacities[iv])
	}
	return m
}

// RestoreMultiResolution rebuilds the aggregator of one identity from
// persisted state.
func RestoreMultiResolution(id string, st *store.State, capacities map[model.Interval]int) *MultiResolution {
	m := NewMultiResolution(id, capacities)
	for _, iv := range model.Intervals {
		if pts := st.SeriesFor(id, iv); len(pts) > 0 {
			m.series[iv] = series.Restore(iv, capacities[iv], pts)
		}
		if pb, ok := st.PendingFor(id, iv); ok {
			cp := pb
			m.pending[iv] = &cp
		}
	}
	return m
}

// Feed consumes one representative price. For each resolution it buffers
// the sub-point and, when the point completes its bucket, appends the
// median of the buffered sub-points at the bucket's closing boundary.
// Buckets left incomplete when their window has moved on are discarded:
// a series entry always covers exactly one full bucket. Carried-forward
// values participate like any other sub-point. Returned errors are
// boundary violations; the affected resolution keeps its previous state.
func (m *MultiResolution) Feed(rep model.Representative) []error {
	var violations []error
	for _, iv := range model.Intervals {
		width := iv.Width()
		bucketStart := rep.Timestamp.UTC().Truncate(width)

		pb := m.pending[iv]
		if pb != nil && !pb.Start.Equal(bucketStart) {
			// The window moved on before the bucket filled up.
			pb = nil
		}
		if pb == nil {
			pb = &store.PendingBucket{Start: bucketStart}
			m.pending[iv] = pb
		}
		pb.Prices = append(pb.Prices, rep.Price)

		if len(pb.Prices) < iv.SubCycles() {
			continue
		}
		agg := medianPrice(pb.Prices)
		if err := m.series[iv].Append(bucketStart.Add(width), agg); err != nil {
			violations = append(violations, err)
		}
		delete(m.pending, iv)
	}
	return violations
}

// Points returns the recorded points of one resolution, oldest first.
func (m *MultiResolution) Points(iv model.Interval) []model.PricePoint {
	return m.series[iv].Points()
}

// SaveTo writes the series and pending buckets back into persisted state,
// stamping the records with the cycle time.
func (m *MultiResolution) SaveTo(st *store.State, now time.Time) {
	for _, iv := range model.Intervals {
		st.PutSeries(m.id, iv, m.series[iv].Points(), now)
		st.PutPending(m.id, iv, m.pending[iv])
	}
}

func medianPrice(prices []int64) int64 {
	sorted := make([]int64, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return int64(math.Round((float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2))
}
