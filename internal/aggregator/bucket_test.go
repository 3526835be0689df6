package aggregator

import (
	"testing"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/config"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"

	"github.com/stretchr/testify/assert"
)

func samplesAt(id string, ts time.Time, prices ...int64) []model.RawSample {
	out := make([]model.RawSample, len(prices))
	for i, p := range prices {
		out[i] = model.RawSample{ItemID: id, Timestamp: ts, Price: p}
	}
	return out
}

func TestAggregateCycle_TruncatesToCycleBoundary(t *testing.T) {
	b := NewBucketAggregator(config.DefaultFilterConfig())
	capture := ts("2026-01-02T10:07:13Z")

	reps := b.AggregateCycle(map[string][]model.RawSample{
		"sword": samplesAt("sword", capture, 2400000, 2450000, 2480000, 2500000),
	}, nil, capture)

	rep := reps["sword"]
	assert.Equal(t, ts("2026-01-02T10:00:00Z"), rep.Timestamp,
		"representative must be stamped on the 30-minute boundary, not capture time")
	assert.Equal(t, int64(2465000), rep.Price)
	assert.False(t, rep.Fallback)
}

func TestAggregateCycle_FallbackToPrevious(t *testing.T) {
	b := NewBucketAggregator(config.DefaultFilterConfig())
	cycle := ts("2026-01-02T10:00:00Z")
	previous := map[string]model.Representative{
		"cape": {ItemID: "cape", Timestamp: cycle.Add(-model.CycleWidth), Price: 1020000},
	}

	// Three points is below minimum_data_points=4.
	reps := b.AggregateCycle(map[string][]model.RawSample{
		"cape": samplesAt("cape", cycle, 1000000, 1050000, 980000),
	}, previous, cycle)

	rep := reps["cape"]
	assert.True(t, rep.Fallback)
	assert.Equal(t, int64(1020000), rep.Price)
	assert.Equal(t, cycle, rep.Timestamp)
}

func TestAggregateCycle_FallbackWithoutHistoryUsesRawMedian(t *testing.T) {
	b := NewBucketAggregator(config.DefaultFilterConfig())
	cycle := ts("2026-01-02T10:00:00Z")

	reps := b.AggregateCycle(map[string][]model.RawSample{
		"ring": samplesAt("ring", cycle, 1000000, 1050000, 980000),
	}, nil, cycle)

	rep := reps["ring"]
	assert.True(t, rep.Fallback)
	assert.Equal(t, int64(1000000), rep.Price, "raw median of the floor survivors")
}

func TestAggregateCycle_NothingKnownSkipsItem(t *testing.T) {
	b := NewBucketAggregator(config.DefaultFilterConfig())
	cycle := ts("2026-01-02T10:00:00Z")

	// Everything below the absolute floor and no previous representative.
	reps := b.AggregateCycle(map[string][]model.RawSample{
		"junk": samplesAt("junk", cycle, 0, 1, 5),
	}, nil, cycle)

	_, ok := reps["junk"]
	assert.False(t, ok)
}

func TestAggregateCycle_MissingItemCarriedForward(t *testing.T) {
	b := NewBucketAggregator(config.DefaultFilterConfig())
	cycle := ts("2026-01-02T10:00:00Z")

	previous := map[string]model.Representative{
		"gloves": {ItemID: "gloves", Timestamp: cycle.Add(-model.CycleWidth), Price: 777000},
	}

	// Item missing from 5 consecutive cycles: value unchanged throughout.
	for i := 0; i < 5; i++ {
		cycle = cycle.Add(model.CycleWidth)
		reps := b.AggregateCycle(map[string][]model.RawSample{}, previous, cycle)
		rep, ok := reps["gloves"]
		assert.True(t, ok, "carried-forward item must not disappear")
		assert.True(t, rep.Carried)
		assert.Equal(t, int64(777000), rep.Price)
		assert.Equal(t, cycle, rep.Timestamp)
		previous = reps
	}
}
