package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_EmptyLoad(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	st, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, st.LastCycle.IsZero())
	assert.Empty(t, st.Previous)
	for _, iv := range model.Intervals {
		assert.Empty(t, st.Series[iv])
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	cycle := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	st := NewState()
	st.LastCycle = cycle
	st.Previous["sword"] = model.Representative{ItemID: "sword", Timestamp: cycle, Price: 2465000}
	st.PutSeries("sword", model.Interval1h, []model.PricePoint{
		{Timestamp: cycle.Add(time.Hour), Price: 2465000},
	}, cycle)
	st.PutSeries(model.MarketID, model.Interval1h, []model.PricePoint{
		{Timestamp: cycle.Add(time.Hour), Price: 3495000},
	}, cycle)
	st.PutPending("sword", model.Interval12h, &PendingBucket{
		Start:  cycle.Truncate(12 * time.Hour),
		Prices: []int64{2465000},
	})

	require.NoError(t, fs.Save(st))

	// Per-interval history files exist, no temp leftovers.
	for _, iv := range model.Intervals {
		_, err := os.Stat(filepath.Join(dir, "history_"+string(iv)+".json"))
		assert.NoError(t, err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, leftovers)

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, st.LastCycle, loaded.LastCycle)
	assert.Equal(t, int64(2465000), loaded.Previous["sword"].Price)
	assert.Equal(t, st.SeriesFor("sword", model.Interval1h), loaded.SeriesFor("sword", model.Interval1h))
	assert.Equal(t, st.SeriesFor(model.MarketID, model.Interval1h), loaded.SeriesFor(model.MarketID, model.Interval1h))

	pb, ok := loaded.PendingFor("sword", model.Interval12h)
	require.True(t, ok)
	assert.Equal(t, []int64{2465000}, pb.Prices)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	cycle := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	st := NewState()
	st.LastCycle = cycle
	st.PutSeries("sword", model.Interval1h, []model.PricePoint{{Timestamp: cycle.Add(time.Hour), Price: 1}}, cycle)
	require.NoError(t, fs.Save(st))

	st.LastCycle = cycle.Add(model.CycleWidth)
	st.PutSeries("sword", model.Interval1h, []model.PricePoint{
		{Timestamp: cycle.Add(time.Hour), Price: 1},
		{Timestamp: cycle.Add(2 * time.Hour), Price: 2},
	}, cycle.Add(model.CycleWidth))
	require.NoError(t, fs.Save(st))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, st.LastCycle, loaded.LastCycle)
	assert.Len(t, loaded.SeriesFor("sword", model.Interval1h), 2)
}
