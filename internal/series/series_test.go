package series

import (
	"testing"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"

	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSeries_AppendAndRead(t *testing.T) {
	s := New(model.Interval1h, 0)
	assert.NoError(t, s.Append(ts("2026-01-02T01:00:00Z"), 100))
	assert.NoError(t, s.Append(ts("2026-01-02T02:00:00Z"), 200))

	pts := s.Points()
	assert.Len(t, pts, 2)
	assert.Equal(t, int64(100), pts[0].Price)
	assert.Equal(t, int64(200), pts[1].Price)
	assert.True(t, pts[0].Timestamp.Before(pts[1].Timestamp))
}

func TestSeries_CapacityEvictsOldest(t *testing.T) {
	s := New(model.Interval1h, 168)
	start := ts("2026-01-02T00:00:00Z")
	for i := 1; i <= 168; i++ {
		assert.NoError(t, s.Append(start.Add(time.Duration(i)*time.Hour), int64(i)))
	}
	assert.Equal(t, 168, s.Len())

	// One more valid append: length stays at capacity, oldest evicted.
	assert.NoError(t, s.Append(start.Add(169*time.Hour), 999))
	assert.Equal(t, 168, s.Len())

	pts := s.Points()
	assert.Equal(t, int64(2), pts[0].Price, "oldest point should be evicted first")
	assert.Equal(t, int64(999), pts[len(pts)-1].Price)
}

func TestSeries_RejectsNonMonotonic(t *testing.T) {
	s := New(model.Interval1h, 10)
	assert.NoError(t, s.Append(ts("2026-01-02T05:00:00Z"), 100))

	err := s.Append(ts("2026-01-02T05:00:00Z"), 200)
	assert.ErrorIs(t, err, ErrNotAfterLast)
	err = s.Append(ts("2026-01-02T04:00:00Z"), 200)
	assert.ErrorIs(t, err, ErrNotAfterLast)

	// The series is left unchanged.
	assert.Equal(t, 1, s.Len())
	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, int64(100), last.Price)
}

func TestSeries_RejectsMisaligned(t *testing.T) {
	s := New(model.Interval12h, 10)
	err := s.Append(ts("2026-01-02T05:30:00Z"), 100)
	assert.ErrorIs(t, err, ErrMisaligned)
	assert.Equal(t, 0, s.Len())

	assert.NoError(t, s.Append(ts("2026-01-02T12:00:00Z"), 100))

	s24 := New(model.Interval24h, 10)
	err = s24.Append(ts("2026-01-02T12:00:00Z"), 100)
	assert.ErrorIs(t, err, ErrMisaligned)
	assert.NoError(t, s24.Append(ts("2026-01-03T00:00:00Z"), 100))
}

func TestRestore_TrimsBeyondCapacity(t *testing.T) {
	pts := make([]model.PricePoint, 5)
	start := ts("2026-01-02T00:00:00Z")
	for i := range pts {
		pts[i] = model.PricePoint{Timestamp: start.Add(time.Duration(i+1) * time.Hour), Price: int64(i + 1)}
	}
	s := Restore(model.Interval1h, 3, pts)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(3), s.Points()[0].Price)
	assert.Equal(t, int64(5), s.Points()[2].Price)
}
