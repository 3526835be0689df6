// Package series provides the bounded, ordered time series backing one
// (item, interval) pair. The caller decides when a boundary-aligned point
// exists; the series only enforces ordering, alignment and capacity.
package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

var (
	// ErrNotAfterLast marks an append whose timestamp is not strictly
	// after the last recorded point.
	ErrNotAfterLast = errors.New("timestamp not after last recorded point")
	// ErrMisaligned marks an append whose timestamp is not a multiple of
	// the series interval width.
	ErrMisaligned = errors.New("timestamp not aligned to interval width")
)

// Series is a bounded FIFO history of aggregate price points. A failed
// append leaves the series unchanged.
type Series struct {
	interval model.Interval
	capacity int
	points   []model.PricePoint
}

// New creates an empty series for the given interval. A non-positive
// capacity falls back to the interval default.
func New(interval model.Interval, capacity int) *Series {
	if capacity <= 0 {
		capacity = interval.DefaultCapacity()
	}
	return &Series{interval: interval, capacity: capacity}
}

// Restore rebuilds a series from persisted points. Points must already be
// ordered; entries beyond capacity are trimmed oldest-first.
func Restore(interval model.Interval, capacity int, points []model.PricePoint) *Series {
	s := New(interval, capacity)
	if n := len(points); n > s.capacity {
		points = points[n-s.capacity:]
	}
	s.points = append(s.points, points...)
	return s
}

// Interval returns the series granularity.
func (s *Series) Interval() model.Interval { return s.interval }

// Len returns the current number of points.
func (s *Series) Len() int { return len(s.points) }

// Last returns the newest point, or false when the series is empty.
func (s *Series) Last() (model.PricePoint, bool) {
	if len(s.points) == 0 {
		return model.PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Append records one aggregate point. Timestamps must be strictly
// increasing and aligned to the interval width; violations leave the
// series unchanged and are reported to the caller. When the capacity is
// exceeded the oldest point is evicted.
func (s *Series) Append(ts time.Time, price int64) error {
	if ts.UnixNano()%int64(s.interval.Width()) != 0 {
		return fmt.Errorf("%w: %s series, got %s", ErrMisaligned, s.interval, ts.UTC().Format(time.RFC3339))
	}
	if last, ok := s.Last(); ok && !ts.After(last.Timestamp) {
		return fmt.Errorf("%w: %s series, last %s, got %s", ErrNotAfterLast,
			s.interval, last.Timestamp.UTC().Format(time.RFC3339), ts.UTC().Format(time.RFC3339))
	}
	s.points = append(s.points, model.PricePoint{Timestamp: ts.UTC(), Price: price})
	if len(s.points) > s.capacity {
		s.points = s.points[1:]
	}
	return nil
}

// Points returns a copy of the recorded points, oldest first.
func (s *Series) Points() []model.PricePoint {
	out := make([]model.PricePoint, len(s.points))
	copy(out, s.points)
	return out
}
