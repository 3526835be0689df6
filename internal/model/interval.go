package model

import "time"

// Interval is one of the three series granularities.
type Interval string

const (
	Interval1h  Interval = "1h"
	Interval12h Interval = "12h"
	Interval24h Interval = "24h"
)

// Intervals lists all granularities, finest first.
var Intervals = []Interval{Interval1h, Interval12h, Interval24h}

// Width returns the bucket width of the interval.
func (i Interval) Width() time.Duration {
	switch i {
	case Interval1h:
		return time.Hour
	case Interval12h:
		return 12 * time.Hour
	case Interval24h:
		return 24 * time.Hour
	}
	return 0
}

// DefaultCapacity returns the default bounded-series capacity:
// one week of hours, one month of half-days, one year of days.
func (i Interval) DefaultCapacity() int {
	switch i {
	case Interval1h:
		return 168
	case Interval12h:
		return 60
	case Interval24h:
		return 365
	}
	return 0
}

// SubCycles returns how many 30-minute cycles make up one full bucket.
func (i Interval) SubCycles() int {
	return int(i.Width() / CycleWidth)
}
