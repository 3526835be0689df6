package model

import "time"

// CycleReport summarizes one collection+aggregation cycle for the caller.
// Statistical anomalies (fallbacks, carry-forwards) are recoverable and
// listed per item; boundary violations indicate dropped appends.
type CycleReport struct {
	CycleTime          time.Time
	ItemsTracked       int
	Fallbacks          []string
	CarriedForward     []string
	BoundaryViolations int
	MarketTotal        int64
	MarketItems        int
}
