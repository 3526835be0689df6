package recorder

import "time"

// CycleRecord summarizes one completed collection+aggregation cycle.
type CycleRecord struct {
	CycleTime          time.Time
	ItemsTracked       int
	Fallbacks          int
	CarriedForward     int
	BoundaryViolations int
	MarketTotal        int64
	MarketItems        int
	Duration           time.Duration
}

// ItemEvent records a per-item anomaly signal: a fallback, a carry-forward
// or a boundary violation. None of these fail the cycle; they exist so the
// operator can spot items that stopped scraping cleanly.
type ItemEvent struct {
	CycleTime time.Time
	ItemID    string
	EventType string // "FALLBACK", "CARRY_FORWARD" or "BOUNDARY_VIOLATION"
	Detail    string
}

// Recorder persists cycle telemetry for analysis.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordItemEvent(evt *ItemEvent) error
	Close() error
}
