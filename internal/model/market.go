package model

import "time"

// CycleWidth is the raw collection cadence. Every representative price is
// stamped on a boundary of this width.
const CycleWidth = 30 * time.Minute

// MarketID is the reserved synthetic identity for the total-market series.
// Item ids coming from the collector never collide with it.
const MarketID = "market"

// RawSample is a single scraped price observation for one item.
// Timestamps are capture times and need not be unique or ordered.
type RawSample struct {
	ItemID    string
	Timestamp time.Time
	Price     int64
}

// PricePoint is one entry of a persisted series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     int64     `json:"price"`
}

// Representative is the single accepted price of one item for one
// 30-minute cycle. Timestamp is the cycle's bucket boundary, not the
// wall-clock capture time.
type Representative struct {
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
	Price     int64     `json:"price"`
	Fallback  bool      `json:"fallback,omitempty"`
	Carried   bool      `json:"carried,omitempty"`
}
