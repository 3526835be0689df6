package store

import (
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// SeriesRecord is the persisted form of one (identity, interval) series.
type SeriesRecord struct {
	ItemID    string             `json:"item_id"`
	Interval  model.Interval     `json:"interval"`
	Points    []model.PricePoint `json:"points"`
	UpdatedAt time.Time          `json:"last_updated"`
}

// PendingBucket is a coarse bucket still being filled with 30-minute
// sub-points. It is persisted so one-shot runs keep mid-bucket progress.
type PendingBucket struct {
	Start  time.Time `json:"start"`
	Prices []int64   `json:"prices"`
}

// State is everything the engine persists between cycles. Series records
// are keyed interval-first to mirror the per-interval history files; the
// market-total series lives under the reserved model.MarketID key.
type State struct {
	LastCycle time.Time
	Previous  map[string]model.Representative
	Series    map[model.Interval]map[string]SeriesRecord
	Pending   map[string]map[model.Interval]PendingBucket
}

// NewState returns an empty, fully initialized state.
func NewState() *State {
	st := &State{
		Previous: make(map[string]model.Representative),
		Series:   make(map[model.Interval]map[string]SeriesRecord),
		Pending:  make(map[string]map[model.Interval]PendingBucket),
	}
	for _, iv := range model.Intervals {
		st.Series[iv] = make(map[string]SeriesRecord)
	}
	return st
}

// SeriesFor returns the persisted points for one identity and interval,
// or nil when none were recorded yet.
func (s *State) SeriesFor(id string, iv model.Interval) []model.PricePoint {
	if recs, ok := s.Series[iv]; ok {
		return recs[id].Points
	}
	return nil
}

// PendingFor returns the pending bucket for one identity and interval.
func (s *State) PendingFor(id string, iv model.Interval) (PendingBucket, bool) {
	pb, ok := s.Pending[id][iv]
	return pb, ok
}

// PutSeries stores the points of one identity and interval.
func (s *State) PutSeries(id string, iv model.Interval, points []model.PricePoint, now time.Time) {
	if s.Series[iv] == nil {
		s.Series[iv] = make(map[string]SeriesRecord)
	}
	s.Series[iv][id] = SeriesRecord{ItemID: id, Interval: iv, Points: points, UpdatedAt: now}
}

// PutPending stores or clears the pending bucket of one identity and
// interval.
func (s *State) PutPending(id string, iv model.Interval, pb *PendingBucket) {
	if pb == nil {
		delete(s.Pending[id], iv)
		if len(s.Pending[id]) == 0 {
			delete(s.Pending, id)
		}
		return
	}
	if s.Pending[id] == nil {
		s.Pending[id] = make(map[model.Interval]PendingBucket)
	}
	s.Pending[id][iv] = *pb
}
