package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/collector"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/config"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/recorder"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/store"
)

// ErrStaleCycle is returned when the current 30-minute bucket was already
// aggregated, so a retried or double-fired run is a safe no-op.
var ErrStaleCycle = errors.New("cycle already aggregated")

// Engine runs one collection+aggregation cycle: load persisted state,
// process exactly one batch of raw samples, commit the updated state.
// Statistical anomalies are recovered locally; only collection and
// persistence failures abort the cycle, leaving state untouched.
type Engine struct {
	fetcher    collector.Fetcher
	store      store.Store
	recorder   recorder.Recorder
	bucket     *BucketAggregator
	capacities map[model.Interval]int
}

// NewEngine wires the engine from config and collaborators.
func NewEngine(cfg *config.Config, fetcher collector.Fetcher, st store.Store, rec recorder.Recorder) *Engine {
	return &Engine{
		fetcher:  fetcher,
		store:    st,
		recorder: rec,
		bucket:   NewBucketAggregator(cfg.Filter),
		capacities: map[model.Interval]int{
			model.Interval1h:  cfg.Series.Capacity1h,
			model.Interval12h: cfg.Series.Capacity12h,
			model.Interval24h: cfg.Series.Capacity24h,
		},
	}
}

// RunCycle executes the cycle whose bucket contains now. All computation
// happens on the in-memory state; the store commits it in one step, so a
// failed save means the whole cycle can be retried on the next schedule.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) (*model.CycleReport, error) {
	started := time.Now()
	cycleTime := now.UTC().Truncate(model.CycleWidth)

	state, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !cycleTime.After(state.LastCycle) {
		return nil, fmt.Errorf("%w: %s", ErrStaleCycle, cycleTime.Format(time.RFC3339))
	}

	raw, err := e.fetcher.FetchSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect samples: %w", err)
	}

	reps := e.bucket.AggregateCycle(raw, state.Previous, cycleTime)

	report := &model.CycleReport{CycleTime: cycleTime, ItemsTracked: len(reps)}
	var events []recorder.ItemEvent

	ids := make([]string, 0, len(reps))
	for id := range reps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rep := reps[id]
		if rep.Fallback {
			report.Fallbacks = append(report.Fallbacks, id)
			events = append(events, recorder.ItemEvent{CycleTime: cycleTime, ItemID: id, EventType: "FALLBACK"})
		}
		if rep.Carried {
			report.CarriedForward = append(report.CarriedForward, id)
			events = append(events, recorder.ItemEvent{CycleTime: cycleTime, ItemID: id, EventType: "CARRY_FORWARD"})
		}

		multi := RestoreMultiResolution(id, state, e.capacities)
		for _, v := range multi.Feed(rep) {
			log.Printf("[WARN] boundary violation for %s: %v", id, v)
			report.BoundaryViolations++
			events = append(events, recorder.ItemEvent{CycleTime: cycleTime, ItemID: id, EventType: "BOUNDARY_VIOLATION", Detail: v.Error()})
		}
		multi.SaveTo(state, cycleTime)
	}

	market := NewTotalValue(RestoreMultiResolution(model.MarketID, state, e.capacities))
	total, counted, violations := market.Feed(cycleTime, reps)
	report.MarketTotal = total
	report.MarketItems = counted
	for _, v := range violations {
		log.Printf("[WARN] boundary violation for %s: %v", model.MarketID, v)
		report.BoundaryViolations++
		events = append(events, recorder.ItemEvent{CycleTime: cycleTime, ItemID: model.MarketID, EventType: "BOUNDARY_VIOLATION", Detail: v.Error()})
	}
	market.Multi().SaveTo(state, cycleTime)

	state.Previous = reps
	state.LastCycle = cycleTime
	if err := e.store.Save(state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	// Telemetry is best-effort once the state is committed.
	if err := e.recorder.RecordCycle(&recorder.CycleRecord{
		CycleTime:          cycleTime,
		ItemsTracked:       report.ItemsTracked,
		Fallbacks:          len(report.Fallbacks),
		CarriedForward:     len(report.CarriedForward),
		BoundaryViolations: report.BoundaryViolations,
		MarketTotal:        report.MarketTotal,
		MarketItems:        report.MarketItems,
		Duration:           time.Since(started),
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	for i := range events {
		if err := e.recorder.RecordItemEvent(&events[i]); err != nil {
			log.Printf("[ERROR] record item event: %v", err)
			break
		}
	}

	return report, nil
}
