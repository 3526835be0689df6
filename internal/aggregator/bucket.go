// Package aggregator turns one cycle's raw samples into representative
// prices and maintains the multi-resolution series derived from them.
package aggregator

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/config"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/filter"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// BucketAggregator collapses a cycle's raw sample sets into one
// representative price per item.
type BucketAggregator struct {
	cfg     config.FilterConfig
	workers int
}

// NewBucketAggregator creates an aggregator filtering with the given
// thresholds.
func NewBucketAggregator(cfg config.FilterConfig) *BucketAggregator {
	return &BucketAggregator{cfg: cfg, workers: runtime.NumCPU()}
}

// AggregateCycle filters every item's samples independently and stamps the
// results with the cycle's canonical 30-minute boundary. Items absent from
// the raw input carry forward their previous representative unchanged.
// Items with sparse data fall back to the previous representative, or to
// the raw median of the floor survivors when none exists yet; items with
// neither are skipped. Filtering fans out over a fixed worker pool: items
// are disjoint state, so workers only share the job index channel.
func (b *BucketAggregator) AggregateCycle(raw map[string][]model.RawSample, previous map[string]model.Representative, cycleTime time.Time) map[string]model.Representative {
	cycleTime = cycleTime.UTC().Truncate(model.CycleWidth)

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]*model.Representative, len(ids))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := b.workers
	if workers > len(ids) {
		workers = len(ids)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.aggregateItem(ids[i], raw[ids[i]], previous, cycleTime)
			}
		}()
	}
	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	reps := make(map[string]model.Representative, len(ids))
	for _, rep := range results {
		if rep != nil {
			reps[rep.ItemID] = *rep
		}
	}

	// Carry forward items that transiently failed to scrape.
	for id, prev := range previous {
		if _, ok := reps[id]; ok {
			continue
		}
		reps[id] = model.Representative{
			ItemID:    id,
			Timestamp: cycleTime,
			Price:     prev.Price,
			Carried:   true,
		}
	}
	return reps
}

func (b *BucketAggregator) aggregateItem(id string, samples []model.RawSample, previous map[string]model.Representative, cycleTime time.Time) *model.Representative {
	prices := make([]int64, len(samples))
	for i, s := range samples {
		prices[i] = s.Price
	}

	res := filter.Filter(prices, b.cfg)
	if !res.FallbackUsed {
		price, _ := res.Representative()
		return &model.Representative{ItemID: id, Timestamp: cycleTime, Price: price}
	}
	if prev, ok := previous[id]; ok {
		return &model.Representative{ItemID: id, Timestamp: cycleTime, Price: prev.Price, Fallback: true}
	}
	// No history yet: the raw median of the floor survivors is the best
	// available estimate.
	if price, ok := res.Representative(); ok {
		return &model.Representative{ItemID: id, Timestamp: cycleTime, Price: price, Fallback: true}
	}
	return nil
}
