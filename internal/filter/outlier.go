// Package filter implements the staged outlier rejection pipeline applied
// to one item's raw price samples within a single collection cycle.
package filter

import (
	"math"
	"sort"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/config"
)

// Result is the outcome of filtering one item's cycle samples.
// Accepted is always sorted ascending. When FallbackUsed is set the
// pipeline was cut short by the minimum-sample gate and Accepted holds the
// absolute-floor survivors (possibly empty), so the caller can substitute
// the previous representative or fall back to their raw median.
type Result struct {
	Accepted     []int64
	FallbackUsed bool
}

// Representative returns the outlier-robust representative price of the
// accepted set (its median), or false when the set is empty.
func (r Result) Representative() (int64, bool) {
	if len(r.Accepted) == 0 {
		return 0, false
	}
	return int64(math.Round(median(r.Accepted))), true
}

// Filter runs the rejection stages in order: absolute floor, median-ratio
// bound, IQR bound, final ratio cap. The minimum-sample gate is re-checked
// after each rejecting stage (inclusive: exactly MinimumDataPoints
// survivors pass). Deterministic for identical inputs regardless of input
// order.
func Filter(prices []int64, cfg config.FilterConfig) Result {
	// Stage 1: absolute floor screens scraping artifacts.
	floored := make([]int64, 0, len(prices))
	for _, p := range prices {
		if p >= cfg.MinimumPriceThreshold {
			floored = append(floored, p)
		}
	}
	sort.Slice(floored, func(i, j int) bool { return floored[i] < floored[j] })

	if len(floored) < cfg.MinimumDataPoints {
		return Result{Accepted: floored, FallbackUsed: true}
	}

	// Stage 2: median-ratio bound.
	med := median(floored)
	ratioBound := make([]int64, 0, len(floored))
	for _, p := range floored {
		if float64(p) >= med/cfg.MedianMinRatio && float64(p) <= med*cfg.MedianMaxRatio {
			ratioBound = append(ratioBound, p)
		}
	}
	if len(ratioBound) < cfg.MinimumDataPoints {
		return Result{Accepted: floored, FallbackUsed: true}
	}

	// Stage 3: IQR bound with linear-interpolation quartiles.
	q1 := quantile(ratioBound, 0.25)
	q3 := quantile(ratioBound, 0.75)
	iqr := q3 - q1
	lo := q1 - cfg.IQRMultiplier*iqr
	hi := q3 + cfg.IQRMultiplier*iqr
	iqrBound := make([]int64, 0, len(ratioBound))
	for _, p := range ratioBound {
		if float64(p) >= lo && float64(p) <= hi {
			iqrBound = append(iqrBound, p)
		}
	}
	if len(iqrBound) < cfg.MinimumDataPoints {
		return Result{Accepted: floored, FallbackUsed: true}
	}

	// Stage 4: final ratio cap. Shed the single most extreme survivor
	// (furthest in log-ratio from the median, ties toward the high side)
	// until max/min holds or one value remains.
	final := iqrBound
	for len(final) > 1 && float64(final[len(final)-1]) > cfg.FinalPriceRatio*float64(final[0]) {
		m := median(final)
		dLow := math.Abs(math.Log(float64(final[0]) / m))
		dHigh := math.Abs(math.Log(float64(final[len(final)-1]) / m))
		if dHigh >= dLow {
			final = final[:len(final)-1]
		} else {
			final = final[1:]
		}
	}

	return Result{Accepted: final}
}
