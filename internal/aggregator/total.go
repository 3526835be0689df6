package aggregator

import (
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// TotalValue derives the market-total series: the sum of every tracked
// item's representative price per cycle, fed through its own
// multi-resolution aggregator under the reserved market identity.
type TotalValue struct {
	multi *MultiResolution
}

// NewTotalValue wraps a multi-resolution aggregator for the market
// identity.
func NewTotalValue(multi *MultiResolution) *TotalValue {
	return &TotalValue{multi: multi}
}

// Feed sums the cycle's representative prices and feeds the scalar through
// the market aggregator. Carried-forward values count with their stale
// price; items never recorded are simply absent from reps. Returns the
// total, the number of items summed, and any boundary violations.
func (t *TotalValue) Feed(cycleTime time.Time, reps map[string]model.Representative) (int64, int, []error) {
	if len(reps) == 0 {
		return 0, 0, nil
	}
	var total int64
	for _, rep := range reps {
		total += rep.Price
	}
	violations := t.multi.Feed(model.Representative{
		ItemID:    model.MarketID,
		Timestamp: cycleTime.UTC().Truncate(model.CycleWidth),
		Price:     total,
	})
	return total, len(reps), violations
}

// Multi exposes the underlying market aggregator for persistence.
func (t *TotalValue) Multi() *MultiResolution {
	return t.multi
}
