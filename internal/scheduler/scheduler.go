package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/aggregator"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers the collection+aggregation cycle on its cron
// schedule. The engine is invoked, not self-triggering.
type Scheduler struct {
	Cron   *cron.Cron
	Engine *aggregator.Engine
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, engine *aggregator.Engine) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: engine,
		Ctx:    ctx,
	}
}

// Register registers the cycle task.
func (s *Scheduler) Register(cycleCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes the cycle task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

func (s *Scheduler) cycleTask() {
	log.Println("[INFO] running aggregation cycle")
	report, err := s.Engine.RunCycle(s.Ctx, time.Now())
	if err != nil {
		if errors.Is(err, aggregator.ErrStaleCycle) {
			log.Printf("[WARN] cycle skipped: %v", err)
			return
		}
		// A failed cycle is a no-op; the next schedule retries it.
		log.Printf("[ERROR] cycle failed: %v", err)
		return
	}
	log.Printf("[INFO] cycle %s done: %d items, %d fallbacks, %d carried forward, %d boundary violations, market total %d (%d items)",
		report.CycleTime.Format(time.RFC3339), report.ItemsTracked,
		len(report.Fallbacks), len(report.CarriedForward),
		report.BoundaryViolations, report.MarketTotal, report.MarketItems)
}
