package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/aggregator"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/collector"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/config"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/recorder"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/scheduler"
	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] price tracker starting...")

	var (
		cfgPath string
		once    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config file (overrides CONFIG_PATH)")
	flag.BoolVar(&once, "once", false, "run a single aggregation cycle and exit")
	flag.Parse()

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			cfgPath = v
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher := collector.NewFileFetcher(cfg.Collector.SamplesFile)
	log.Printf("[INFO] sample source: %s", fetcher.Name())

	// Init series store
	st, err := store.NewFileStore(cfg.Storage.HistoryDir)
	if err != nil {
		log.Fatalf("[FATAL] init series store: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := aggregator.NewEngine(cfg, fetcher, st, rec)

	// One-shot mode for CI-style invocations: the scheduler lives outside
	// this process.
	if once {
		report, err := engine.RunCycle(ctx, time.Now())
		if err != nil {
			log.Fatalf("[FATAL] cycle failed: %v", err)
		}
		log.Printf("[INFO] cycle %s done: %d items, market total %d",
			report.CycleTime.Format(time.RFC3339), report.ItemsTracked, report.MarketTotal)
		return
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, engine)
	if err := sched.Register(cfg.Schedule.CycleCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing cycle now")
		go sched.RunCycleNow()
	}

	log.Println("[INFO] price tracker is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] price tracker stopped")
}
