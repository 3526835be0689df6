package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle telemetry to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the dashboard exporter can read while the tracker writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycle_runs (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_time          INTEGER NOT NULL,
			items_tracked       INTEGER,
			fallbacks           INTEGER,
			carried_forward     INTEGER,
			boundary_violations INTEGER,
			market_total        INTEGER,
			market_items        INTEGER,
			duration_ms         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_runs(cycle_time)`,

		`CREATE TABLE IF NOT EXISTS item_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_time INTEGER NOT NULL,
			item_id    TEXT NOT NULL,
			event_type TEXT NOT NULL,
			detail     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_ts ON item_events(cycle_time)`,
		`CREATE INDEX IF NOT EXISTS idx_event_item ON item_events(item_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycle_runs
		(cycle_time, items_tracked, fallbacks, carried_forward,
		 boundary_violations, market_total, market_items, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.CycleTime.Unix(), rec.ItemsTracked, rec.Fallbacks, rec.CarriedForward,
		rec.BoundaryViolations, rec.MarketTotal, rec.MarketItems,
		rec.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordItemEvent(evt *ItemEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO item_events
		(cycle_time, item_id, event_type, detail)
		VALUES (?,?,?,?)`,
		evt.CycleTime.Unix(), evt.ItemID, evt.EventType, evt.Detail,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
