// Package store persists the engine's derived state: one JSON history
// file per interval plus a tracker state file. A cycle's computation is
// committed in one logical step so a failed save can be retried whole.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// Store is the load-at-start/save-at-end persistence the engine relies on.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStore keeps history_<interval>.json files and tracker_state.json
// under a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// trackerState is the on-disk shape of everything outside the series
// records.
type trackerState struct {
	LastCycle time.Time                                   `json:"last_cycle"`
	Previous  map[string]model.Representative             `json:"previous"`
	Pending   map[string]map[model.Interval]PendingBucket `json:"pending"`
	UpdatedAt time.Time                                   `json:"last_updated"`
}

func (f *FileStore) historyPath(iv model.Interval) string {
	return filepath.Join(f.dir, fmt.Sprintf("history_%s.json", iv))
}

func (f *FileStore) statePath() string {
	return filepath.Join(f.dir, "tracker_state.json")
}

// Load reads the persisted state. Missing files yield an empty state so a
// fresh deployment starts cleanly.
func (f *FileStore) Load() (*State, error) {
	st := NewState()

	for _, iv := range model.Intervals {
		data, err := os.ReadFile(f.historyPath(iv))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s history: %w", iv, err)
		}
		recs := make(map[string]SeriesRecord)
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("parse %s history: %w", iv, err)
		}
		st.Series[iv] = recs
	}

	data, err := os.ReadFile(f.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read tracker state: %w", err)
	}
	var ts trackerState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("parse tracker state: %w", err)
	}
	st.LastCycle = ts.LastCycle
	if ts.Previous != nil {
		st.Previous = ts.Previous
	}
	if ts.Pending != nil {
		st.Pending = ts.Pending
	}
	return st, nil
}

// Save writes the full state. All files are written to temp paths first
// and renamed only after every write succeeded, so a failure leaves the
// previous state readable.
func (f *FileStore) Save(st *State) error {
	now := time.Now().UTC()
	type staged struct{ tmp, final string }
	var stages []staged

	fail := func(err error) error {
		for _, s := range stages {
			os.Remove(s.tmp)
		}
		return err
	}

	for _, iv := range model.Intervals {
		data, err := json.MarshalIndent(st.Series[iv], "", "  ")
		if err != nil {
			return fail(fmt.Errorf("marshal %s history: %w", iv, err))
		}
		final := f.historyPath(iv)
		tmp := final + ".tmp"
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			return fail(fmt.Errorf("write %s history: %w", iv, err))
		}
		stages = append(stages, staged{tmp, final})
	}

	ts := trackerState{
		LastCycle: st.LastCycle,
		Previous:  st.Previous,
		Pending:   st.Pending,
		UpdatedAt: now,
	}
	data, err := json.MarshalIndent(&ts, "", "  ")
	if err != nil {
		return fail(fmt.Errorf("marshal tracker state: %w", err))
	}
	tmp := f.statePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fail(fmt.Errorf("write tracker state: %w", err))
	}
	stages = append(stages, staged{tmp, f.statePath()})

	for _, s := range stages {
		if err := os.Rename(s.tmp, s.final); err != nil {
			return fail(fmt.Errorf("commit %s: %w", s.final, err))
		}
	}
	return nil
}
