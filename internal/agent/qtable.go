// internal/agent/qtable.go
package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smartbook/scout/pkg/models"
)

// snapshotVersion tags the persisted schema. Restore rejects any other version
// so a future state or action-set change is detected instead of misread.
const snapshotVersion = 1

// Entry holds the running value estimate and visit count for one (state, action)
// pair. Visits is monotonically non-decreasing; the estimate only changes through
// the learner's update rule.
type Entry struct {
	Estimate float64 `json:"estimate"`
	Visits   int     `json:"visits"`
}

// Table is the value table mapping (state, action) to expected-reward estimates.
//
// It is the single shared mutable resource of the agent: all access goes through
// its methods, which serialize same-key read-modify-write sequences so the
// incremental-mean update is never computed from a stale estimate.
type Table struct {
	mu      sync.RWMutex
	entries map[StateKey]map[models.Action]*Entry
	prior   float64
}

// NewTable creates an empty value table. New entries are initialized to prior
// on first visit.
func NewTable(prior float64) *Table {
	return &Table{
		entries: make(map[StateKey]map[models.Action]*Entry),
		prior:   prior,
	}
}

// Get returns a copy of the entry for (state, action), creating it with the
// configured prior if absent.
func (t *Table) Get(state StateKey, action models.Action) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.entry(state, action)
}

// Estimate returns the current estimate for (state, action) without creating an
// entry. Absent pairs report the prior.
func (t *Table) Estimate(state StateKey, action models.Action) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row, ok := t.entries[state]; ok {
		if e, ok := row[action]; ok {
			return e.Estimate
		}
	}
	return t.prior
}

// apply runs fn on the entry for (state, action) under the table lock and
// returns the resulting entry. The read-modify-write is atomic, so concurrent
// learners targeting the same key serialize cleanly.
func (t *Table) apply(state StateKey, action models.Action, fn func(e *Entry)) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entry(state, action)
	fn(e)
	return *e
}

// entry returns the live entry for (state, action), lazily created. Caller must
// hold t.mu.
func (t *Table) entry(state StateKey, action models.Action) *Entry {
	row, ok := t.entries[state]
	if !ok {
		row = make(map[models.Action]*Entry)
		t.entries[state] = row
	}
	e, ok := row[action]
	if !ok {
		e = &Entry{Estimate: t.prior}
		row[action] = e
	}
	return e
}

// Len returns the number of known states.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// snapshot is the serialized form of the table.
type snapshot struct {
	Version int                         `json:"version"`
	SavedAt time.Time                   `json:"saved_at"`
	Entries map[string]map[string]Entry `json:"entries"`
}

// Snapshot serializes the table. It holds the lock for the duration, so a
// snapshot is never taken mid-update.
func (t *Table) Snapshot() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Entries: make(map[string]map[string]Entry, len(t.entries)),
	}
	for state, row := range t.entries {
		out := make(map[string]Entry, len(row))
		for action, e := range row {
			out[string(action)] = *e
		}
		snap.Entries[string(state)] = out
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Restore replaces the table contents from a snapshot produced by Snapshot.
//
// The load is all-or-nothing: a corrupt payload, a version mismatch, or an
// unknown action name fails with ErrDataCorruption and leaves the table
// untouched. Callers are expected to fall back to an empty table and report a
// warning.
func (t *Table) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: snapshot version %d, want %d", ErrDataCorruption, snap.Version, snapshotVersion)
	}

	entries := make(map[StateKey]map[models.Action]*Entry, len(snap.Entries))
	for state, row := range snap.Entries {
		in := make(map[models.Action]*Entry, len(row))
		for action, e := range row {
			if !models.Action(action).Valid() {
				return fmt.Errorf("%w: unknown action %q", ErrDataCorruption, action)
			}
			if e.Visits < 0 {
				return fmt.Errorf("%w: negative visit count for %q/%q", ErrDataCorruption, state, action)
			}
			entry := e
			in[models.Action(action)] = &entry
		}
		entries[StateKey(state)] = in
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
	return nil
}

// SaveFile writes a snapshot to path atomically (temp file + rename).
func (t *Table) SaveFile(path string) error {
	data, err := t.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot value table: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write value table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace value table: %w", err)
	}

	log.Debug().Str("path", path).Int("states", t.Len()).Msg("Value table saved")
	return nil
}

// LoadFile restores the table from path. A missing file leaves the table empty
// and is not an error; a corrupt file is reported as a warning and the table
// stays empty rather than half-populated.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("No value table found, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read value table: %w", err)
	}

	if err := t.Restore(data); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Value table snapshot rejected, starting empty")
		return err
	}

	log.Info().Str("path", path).Int("states", t.Len()).Msg("Value table loaded")
	return nil
}
