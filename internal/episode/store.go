// Package episode persists the append-only log of scrape attempts in SQLite.
// Each record carries a stable UUID that the feedback interface uses as the
// join key for late-arriving human ratings.
package episode

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smartbook/scout/pkg/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
    id               TEXT PRIMARY KEY,
    created_at       TEXT NOT NULL,
    url              TEXT NOT NULL,
    state            TEXT NOT NULL,
    action           TEXT NOT NULL,
    success          INTEGER NOT NULL,
    elapsed_ms       INTEGER NOT NULL,
    quality          REAL NOT NULL,
    reward           REAL NOT NULL,
    estimate         REAL NOT NULL,
    rating           INTEGER,
    corrected_reward REAL
);
`

const stateActionIndex = `
CREATE INDEX IF NOT EXISTS idx_episodes_state_action
ON episodes(state, action);
`

// Store is a SQLite-backed episode log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the episode database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open episode db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create episodes table: %w", err)
	}
	if _, err := db.Exec(stateActionIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create episodes index: %w", err)
	}

	log.Debug().Str("path", path).Msg("Episode store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts a new episode record. Records are never updated afterwards
// except for the rating columns via SetRating.
func (s *Store) Append(ep *models.Episode) error {
	success := 0
	if ep.Success {
		success = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO episodes
		(id, created_at, url, state, action, success, elapsed_ms, quality, reward, estimate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID,
		ep.CreatedAt.Format(time.RFC3339Nano),
		ep.URL,
		ep.State,
		string(ep.Action),
		success,
		ep.Elapsed.Milliseconds(),
		ep.Quality,
		ep.Reward,
		ep.Estimate,
	)
	if err != nil {
		return fmt.Errorf("failed to append episode: %w", err)
	}
	return nil
}

// Get looks up an episode by ID. Unknown IDs report found=false, not an error.
func (s *Store) Get(id string) (*models.Episode, bool, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, url, state, action, success, elapsed_ms,
		       quality, reward, estimate, rating, corrected_reward
		FROM episodes WHERE id = ?`, id)

	ep, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read episode: %w", err)
	}
	return ep, true, nil
}

// SetRating records a human rating and the recomputed reward on an episode.
func (s *Store) SetRating(id string, rating int, correctedReward float64) error {
	res, err := s.db.Exec(`
		UPDATE episodes SET rating = ?, corrected_reward = ? WHERE id = ?`,
		rating, correctedReward, id)
	if err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("episode %s not found", id)
	}
	return nil
}

// Recent returns up to n episodes, newest first.
func (s *Store) Recent(n int) ([]models.Episode, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, url, state, action, success, elapsed_ms,
		       quality, reward, estimate, rating, corrected_reward
		FROM episodes ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, *ep)
	}
	return episodes, rows.Err()
}

// Stats summarizes the episode log.
type Stats struct {
	Total       int                   `json:"total"`
	Successes   int                   `json:"successes"`
	SuccessRate float64               `json:"success_rate"`
	AvgReward   float64               `json:"avg_reward"`
	AvgQuality  float64               `json:"avg_quality"`
	Rated       int                   `json:"rated"`
	ByAction    map[models.Action]int `json:"by_action"`
}

// Stats aggregates success rate, average reward/quality, and per-action usage.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{ByAction: make(map[models.Action]int)}

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(AVG(reward), 0),
		       COALESCE(AVG(quality), 0),
		       COALESCE(SUM(CASE WHEN rating IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM episodes`)
	if err := row.Scan(&stats.Total, &stats.Successes, &stats.AvgReward, &stats.AvgQuality, &stats.Rated); err != nil {
		return nil, fmt.Errorf("failed to aggregate episodes: %w", err)
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.Total)
	}

	rows, err := s.db.Query(`SELECT action, COUNT(*) FROM episodes GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[models.Action(action)] = count
	}
	return stats, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (*models.Episode, error) {
	var ep models.Episode
	var createdAt string
	var action string
	var success int
	var elapsedMS int64
	var rating sql.NullInt64
	var corrected sql.NullFloat64

	err := row.Scan(&ep.ID, &createdAt, &ep.URL, &ep.State, &action, &success,
		&elapsedMS, &ep.Quality, &ep.Reward, &ep.Estimate, &rating, &corrected)
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid episode timestamp %q: %w", createdAt, err)
	}
	ep.CreatedAt = ts
	ep.Action = models.Action(action)
	ep.Success = success != 0
	ep.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if rating.Valid {
		r := int(rating.Int64)
		ep.Rating = &r
	}
	if corrected.Valid {
		c := corrected.Float64
		ep.CorrectedReward = &c
	}
	return &ep, nil
}
