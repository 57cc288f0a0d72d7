package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/srs"
)

// ProgressVersion is the version written by SaveProgress.
const ProgressVersion = 2

// Progress is the learner's running totals.
type Progress struct {
	Version      int        `json:"version"`
	XP           int        `json:"xp"`
	QuizzesTaken int        `json:"quizzesTaken"`
	Streak       srs.Streak `json:"streak"`
	Achievements []string   `json:"achievements"`
}

// NewProgress returns the record of a learner who has done nothing yet.
func NewProgress() Progress {
	return Progress{Version: ProgressVersion, Achievements: []string{}}
}

// progressV1 is the layout written before streaks tracked their longest run
// and today's count.
type progressV1 struct {
	XP            int         `json:"xp"`
	Streak        int         `json:"streak"`
	LastReviewDay domain.Date `json:"lastReviewDay"`
	Achievements  []string    `json:"achievements"`
}

// decodeProgress reads a stored record of any version and fills the fields
// its version lacked.
func decodeProgress(data []byte) (Progress, error) {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Progress{}, fmt.Errorf("failed to decode progress: %w", err)
	}

	var p Progress
	switch {
	case head.Version <= 1:
		var v1 progressV1
		if err := json.Unmarshal(data, &v1); err != nil {
			return Progress{}, fmt.Errorf("failed to decode v1 progress: %w", err)
		}
		p = Progress{
			XP: v1.XP,
			Streak: srs.Streak{
				Current: v1.Streak,
				Longest: v1.Streak,
				LastDay: v1.LastReviewDay,
			},
			Achievements: v1.Achievements,
		}
	case head.Version == ProgressVersion:
		if err := json.Unmarshal(data, &p); err != nil {
			return Progress{}, fmt.Errorf("failed to decode progress: %w", err)
		}
	default:
		return Progress{}, fmt.Errorf("progress version %d is newer than supported version %d", head.Version, ProgressVersion)
	}

	p.Version = ProgressVersion
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.Streak.Longest < p.Streak.Current {
		p.Streak.Longest = p.Streak.Current
	}
	return p, nil
}

// Progress loads the progress record, or a fresh one if none was saved.
func (db *DB) Progress(ctx context.Context) (Progress, error) {
	var data string
	err := db.conn.QueryRowContext(ctx, `SELECT data FROM progress WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return NewProgress(), nil
	}
	if err != nil {
		return Progress{}, fmt.Errorf("failed to load progress: %w", err)
	}
	return decodeProgress([]byte(data))
}

// SaveProgress stores p as the current progress record.
func (db *DB) SaveProgress(ctx context.Context, p Progress) error {
	return saveProgress(ctx, db.conn, p)
}

func saveProgress(ctx context.Context, ex execer, p Progress) error {
	p.Version = ProgressVersion
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO progress (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
