// Package storage persists learner progress in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/srs"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn   *sql.DB
	params srs.Params
}

// Option configures a DB.
type Option func(*DB)

// WithParams sets the scheduler parameters used to forward-fill card states
// written by older versions.
func WithParams(p srs.Params) Option {
	return func(db *DB) { db.params = p }
}

// Open creates a new database connection and migrates the schema to the
// latest version.
func Open(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, params: srs.DefaultParams()}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.migrate(ctx, len(migrations)); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Version returns the schema version recorded in the database.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	if err := db.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// migrate applies the pending migrations up to target in one transaction.
func (db *DB) migrate(ctx context.Context, target int) error {
	current, err := db.Version(ctx)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, len(migrations))
	}
	if current >= target {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for v := current; v < target; v++ {
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", v+1, err)
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

const cardStateColumns = `card_id, interval, next_review, ease_factor, reviews, lapses, last_review, last_rating`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCardState reads one card_states row. NULL columns come back as zero
// values and are then forward-filled.
func (db *DB) scanCardState(row rowScanner, today domain.Date) (srs.CardState, error) {
	var (
		cs                        srs.CardState
		interval, reviews, lapses sql.NullInt64
		lastRating                sql.NullInt64
		ease                      sql.NullFloat64
	)
	if err := row.Scan(
		&cs.CardID,
		&interval,
		&cs.NextReview,
		&ease,
		&reviews,
		&lapses,
		&cs.LastReview,
		&lastRating,
	); err != nil {
		return cs, err
	}
	cs.Interval = int(interval.Int64)
	cs.EaseFactor = ease.Float64
	cs.Reviews = int(reviews.Int64)
	cs.Lapses = int(lapses.Int64)
	cs.LastRating = srs.Rating(lastRating.Int64)
	return cs.Normalize(db.params, today), nil
}

// CardState retrieves a card's scheduling state by id.
func (db *DB) CardState(ctx context.Context, cardID string, today domain.Date) (*srs.CardState, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardStateColumns+` FROM card_states WHERE card_id = ?`, cardID)
	cs, err := db.scanCardState(row, today)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card state %s: %w", cardID, err)
	}
	return &cs, nil
}

// CardStates retrieves every stored card state.
func (db *DB) CardStates(ctx context.Context, today domain.Date) ([]srs.CardState, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+cardStateColumns+` FROM card_states ORDER BY card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get card states: %w", err)
	}
	defer rows.Close()

	var states []srs.CardState
	for rows.Next() {
		cs, err := db.scanCardState(rows, today)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card state row: %w", err)
		}
		states = append(states, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card states: %w", err)
	}
	return states, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertCardState(ctx context.Context, ex execer, cs srs.CardState) error {
	var lastRating any
	if cs.LastRating != 0 {
		lastRating = int(cs.LastRating)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO card_states (`+cardStateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			interval = excluded.interval,
			next_review = excluded.next_review,
			ease_factor = excluded.ease_factor,
			reviews = excluded.reviews,
			lapses = excluded.lapses,
			last_review = excluded.last_review,
			last_rating = excluded.last_rating
	`,
		cs.CardID,
		cs.Interval,
		cs.NextReview,
		cs.EaseFactor,
		cs.Reviews,
		cs.Lapses,
		cs.LastReview,
		lastRating,
	)
	if err != nil {
		return fmt.Errorf("failed to save card state %s: %w", cs.CardID, err)
	}
	return nil
}

// SaveCardState inserts or replaces a card's scheduling state.
func (db *DB) SaveCardState(ctx context.Context, cs srs.CardState) error {
	return upsertCardState(ctx, db.conn, cs)
}

// CreateCardStates inserts the states whose cards have none yet and leaves
// existing ones untouched. It returns how many were created.
func (db *DB) CreateCardStates(ctx context.Context, states []srs.CardState) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for _, cs := range states {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO card_states (card_id, interval, next_review, ease_factor, reviews, lapses)
			VALUES (?, ?, ?, ?, ?, ?)
		`, cs.CardID, cs.Interval, cs.NextReview, cs.EaseFactor, cs.Reviews, cs.Lapses)
		if err != nil {
			return 0, fmt.Errorf("failed to create card state %s: %w", cs.CardID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count created card states: %w", err)
		}
		created += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit card states: %w", err)
	}
	return created, nil
}

// ReviewEntry is one row of the review log.
type ReviewEntry struct {
	CardID     string
	Rating     srs.Rating
	ReviewedOn domain.Date
	Interval   int
}

// ApplyReview saves the reviewed card's new state, appends the review to the
// log and stores the updated progress record in one transaction.
func (db *DB) ApplyReview(ctx context.Context, cs srs.CardState, entry ReviewEntry, p Progress) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertCardState(ctx, tx, cs); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_log (card_id, rating, reviewed_on, interval)
		VALUES (?, ?, ?, ?)
	`, entry.CardID, int(entry.Rating), entry.ReviewedOn, entry.Interval); err != nil {
		return fmt.Errorf("failed to log review of %s: %w", entry.CardID, err)
	}
	if err := saveProgress(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review of %s: %w", entry.CardID, err)
	}
	return nil
}

// ReviewDays returns each distinct day with at least one review, oldest first.
func (db *DB) ReviewDays(ctx context.Context) ([]domain.Date, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT reviewed_on FROM review_log ORDER BY reviewed_on`)
	if err != nil {
		return nil, fmt.Errorf("failed to get review days: %w", err)
	}
	defer rows.Close()

	var days []domain.Date
	for rows.Next() {
		var d domain.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan review day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// CountReviewsOn returns how many reviews were logged on day.
func (db *DB) CountReviewsOn(ctx context.Context, day domain.Date) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_log WHERE reviewed_on = ?`, day).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews on %s: %w", day, err)
	}
	return n, nil
}

// MarkViewed records that the learner opened a content item. It reports
// whether this was the first view.
func (db *DB) MarkViewed(ctx context.Context, contentID string, at time.Time) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO viewed (content_id, viewed_at) VALUES (?, ?)
	`, contentID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to mark %s viewed: %w", contentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s viewed: %w", contentID, err)
	}
	return n == 1, nil
}

// Viewed returns the ids of viewed content in the order they were first opened.
func (db *DB) Viewed(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT content_id FROM viewed ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to get viewed content: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan viewed row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
