package storage

// migrations are applied in order; PRAGMA user_version records how many have
// run. Append new steps, never edit old ones.
var migrations = []string{
	// 1: initial layout.
	`
-- 'card_states' holds the scheduling state of every minted review card.
CREATE TABLE IF NOT EXISTS card_states (
    card_id TEXT PRIMARY KEY,
    interval INTEGER,
    next_review TEXT,
    ease_factor REAL,
    reviews INTEGER
);

-- 'review_log' is an append-only record of every rating given.
CREATE TABLE IF NOT EXISTS review_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    rating INTEGER NOT NULL,
    reviewed_on TEXT NOT NULL,
    interval INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS review_log_reviewed_on ON review_log(reviewed_on);

-- 'viewed' lists the entities and stories the learner has opened, in order.
CREATE TABLE IF NOT EXISTS viewed (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    content_id TEXT NOT NULL UNIQUE,
    viewed_at DATETIME NOT NULL
);

-- 'progress' is a single versioned JSON record.
CREATE TABLE IF NOT EXISTS progress (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    data TEXT NOT NULL
);
`,
	// 2: lapse tracking. Rows written before this step read NULL and are
	// forward-filled on load.
	`
ALTER TABLE card_states ADD COLUMN lapses INTEGER;
ALTER TABLE card_states ADD COLUMN last_review TEXT;
ALTER TABLE card_states ADD COLUMN last_rating INTEGER;
`,
}
