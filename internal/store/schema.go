package store

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates all tables needed by the service.
// Safe to call multiple times - uses IF NOT EXISTS.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Bills, keyed by (congress, bill_type, bill_number)
CREATE TABLE IF NOT EXISTS bills (
    id BIGSERIAL PRIMARY KEY,
    congress INTEGER NOT NULL,
    bill_type TEXT NOT NULL,
    bill_number INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    latest_action_text TEXT,
    latest_action_date TIMESTAMPTZ,
    policy_area TEXT,
    source_url TEXT,
    last_fetched_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (congress, bill_type, bill_number)
);

-- Roll calls, keyed by (congress, session_number, chamber, roll_call_number)
CREATE TABLE IF NOT EXISTS roll_calls (
    id BIGSERIAL PRIMARY KEY,
    congress INTEGER NOT NULL,
    session_number INTEGER NOT NULL,
    chamber TEXT NOT NULL CHECK (chamber IN ('House', 'Senate')),
    roll_call_number INTEGER NOT NULL,
    vote_timestamp TIMESTAMPTZ NOT NULL,
    question_text TEXT,
    description TEXT,
    result TEXT,
    bill_id BIGINT REFERENCES bills(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (congress, session_number, chamber, roll_call_number)
);

CREATE INDEX IF NOT EXISTS idx_roll_calls_vote_timestamp ON roll_calls(vote_timestamp DESC);

-- Representatives, populated by a separate ingestion process
CREATE TABLE IF NOT EXISTS representatives (
    rep_id UUID PRIMARY KEY,
    bioguide_id TEXT UNIQUE,
    full_name TEXT NOT NULL,
    party TEXT,
    photo_url TEXT,
    chamber TEXT,
    state_code TEXT,
    district TEXT
);

-- Per-member positions, keyed by (roll_call_id, rep_id)
CREATE TABLE IF NOT EXISTS vote_positions (
    id BIGSERIAL PRIMARY KEY,
    roll_call_id BIGINT NOT NULL REFERENCES roll_calls(id),
    rep_id UUID NOT NULL REFERENCES representatives(rep_id),
    position TEXT NOT NULL CHECK (position IN ('Yea', 'Nay', 'Present', 'Not Voting')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (roll_call_id, rep_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_positions_rep_id ON vote_positions(rep_id);

-- Which representatives each user follows
CREATE TABLE IF NOT EXISTS followed_representatives (
    user_id UUID NOT NULL,
    rep_id UUID NOT NULL REFERENCES representatives(rep_id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, rep_id)
);
`
