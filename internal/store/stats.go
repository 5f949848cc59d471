package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SystemStats represents row counts across the synced tables
type SystemStats struct {
	TotalBills           int        `json:"total_bills"`
	TotalRollCalls       int        `json:"total_roll_calls"`
	TotalVotePositions   int        `json:"total_vote_positions"`
	TotalRepresentatives int        `json:"total_representatives"`
	LatestVoteTimestamp  *time.Time `json:"latest_vote_timestamp"`
}

// StatsStore calculates system-wide counts over the synced tables
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore creates a new StatsStore
func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{db: db}
}

// Counts returns row counts for each synced table plus the timestamp
// of the most recent roll call seen.
func (s *StatsStore) Counts(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM bills),
			(SELECT COUNT(*) FROM roll_calls),
			(SELECT COUNT(*) FROM vote_positions),
			(SELECT COUNT(*) FROM representatives)
	`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalBills,
		&stats.TotalRollCalls,
		&stats.TotalVotePositions,
		&stats.TotalRepresentatives,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate system stats: %w", err)
	}

	var latest sql.NullTime
	err = s.db.QueryRowContext(ctx, `SELECT MAX(vote_timestamp) FROM roll_calls`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest vote timestamp: %w", err)
	}
	if latest.Valid {
		stats.LatestVoteTimestamp = &latest.Time
	}

	return stats, nil
}
