package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jshaw/civicfeed/internal/model"
)

// RollCallStore handles database operations for roll calls and the
// per-member positions that hang off them
type RollCallStore struct {
	db *sql.DB
}

// NewRollCallStore creates a new RollCallStore
func NewRollCallStore(db *sql.DB) *RollCallStore {
	return &RollCallStore{db: db}
}

// UpsertRollCalls inserts or updates a batch of roll calls keyed on
// (congress, session_number, chamber, roll_call_number). The returned
// slice carries the store-assigned id for every row, existing or new,
// so the caller can link positions to them.
func (s *RollCallStore) UpsertRollCalls(ctx context.Context, rollCalls []model.RollCall) ([]model.RollCall, error) {
	if len(rollCalls) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO roll_calls (congress, session_number, chamber, roll_call_number,
		                        vote_timestamp, question_text, description, result, bill_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (congress, session_number, chamber, roll_call_number) DO UPDATE SET
			vote_timestamp = EXCLUDED.vote_timestamp,
			question_text = EXCLUDED.question_text,
			description = EXCLUDED.description,
			result = EXCLUDED.result,
			bill_id = EXCLUDED.bill_id
		RETURNING id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare roll call upsert: %w", err)
	}
	defer stmt.Close()

	out := make([]model.RollCall, 0, len(rollCalls))
	for _, rc := range rollCalls {
		err := stmt.QueryRowContext(ctx,
			rc.Congress,
			rc.SessionNumber,
			rc.Chamber,
			rc.RollCallNumber,
			rc.VoteTimestamp,
			rc.QuestionText,
			rc.Description,
			rc.Result,
			rc.BillID,
		).Scan(&rc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert roll call %s: %w", rc.Key(), err)
		}
		out = append(out, rc)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit roll call upsert: %w", err)
	}

	return out, nil
}

// UpsertVotePositions inserts or updates positions keyed on
// (roll_call_id, rep_id). Conflicts overwrite the position value.
// Returns the number of rows written.
func (s *RollCallStore) UpsertVotePositions(ctx context.Context, positions []model.VotePosition) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vote_positions (roll_call_id, rep_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (roll_call_id, rep_id) DO UPDATE SET
			position = EXCLUDED.position
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare position upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.RollCallID, p.RepID, string(p.Position)); err != nil {
			return written, fmt.Errorf("failed to upsert position for roll call %d rep %s: %w",
				p.RollCallID, p.RepID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit position upsert: %w", err)
	}

	return written, nil
}
