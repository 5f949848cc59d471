package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FeedRow is one joined vote event for feed assembly: a position plus
// its representative, roll call, and (optional) bill context.
type FeedRow struct {
	VotePositionID int64
	Position       string

	RepID       uuid.UUID
	RepFullName string
	RepParty    sql.NullString
	RepPhotoURL sql.NullString
	RepChamber  sql.NullString
	RepState    sql.NullString
	RepDistrict sql.NullString

	RollCallID    int64
	VoteTimestamp time.Time
	Question      sql.NullString
	Description   sql.NullString
	Result        sql.NullString

	BillID     sql.NullInt64
	BillTitle  sql.NullString
	BillType   sql.NullString
	BillNumber sql.NullInt64
}

// FeedStore handles the joined feed query
type FeedStore struct {
	db *sql.DB
}

// NewFeedStore creates a new FeedStore
func NewFeedStore(db *sql.DB) *FeedStore {
	return &FeedStore{db: db}
}

// FeedPage returns vote events for the given representatives, newest
// first. vote_positions.id is the tie-break for equal timestamps so
// pagination stays stable across requests.
func (s *FeedStore) FeedPage(ctx context.Context, repIDs []uuid.UUID, limit, offset int) ([]FeedRow, error) {
	if len(repIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(repIDs))
	for i, id := range repIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT vp.id, vp.position,
		       r.rep_id, r.full_name, r.party, r.photo_url, r.chamber, r.state_code, r.district,
		       rc.id, rc.vote_timestamp, rc.question_text, rc.description, rc.result,
		       b.id, b.title, b.bill_type, b.bill_number
		FROM vote_positions vp
		INNER JOIN representatives r ON r.rep_id = vp.rep_id
		INNER JOIN roll_calls rc ON rc.id = vp.roll_call_id
		LEFT JOIN bills b ON b.id = rc.bill_id
		WHERE vp.rep_id = ANY($1::uuid[])
		ORDER BY rc.vote_timestamp DESC, vp.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	var out []FeedRow
	for rows.Next() {
		var fr FeedRow
		err := rows.Scan(
			&fr.VotePositionID,
			&fr.Position,
			&fr.RepID,
			&fr.RepFullName,
			&fr.RepParty,
			&fr.RepPhotoURL,
			&fr.RepChamber,
			&fr.RepState,
			&fr.RepDistrict,
			&fr.RollCallID,
			&fr.VoteTimestamp,
			&fr.Question,
			&fr.Description,
			&fr.Result,
			&fr.BillID,
			&fr.BillTitle,
			&fr.BillType,
			&fr.BillNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		out = append(out, fr)
	}

	return out, rows.Err()
}
