package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jshaw/civicfeed/internal/model"
)

// BillStore handles database operations for bills
type BillStore struct {
	db *sql.DB
}

// NewBillStore creates a new BillStore
func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

// UpsertBills inserts or updates a batch of bills keyed on
// (congress, bill_type, bill_number). Returns the number of rows written.
func (s *BillStore) UpsertBills(ctx context.Context, bills []model.Bill) (int, error) {
	if len(bills) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bills (congress, bill_type, bill_number, title, latest_action_text,
		                   latest_action_date, policy_area, source_url, last_fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (congress, bill_type, bill_number) DO UPDATE SET
			title = EXCLUDED.title,
			latest_action_text = EXCLUDED.latest_action_text,
			latest_action_date = EXCLUDED.latest_action_date,
			policy_area = EXCLUDED.policy_area,
			source_url = EXCLUDED.source_url,
			last_fetched_at = EXCLUDED.last_fetched_at
		RETURNING id
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare bill upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for idx := range bills {
		b := &bills[idx]
		err := stmt.QueryRowContext(ctx,
			b.Congress,
			b.BillType,
			b.BillNumber,
			b.Title,
			b.LatestActionText,
			b.LatestActionDate,
			b.PolicyArea,
			b.SourceURL,
			b.LastFetchedAt,
		).Scan(&b.ID)
		if err != nil {
			return written, fmt.Errorf("failed to upsert bill %s: %w", b.Key(), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bill upsert: %w", err)
	}

	return written, nil
}

// BillIDsByKey loads every known bill and returns a map from composite
// key to row id. Loaded fresh so roll calls can reference bills first
// seen in earlier sync passes.
func (s *BillStore) BillIDsByKey(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, congress, bill_type, bill_number FROM bills`)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill keys: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id         int64
			congress   int
			billType   string
			billNumber int
		)
		if err := rows.Scan(&id, &congress, &billType, &billNumber); err != nil {
			return nil, fmt.Errorf("failed to scan bill key: %w", err)
		}
		ids[model.BillKey(congress, billType, billNumber)] = id
	}

	return ids, rows.Err()
}

// GetByKey retrieves a bill by its composite natural key
func (s *BillStore) GetByKey(ctx context.Context, congress int, billType string, billNumber int) (*model.Bill, error) {
	query := `
		SELECT id, congress, bill_type, bill_number, title, latest_action_text,
		       latest_action_date, policy_area, source_url, last_fetched_at, created_at
		FROM bills
		WHERE congress = $1 AND bill_type = $2 AND bill_number = $3
	`

	var b model.Bill
	err := s.db.QueryRowContext(ctx, query, congress, billType, billNumber).Scan(
		&b.ID,
		&b.Congress,
		&b.BillType,
		&b.BillNumber,
		&b.Title,
		&b.LatestActionText,
		&b.LatestActionDate,
		&b.PolicyArea,
		&b.SourceURL,
		&b.LastFetchedAt,
		&b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %s: %w", model.BillKey(congress, billType, billNumber), err)
	}

	return &b, nil
}
