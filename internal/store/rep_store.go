package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/model"
)

// RepresentativeStore handles database operations for representatives
// and the user follow relationships that hang off them
type RepresentativeStore struct {
	db *sql.DB
}

// NewRepresentativeStore creates a new RepresentativeStore
func NewRepresentativeStore(db *sql.DB) *RepresentativeStore {
	return &RepresentativeStore{db: db}
}

// BioguideMap returns a map from bioguide id to internal rep id for
// every representative with a bioguide id. The sync engine uses it to
// resolve upstream member identifiers.
func (s *RepresentativeStore) BioguideMap(ctx context.Context) (map[string]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bioguide_id, rep_id FROM representatives WHERE bioguide_id IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load representative map: %w", err)
	}
	defer rows.Close()

	m := make(map[string]uuid.UUID)
	for rows.Next() {
		var (
			bioguideID string
			repID      uuid.UUID
		)
		if err := rows.Scan(&bioguideID, &repID); err != nil {
			return nil, fmt.Errorf("failed to scan representative: %w", err)
		}
		m[bioguideID] = repID
	}

	return m, rows.Err()
}

// FollowedRepIDs returns the ids of every representative the user follows
func (s *RepresentativeStore) FollowedRepIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rep_id FROM followed_representatives WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load followed representatives: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followed rep: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Follow records that a user follows a representative. Idempotent.
func (s *RepresentativeStore) Follow(ctx context.Context, userID, repID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO followed_representatives (user_id, rep_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, rep_id) DO NOTHING
	`, userID, repID)
	if err != nil {
		return fmt.Errorf("failed to follow representative %s: %w", repID, err)
	}
	return nil
}

// Unfollow removes a follow relationship. Removing one that does not
// exist is not an error.
func (s *RepresentativeStore) Unfollow(ctx context.Context, userID, repID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM followed_representatives WHERE user_id = $1 AND rep_id = $2
	`, userID, repID)
	if err != nil {
		return fmt.Errorf("failed to unfollow representative %s: %w", repID, err)
	}
	return nil
}

// GetByID retrieves a representative by internal id
func (s *RepresentativeStore) GetByID(ctx context.Context, repID uuid.UUID) (*model.Representative, error) {
	query := `
		SELECT rep_id, bioguide_id, full_name, party, photo_url, chamber, state_code, district
		FROM representatives
		WHERE rep_id = $1
	`

	var (
		r          model.Representative
		bioguideID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, repID).Scan(
		&r.RepID,
		&bioguideID,
		&r.FullName,
		&r.Party,
		&r.PhotoURL,
		&r.Chamber,
		&r.State,
		&r.District,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get representative %s: %w", repID, err)
	}
	r.BioguideID = bioguideID.String

	return &r, nil
}
