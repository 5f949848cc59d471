package feed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/model"
	"github.com/jshaw/civicfeed/internal/store"
)

const (
	DefaultPageSize = 20
	maxPageSize     = 100
)

// FollowStore resolves which representatives a user follows
type FollowStore interface {
	FollowedRepIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// FeedStore returns joined vote events for a set of representatives
type FeedStore interface {
	FeedPage(ctx context.Context, repIDs []uuid.UUID, limit, offset int) ([]store.FeedRow, error)
}

// Assembler builds the per-user activity feed: vote events by followed
// representatives, newest first, joined with roll-call and bill context.
type Assembler struct {
	follows FollowStore
	feed    FeedStore
}

// NewAssembler creates a feed assembler
func NewAssembler(follows FollowStore, feed FeedStore) *Assembler {
	return &Assembler{follows: follows, feed: feed}
}

// GetFeed returns one page of the user's feed. page is 1-indexed; out
// of range values are clamped. A user following no one gets an empty
// feed, not an error.
func (a *Assembler) GetFeed(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.FeedItem, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	repIDs, err := a.follows.FollowedRepIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve followed representatives: %w", err)
	}
	if len(repIDs) == 0 {
		return []model.FeedItem{}, nil
	}

	offset := (page - 1) * pageSize
	rows, err := a.feed.FeedPage(ctx, repIDs, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}

	items := make([]model.FeedItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, projectRow(row))
	}

	return items, nil
}

// projectRow flattens one joined row into the client-facing shape
func projectRow(row store.FeedRow) model.FeedItem {
	item := model.FeedItem{
		VotePositionID: row.VotePositionID,
		Position:       model.Position(row.Position),
		Representative: model.FeedRepresentative{
			RepID:    row.RepID.String(),
			FullName: row.RepFullName,
			Party:    nullableString(row.RepParty),
			PhotoURL: nullableString(row.RepPhotoURL),
			Chamber:  nullableString(row.RepChamber),
			State:    nullableString(row.RepState),
			District: nullableString(row.RepDistrict),
		},
		RollCall: model.FeedRollCall{
			RollCallID:    row.RollCallID,
			VoteTimestamp: row.VoteTimestamp,
			Question:      nullableString(row.Question),
			Description:   nullableString(row.Description),
			Result:        nullableString(row.Result),
		},
	}

	if row.BillID.Valid {
		item.Bill = &model.FeedBill{
			BillID: row.BillID.Int64,
			Title:  nullableString(row.BillTitle),
			Number: billNumberString(row.BillType, row.BillNumber),
		}
	}

	return item
}

// billNumberString renders the display number, e.g. "HR. 1234"
func billNumberString(billType sql.NullString, billNumber sql.NullInt64) *string {
	if !billType.Valid || !billNumber.Valid {
		return nil
	}
	s := fmt.Sprintf("%s. %d", strings.ToUpper(billType.String), billNumber.Int64)
	return &s
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
