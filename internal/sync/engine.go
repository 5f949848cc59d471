package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/congress"
	"github.com/jshaw/civicfeed/internal/model"
	"golang.org/x/sync/errgroup"
)

// Client fetches legislative records from the upstream API
type Client interface {
	FetchRecentBills(ctx context.Context, since time.Time) ([]congress.BillRecord, error)
	FetchRecentVotes(ctx context.Context, since time.Time) ([]congress.VoteRecord, error)
	FetchVoterPositions(ctx context.Context, key congress.RollCallKey) ([]congress.MemberVote, error)
}

// BillStore persists bills
type BillStore interface {
	UpsertBills(ctx context.Context, bills []model.Bill) (int, error)
	BillIDsByKey(ctx context.Context) (map[string]int64, error)
}

// RollCallStore persists roll calls and vote positions
type RollCallStore interface {
	UpsertRollCalls(ctx context.Context, rollCalls []model.RollCall) ([]model.RollCall, error)
	UpsertVotePositions(ctx context.Context, positions []model.VotePosition) (int, error)
}

// RepresentativeStore resolves upstream member ids to internal rep ids
type RepresentativeStore interface {
	BioguideMap(ctx context.Context) (map[string]uuid.UUID, error)
}

// Options configures a sync pass
type Options struct {
	// Lookback is the watermark window: records updated within
	// now-Lookback are fetched. Overlapping windows across passes are
	// expected and absorbed by idempotent upserts; if the poller runs
	// less often than the window, records can be missed entirely.
	Lookback time.Duration

	// BatchSize bounds concurrent in-flight voter fetches
	BatchSize int

	// BatchDelay is slept between position batches to respect
	// upstream rate limits
	BatchDelay time.Duration
}

const (
	defaultLookback   = 24 * time.Hour
	defaultBatchSize  = 5
	defaultBatchDelay = 200 * time.Millisecond
)

// Stats tracks what a sync pass fetched, wrote, and failed on
type Stats struct {
	BillsFetched       int
	BillsUpserted      int
	VotesFetched       int
	RollCallsUpserted  int
	PositionsProcessed int
	PositionErrors     int
	PositionsDropped   int
}

// Engine runs the incremental sync pass: bills, then roll calls, then
// per-roll-call voter positions. Stages 1 and 2 are fatal on failure
// because later stages need the identifiers they produce; stage 3
// failures are isolated per roll call and only counted.
type Engine struct {
	client        Client
	billStore     BillStore
	rollCallStore RollCallStore
	repStore      RepresentativeStore
	opts          Options
	retryBackoff  time.Duration
	logger        *log.Logger
	errLogger     *log.Logger
}

// NewEngine creates a sync engine. Zero-valued options fall back to
// defaults (24h lookback, batches of 5, 200ms between batches).
func NewEngine(client Client, billStore BillStore, rollCallStore RollCallStore, repStore RepresentativeStore, opts Options) *Engine {
	if opts.Lookback <= 0 {
		opts.Lookback = defaultLookback
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BatchDelay == 0 {
		opts.BatchDelay = defaultBatchDelay
	} else if opts.BatchDelay < 0 {
		// negative disables the inter-batch delay
		opts.BatchDelay = 0
	}
	return &Engine{
		client:        client,
		billStore:     billStore,
		rollCallStore: rollCallStore,
		repStore:      repStore,
		opts:          opts,
		retryBackoff:  initialBackoff,
		logger:        log.New(os.Stdout, "", log.LstdFlags),
		errLogger:     log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// Run executes one sync pass and returns its stats. A non-nil error
// means the pass aborted in stage 1 or 2; positions that failed in the
// fan-out only show up in Stats.PositionErrors.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	since := time.Now().Add(-e.opts.Lookback)

	// Stage 1: bills
	e.logger.Printf("Fetching bills updated since %s...", since.Format(time.RFC3339))
	var bills []congress.BillRecord
	err := e.withRetry(ctx, "fetch bills", func() error {
		var ferr error
		bills, ferr = e.client.FetchRecentBills(ctx, since)
		return ferr
	})
	if err != nil {
		return stats, fmt.Errorf("bill sync failed: %w", err)
	}
	stats.BillsFetched = len(bills)

	if len(bills) > 0 {
		upserted, err := e.billStore.UpsertBills(ctx, mapBills(bills))
		if err != nil {
			return stats, fmt.Errorf("bill sync failed: %w", err)
		}
		stats.BillsUpserted = upserted
		e.logger.Printf("Upserted %d bills", upserted)
	} else {
		e.logger.Println("No bills updated in window")
	}

	// Stage 2: roll calls
	e.logger.Printf("Fetching votes taken since %s...", since.Format(time.RFC3339))
	var votes []congress.VoteRecord
	err = e.withRetry(ctx, "fetch votes", func() error {
		var ferr error
		votes, ferr = e.client.FetchRecentVotes(ctx, since)
		return ferr
	})
	if err != nil {
		return stats, fmt.Errorf("roll call sync failed: %w", err)
	}
	stats.VotesFetched = len(votes)

	var rollCalls []model.RollCall
	if len(votes) > 0 {
		// The full bill map is loaded from the store, not just this
		// pass's writes, because a vote may reference a bill first
		// seen in a prior pass.
		billIDs, err := e.billStore.BillIDsByKey(ctx)
		if err != nil {
			return stats, fmt.Errorf("roll call sync failed: %w", err)
		}

		toUpsert := e.buildRollCalls(votes, billIDs)
		rollCalls, err = e.rollCallStore.UpsertRollCalls(ctx, toUpsert)
		if err != nil {
			return stats, fmt.Errorf("roll call sync failed: %w", err)
		}
		stats.RollCallsUpserted = len(rollCalls)
		e.logger.Printf("Upserted %d roll calls", len(rollCalls))
	} else {
		e.logger.Println("No votes taken in window")
	}

	// Stages 3 and 4: per-roll-call voter positions
	if len(rollCalls) > 0 {
		repMap, err := e.repStore.BioguideMap(ctx)
		if err != nil {
			return stats, fmt.Errorf("position sync failed: %w", err)
		}
		e.logger.Printf("Resolved %d representatives; fetching positions for %d roll calls (concurrency %d)",
			len(repMap), len(rollCalls), e.opts.BatchSize)

		e.fanOutPositions(ctx, rollCalls, repMap, stats)
		e.logger.Printf("Finished position fetch: %d processed, %d dropped, %d errors",
			stats.PositionsProcessed, stats.PositionsDropped, stats.PositionErrors)
	}

	return stats, nil
}

// mapBills converts upstream bill records to store rows
func mapBills(records []congress.BillRecord) []model.Bill {
	now := time.Now()
	bills := make([]model.Bill, 0, len(records))
	for _, r := range records {
		b := model.Bill{
			Congress:      r.Congress,
			BillType:      strings.ToLower(r.Type),
			BillNumber:    r.Number,
			Title:         r.Title,
			LastFetchedAt: now,
		}
		if r.LatestAction.Text != "" {
			b.LatestActionText = sql.NullString{String: r.LatestAction.Text, Valid: true}
		}
		if t, err := time.Parse("2006-01-02", r.LatestAction.ActionDate); err == nil {
			b.LatestActionDate = sql.NullTime{Time: t, Valid: true}
		}
		if r.PolicyArea.Name != "" {
			b.PolicyArea = sql.NullString{String: r.PolicyArea.Name, Valid: true}
		}
		if r.URL != "" {
			b.SourceURL = sql.NullString{String: r.URL, Valid: true}
		}
		bills = append(bills, b)
	}
	return bills
}

// buildRollCalls converts upstream vote records to store rows, dropping
// unrecognized chambers and resolving the optional bill reference
// against the known-bills map.
func (e *Engine) buildRollCalls(votes []congress.VoteRecord, billIDs map[string]int64) []model.RollCall {
	out := make([]model.RollCall, 0, len(votes))
	for _, v := range votes {
		if !model.RecognizedChamber(v.Chamber) {
			e.logger.Printf("Skipping roll call %d-%d in unrecognized chamber %q", v.Congress, v.RollNumber, v.Chamber)
			continue
		}

		rc := model.RollCall{
			Congress:       v.Congress,
			SessionNumber:  v.Session,
			Chamber:        v.Chamber,
			RollCallNumber: v.RollNumber,
			VoteTimestamp:  parseVoteTimestamp(v.Date),
		}
		if v.Question != "" {
			rc.QuestionText = sql.NullString{String: v.Question, Valid: true}
		}
		if v.Description != "" {
			rc.Description = sql.NullString{String: v.Description, Valid: true}
		}
		if v.Result != "" {
			rc.Result = sql.NullString{String: v.Result, Valid: true}
		}
		if v.Bill != nil {
			key := model.BillKey(v.Bill.Congress, strings.ToLower(v.Bill.Type), v.Bill.Number)
			if id, ok := billIDs[key]; ok {
				rc.BillID = sql.NullInt64{Int64: id, Valid: true}
			}
		}
		out = append(out, rc)
	}
	return out
}

// parseVoteTimestamp parses the upstream vote date, falling back to now
// when it is missing or malformed so the row still sorts sensibly.
func parseVoteTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

// fanOutPositions fetches and upserts voter positions for each roll
// call in fixed-size batches. Each batch runs its fetches concurrently
// and is awaited jointly before the next batch starts; a delay between
// batches throttles the upstream request rate. Failures never abort
// sibling roll calls.
func (e *Engine) fanOutPositions(ctx context.Context, rollCalls []model.RollCall, repMap map[string]uuid.UUID, stats *Stats) {
	var mu stdsync.Mutex

	for start := 0; start < len(rollCalls); start += e.opts.BatchSize {
		end := start + e.opts.BatchSize
		if end > len(rollCalls) {
			end = len(rollCalls)
		}
		batch := rollCalls[start:end]

		var g errgroup.Group
		for _, rc := range batch {
			rc := rc
			g.Go(func() error {
				processed, dropped, failed := e.syncRollCallPositions(ctx, rc, repMap)
				mu.Lock()
				stats.PositionsProcessed += processed
				stats.PositionsDropped += dropped
				if failed {
					stats.PositionErrors++
				}
				mu.Unlock()
				return nil
			})
		}
		g.Wait()

		if end < len(rollCalls) && e.opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.opts.BatchDelay):
			}
		}
	}
}

// syncRollCallPositions fetches one roll call's voter positions,
// resolves members against the rep map, and upserts whatever resolved.
// Unresolvable members and unmappable position values are dropped, not
// errors; fetch or upsert failure marks the roll call failed.
func (e *Engine) syncRollCallPositions(ctx context.Context, rc model.RollCall, repMap map[string]uuid.UUID) (processed, dropped int, failed bool) {
	key := congress.RollCallKey{
		Congress:       rc.Congress,
		SessionNumber:  rc.SessionNumber,
		Chamber:        rc.Chamber,
		RollCallNumber: rc.RollCallNumber,
	}

	memberVotes, err := e.client.FetchVoterPositions(ctx, key)
	if err != nil {
		e.errLogger.Printf("Failed to fetch positions for roll call %s: %v", rc.Key(), err)
		return 0, 0, true
	}

	positions := make([]model.VotePosition, 0, len(memberVotes))
	for _, mv := range memberVotes {
		repID, ok := repMap[mv.Member.BioguideID]
		if !ok {
			dropped++
			continue
		}
		position, ok := model.ParsePosition(mv.VotePosition)
		if !ok {
			e.logger.Printf("Unmapped vote position %q for %s on roll call %s", mv.VotePosition, mv.Member.BioguideID, rc.Key())
			dropped++
			continue
		}
		positions = append(positions, model.VotePosition{
			RollCallID: rc.ID,
			RepID:      repID,
			Position:   position,
		})
	}

	if len(positions) == 0 {
		return 0, dropped, false
	}

	written, err := e.rollCallStore.UpsertVotePositions(ctx, positions)
	if err != nil {
		e.errLogger.Printf("Failed to upsert positions for roll call %s: %v", rc.Key(), err)
		return written, dropped, true
	}

	return written, dropped, false
}

// PrintSummary prints the pass statistics
func (e *Engine) PrintSummary(stats *Stats) {
	e.logger.Println("")
	e.logger.Println("=== Sync Summary ===")
	e.logger.Printf("Bills fetched:        %d", stats.BillsFetched)
	e.logger.Printf("Bills upserted:       %d", stats.BillsUpserted)
	e.logger.Printf("Votes fetched:        %d", stats.VotesFetched)
	e.logger.Printf("Roll calls upserted:  %d", stats.RollCallsUpserted)
	e.logger.Printf("Positions processed:  %d", stats.PositionsProcessed)
	e.logger.Printf("Positions dropped:    %d", stats.PositionsDropped)
	e.logger.Printf("Position errors:      %d", stats.PositionErrors)
}
