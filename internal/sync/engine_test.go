package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jshaw/civicfeed/internal/congress"
	"github.com/jshaw/civicfeed/internal/model"
)

// --- fakes ---

type fakeClient struct {
	bills    []congress.BillRecord
	votes    []congress.VoteRecord
	billsErr error
	votesErr error

	// positions keyed by "congress-chamber-session-roll"
	positions    map[string][]congress.MemberVote
	positionErrs map[string]error
}

func positionKey(key congress.RollCallKey) string {
	return fmt.Sprintf("%d-%s-%d-%d", key.Congress, key.Chamber, key.SessionNumber, key.RollCallNumber)
}

func (c *fakeClient) FetchRecentBills(ctx context.Context, since time.Time) ([]congress.BillRecord, error) {
	if c.billsErr != nil {
		return nil, c.billsErr
	}
	return c.bills, nil
}

func (c *fakeClient) FetchRecentVotes(ctx context.Context, since time.Time) ([]congress.VoteRecord, error) {
	if c.votesErr != nil {
		return nil, c.votesErr
	}
	return c.votes, nil
}

func (c *fakeClient) FetchVoterPositions(ctx context.Context, key congress.RollCallKey) ([]congress.MemberVote, error) {
	if err, ok := c.positionErrs[positionKey(key)]; ok {
		return nil, err
	}
	return c.positions[positionKey(key)], nil
}

type fakeBillStore struct {
	rows      map[string]model.Bill
	nextID    int64
	upsertErr error
}

func newFakeBillStore() *fakeBillStore {
	return &fakeBillStore{rows: make(map[string]model.Bill)}
}

func (s *fakeBillStore) UpsertBills(ctx context.Context, bills []model.Bill) (int, error) {
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	for _, b := range bills {
		if existing, ok := s.rows[b.Key()]; ok {
			b.ID = existing.ID
		} else {
			s.nextID++
			b.ID = s.nextID
		}
		s.rows[b.Key()] = b
	}
	return len(bills), nil
}

func (s *fakeBillStore) BillIDsByKey(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64, len(s.rows))
	for key, b := range s.rows {
		ids[key] = b.ID
	}
	return ids, nil
}

type fakeRollCallStore struct {
	rows      map[string]model.RollCall
	positions map[string]model.Position // "rollCallID/repID"
	nextID    int64
	upsertErr error
	posErr    error
}

func newFakeRollCallStore() *fakeRollCallStore {
	return &fakeRollCallStore{
		rows:      make(map[string]model.RollCall),
		positions: make(map[string]model.Position),
	}
}

func (s *fakeRollCallStore) UpsertRollCalls(ctx context.Context, rollCalls []model.RollCall) ([]model.RollCall, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	out := make([]model.RollCall, 0, len(rollCalls))
	for _, rc := range rollCalls {
		if existing, ok := s.rows[rc.Key()]; ok {
			rc.ID = existing.ID
		} else {
			s.nextID++
			rc.ID = s.nextID
		}
		s.rows[rc.Key()] = rc
		out = append(out, rc)
	}
	return out, nil
}

func (s *fakeRollCallStore) UpsertVotePositions(ctx context.Context, positions []model.VotePosition) (int, error) {
	if s.posErr != nil {
		return 0, s.posErr
	}
	for _, p := range positions {
		s.positions[fmt.Sprintf("%d/%s", p.RollCallID, p.RepID)] = p.Position
	}
	return len(positions), nil
}

type fakeRepStore struct {
	byBioguide map[string]uuid.UUID
}

func (s *fakeRepStore) BioguideMap(ctx context.Context) (map[string]uuid.UUID, error) {
	return s.byBioguide, nil
}

// --- fixtures ---

func billRecord(congressNum int, billType string, number int, title string) congress.BillRecord {
	r := congress.BillRecord{Congress: congressNum, Type: billType, Number: number, Title: title}
	r.LatestAction.Text = "Passed"
	r.LatestAction.ActionDate = "2024-01-01"
	return r
}

func voteRecord(congressNum, session int, chamber string, roll int) congress.VoteRecord {
	return congress.VoteRecord{
		Congress:   congressNum,
		Session:    session,
		Chamber:    chamber,
		RollNumber: roll,
		Question:   "On Passage",
		Result:     "Passed",
		Date:       "2024-03-01T14:00:00Z",
	}
}

func testEngine(client Client, bills *fakeBillStore, rollCalls *fakeRollCallStore, reps *fakeRepStore) *Engine {
	e := NewEngine(client, bills, rollCalls, reps, Options{
		Lookback:   time.Hour,
		BatchSize:  2,
		BatchDelay: -1,
	})
	e.retryBackoff = time.Millisecond
	return e
}

// --- tests ---

func TestRunHappyPath(t *testing.T) {
	repA := uuid.New()
	repB := uuid.New()

	withBill := voteRecord(118, 1, "House", 10)
	withBill.Bill = &congress.VoteBillRef{Congress: 118, Type: "HR", Number: 42}

	client := &fakeClient{
		bills: []congress.BillRecord{
			billRecord(118, "HR", 42, "Foo Act"),
			billRecord(118, "S", 7, "Bar Act"),
		},
		votes: []congress.VoteRecord{
			withBill,
			voteRecord(118, 1, "Senate", 11),
			voteRecord(118, 1, "Joint", 12), // unrecognized chamber, dropped
		},
		positions: map[string][]congress.MemberVote{
			"118-House-1-10": {
				memberVote("A000001", "Yea"),
				memberVote("A000002", "No"),        // alias -> Nay
				memberVote("Z999999", "Yea"),       // unknown member, dropped
				memberVote("A000001", "Abstained"), // unmapped position, dropped
			},
			"118-Senate-1-11": {
				memberVote("A000002", "Not Voting"),
			},
		},
	}
	bills := newFakeBillStore()
	rollCalls := newFakeRollCallStore()
	reps := &fakeRepStore{byBioguide: map[string]uuid.UUID{"A000001": repA, "A000002": repB}}

	stats, err := testEngine(client, bills, rollCalls, reps).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.BillsFetched != 2 || stats.BillsUpserted != 2 {
		t.Errorf("bills: fetched %d upserted %d, want 2/2", stats.BillsFetched, stats.BillsUpserted)
	}
	if stats.VotesFetched != 3 {
		t.Errorf("votes fetched = %d, want 3", stats.VotesFetched)
	}
	if stats.RollCallsUpserted != 2 {
		t.Errorf("roll calls upserted = %d, want 2 (Joint chamber filtered)", stats.RollCallsUpserted)
	}
	if stats.PositionsProcessed != 3 {
		t.Errorf("positions processed = %d, want 3", stats.PositionsProcessed)
	}
	if stats.PositionsDropped != 2 {
		t.Errorf("positions dropped = %d, want 2", stats.PositionsDropped)
	}
	if stats.PositionErrors != 0 {
		t.Errorf("position errors = %d, want 0", stats.PositionErrors)
	}

	// Bill reference resolved on the House roll call
	houseRC, ok := rollCalls.rows["118-1-House-10"]
	if !ok {
		t.Fatal("House roll call not stored")
	}
	if !houseRC.BillID.Valid {
		t.Error("House roll call bill_id not resolved")
	}
	billRow := bills.rows[model.BillKey(118, "hr", 42)]
	if houseRC.BillID.Int64 != billRow.ID {
		t.Errorf("bill_id = %d, want %d", houseRC.BillID.Int64, billRow.ID)
	}

	// Alias mapping stored Nay, not the raw "No"
	if got := rollCalls.positions[fmt.Sprintf("%d/%s", houseRC.ID, repB)]; got != model.PositionNay {
		t.Errorf("position for repB = %q, want Nay", got)
	}
}

func memberVote(bioguideID, position string) congress.MemberVote {
	var mv congress.MemberVote
	mv.Member.BioguideID = bioguideID
	mv.VotePosition = position
	return mv
}

func TestRunIdempotent(t *testing.T) {
	repA := uuid.New()
	client := &fakeClient{
		bills: []congress.BillRecord{billRecord(118, "HR", 42, "Foo Act")},
		votes: []congress.VoteRecord{voteRecord(118, 1, "House", 10)},
		positions: map[string][]congress.MemberVote{
			"118-House-1-10": {memberVote("A000001", "Yea")},
		},
	}
	bills := newFakeBillStore()
	rollCalls := newFakeRollCallStore()
	reps := &fakeRepStore{byBioguide: map[string]uuid.UUID{"A000001": repA}}
	engine := testEngine(client, bills, rollCalls, reps)

	first, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	second, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	if len(bills.rows) != 1 || len(rollCalls.rows) != 1 || len(rollCalls.positions) != 1 {
		t.Errorf("row counts after two passes = %d/%d/%d, want 1/1/1",
			len(bills.rows), len(rollCalls.rows), len(rollCalls.positions))
	}
	if *first != *second {
		t.Errorf("stats differ between identical passes: %+v vs %+v", first, second)
	}

	// Row identity preserved across passes
	if bills.rows["118-hr-42"].ID != 1 {
		t.Errorf("bill id changed on re-run: %d", bills.rows["118-hr-42"].ID)
	}
}

func TestRunBillStageFatal(t *testing.T) {
	client := &fakeClient{
		billsErr: &congress.TransportError{Op: "fetch bills", Err: errors.New("connection refused")},
	}
	engine := testEngine(client, newFakeBillStore(), newFakeRollCallStore(), &fakeRepStore{})

	_, err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error from bill stage")
	}
	var te *congress.TransportError
	if !errors.As(err, &te) {
		t.Errorf("error chain missing TransportError: %v", err)
	}
}

func TestRunBillUpsertFatal(t *testing.T) {
	client := &fakeClient{bills: []congress.BillRecord{billRecord(118, "HR", 1, "X")}}
	bills := newFakeBillStore()
	bills.upsertErr = errors.New("db down")
	engine := testEngine(client, bills, newFakeRollCallStore(), &fakeRepStore{})

	if _, err := engine.Run(context.Background()); err == nil {
		t.Fatal("expected fatal error from bill upsert")
	}
}

func TestRunVoteStageFatal(t *testing.T) {
	client := &fakeClient{
		votesErr: &congress.APIError{Op: "fetch votes", StatusCode: 503},
	}
	engine := testEngine(client, newFakeBillStore(), newFakeRollCallStore(), &fakeRepStore{})

	_, err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error from vote stage")
	}
}

func TestEmptyWindowIsNotAnError(t *testing.T) {
	engine := testEngine(&fakeClient{}, newFakeBillStore(), newFakeRollCallStore(), &fakeRepStore{})

	stats, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("empty window should succeed: %v", err)
	}
	if *stats != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestPositionFanOutIsolation(t *testing.T) {
	repA := uuid.New()

	client := &fakeClient{
		votes: []congress.VoteRecord{
			voteRecord(118, 1, "House", 1),
			voteRecord(118, 1, "House", 2),
			voteRecord(118, 1, "House", 3),
		},
		positions: map[string][]congress.MemberVote{
			"118-House-1-1": {memberVote("A000001", "Yea")},
			"118-House-1-3": {memberVote("A000001", "Nay")},
		},
		positionErrs: map[string]error{
			"118-House-1-2": &congress.TransportError{Op: "fetch positions", Err: errors.New("timeout")},
		},
	}
	rollCalls := newFakeRollCallStore()
	reps := &fakeRepStore{byBioguide: map[string]uuid.UUID{"A000001": repA}}
	engine := testEngine(client, newFakeBillStore(), rollCalls, reps)

	stats, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("pass should not be fatal on position errors: %v", err)
	}

	if stats.PositionErrors != 1 {
		t.Errorf("position errors = %d, want exactly 1", stats.PositionErrors)
	}
	if stats.PositionsProcessed != 2 {
		t.Errorf("positions processed = %d, want 2", stats.PositionsProcessed)
	}
	if len(rollCalls.positions) != 2 {
		t.Errorf("stored positions = %d, want 2 (siblings unaffected)", len(rollCalls.positions))
	}
}

func TestRollCallLinksBillFromPriorPass(t *testing.T) {
	// The bill exists in the store but is not in this pass's fetch.
	bills := newFakeBillStore()
	bills.rows[model.BillKey(117, "s", 9)] = model.Bill{ID: 77, Congress: 117, BillType: "s", BillNumber: 9}

	vote := voteRecord(117, 2, "Senate", 5)
	vote.Bill = &congress.VoteBillRef{Congress: 117, Type: "S", Number: 9}

	client := &fakeClient{votes: []congress.VoteRecord{vote}}
	rollCalls := newFakeRollCallStore()
	engine := testEngine(client, bills, rollCalls, &fakeRepStore{})

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rc := rollCalls.rows["117-2-Senate-5"]
	if !rc.BillID.Valid || rc.BillID.Int64 != 77 {
		t.Errorf("bill_id = %+v, want 77", rc.BillID)
	}
}

func TestUnresolvedBillReferenceStaysNull(t *testing.T) {
	vote := voteRecord(118, 1, "House", 4)
	vote.Bill = &congress.VoteBillRef{Congress: 118, Type: "HR", Number: 9999}

	client := &fakeClient{votes: []congress.VoteRecord{vote}}
	rollCalls := newFakeRollCallStore()
	engine := testEngine(client, newFakeBillStore(), rollCalls, &fakeRepStore{})

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rc := rollCalls.rows["118-1-House-4"]
	if rc.BillID.Valid {
		t.Errorf("unresolvable bill reference should stay null, got %d", rc.BillID.Int64)
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	attempts := 0
	client := &retryingClient{
		fakeClient: fakeClient{bills: []congress.BillRecord{billRecord(118, "HR", 1, "X")}},
		attempts:   &attempts,
		failUntil:  2,
	}
	engine := testEngine(client, newFakeBillStore(), newFakeRollCallStore(), &fakeRepStore{})

	stats, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if stats.BillsUpserted != 1 {
		t.Errorf("bills upserted = %d, want 1", stats.BillsUpserted)
	}
	if attempts != 2 {
		t.Errorf("fetch attempts = %d, want 2", attempts)
	}
}

// retryingClient fails the bill fetch until failUntil attempts are made
type retryingClient struct {
	fakeClient
	attempts  *int
	failUntil int
}

func (c *retryingClient) FetchRecentBills(ctx context.Context, since time.Time) ([]congress.BillRecord, error) {
	*c.attempts++
	if *c.attempts < c.failUntil {
		return nil, &congress.TransportError{Op: "fetch bills", Err: errors.New("flaky")}
	}
	return c.bills, nil
}
