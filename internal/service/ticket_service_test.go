package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/queue"
)

// fakeTicketStore is an in-memory TicketStore.  MarkUsed takes the
// mutex around the read-check-write, which is exactly the atomicity
// the real conditional UPDATE provides.  ListUnreconciled consults the
// check-in store so it reports only used tickets with no check-in row,
// like the LEFT JOIN it stands in for.
type fakeTicketStore struct {
	mu        sync.Mutex
	tickets   map[string]*model.Ticket
	checkins  *fakeCheckinStore
	insertErr error
	markErr   error
}

func newFakeTicketStore(checkins *fakeCheckinStore) *fakeTicketStore {
	return &fakeTicketStore{tickets: map[string]*model.Ticket{}, checkins: checkins}
}

func (f *fakeTicketStore) InsertBatch(_ context.Context, tickets []model.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for i := range tickets {
		t := tickets[i]
		f.tickets[t.ID] = &t
	}
	return nil
}

func (f *fakeTicketStore) GetByID(_ context.Context, id string) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketStore) MarkUsed(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	t, ok := f.tickets[id]
	if !ok || t.Status != model.TicketActive {
		return false, nil
	}
	t.Status = model.TicketUsed
	return true, nil
}

func (f *fakeTicketStore) CountByEvent(_ context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTicketStore) ListUnreconciled(_ context.Context, eventID string) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID && t.Status == model.TicketUsed && !f.checkins.hasTicket(t.ID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeCheckinStore struct {
	mu        sync.Mutex
	records   map[string]*model.Checkin // keyed by ticket id
	createErr error
}

func newFakeCheckinStore() *fakeCheckinStore {
	return &fakeCheckinStore{records: map[string]*model.Checkin{}}
}

func (f *fakeCheckinStore) Create(_ context.Context, rec *model.Checkin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, dup := f.records[rec.TicketID]; dup {
		return errors.New("duplicate check-in for ticket")
	}
	cp := *rec
	f.records[rec.TicketID] = &cp
	return nil
}

func (f *fakeCheckinStore) hasTicket(ticketID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[ticketID]
	return ok
}

func (f *fakeCheckinStore) CountByEvent(_ context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCheckinStore) ListByEvent(_ context.Context, eventID string) ([]model.CheckinDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CheckinDetail
	for _, r := range f.records {
		if r.EventID == eventID {
			out = append(out, model.CheckinDetail{Checkin: *r})
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.CheckinRecordedEvent
	err    error
}

func (f *fakePublisher) PublishCheckinRecorded(_ context.Context, ev queue.CheckinRecordedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func newTestService() (*TicketService, *fakeTicketStore, *fakeCheckinStore, *fakePublisher) {
	cs := newFakeCheckinStore()
	ts := newFakeTicketStore(cs)
	pub := &fakePublisher{}
	return NewTicketService(ts, cs, pub), ts, cs, pub
}

func TestIssueCreatesDistinctTickets(t *testing.T) {
	svc, store, _, _ := newTestService()

	got, err := svc.Issue(context.Background(), "ev-1", "user-1", 5, 25.50)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d tickets, want 5", len(got))
	}

	ids := map[string]bool{}
	numbers := map[string]bool{}
	for _, tk := range got {
		if ids[tk.ID] {
			t.Errorf("duplicate ticket id %s", tk.ID)
		}
		ids[tk.ID] = true
		if numbers[tk.TicketNumber] {
			t.Errorf("duplicate ticket number %s", tk.TicketNumber)
		}
		numbers[tk.TicketNumber] = true

		if !strings.HasPrefix(tk.TicketNumber, "TKT-") {
			t.Errorf("ticket number %q missing TKT- prefix", tk.TicketNumber)
		}
		if tk.Status != model.TicketActive {
			t.Errorf("new ticket status = %q, want %q", tk.Status, model.TicketActive)
		}
		if tk.Price != 25.50 {
			t.Errorf("ticket price = %v, want 25.50", tk.Price)
		}
	}
	if n, _ := store.CountByEvent(context.Background(), "ev-1"); n != 5 {
		t.Errorf("store holds %d tickets, want 5", n)
	}
}

func TestIssueValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name     string
		eventID  string
		userID   string
		quantity int
		price    float64
	}{
		{"missing event", "", "u", 1, 0},
		{"missing user", "ev", "", 1, 0},
		{"zero quantity", "ev", "u", 0, 0},
		{"negative quantity", "ev", "u", -3, 0},
		{"negative price", "ev", "u", 1, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Issue(ctx, tc.eventID, tc.userID, tc.quantity, tc.price)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestIssueStoreFailure(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.insertErr = errors.New("connection refused")

	_, err := svc.Issue(context.Background(), "ev-1", "user-1", 2, 10)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestCheckInHappyPath(t *testing.T) {
	svc, _, checkins, pub := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "ev-1", "user-1", 1, 10)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tk := issued[0]

	rec, err := svc.CheckIn(ctx, tk.ID, "ev-1")
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.TicketID != tk.ID || rec.EventID != "ev-1" || rec.UserID != "user-1" {
		t.Errorf("record = %+v, want ticket/event/user carried over", rec)
	}
	if rec.CheckedInAt.IsZero() {
		t.Error("CheckedInAt not set")
	}
	if n, _ := checkins.CountByEvent(ctx, "ev-1"); n != 1 {
		t.Errorf("check-in count = %d, want 1", n)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if pub.events[0].TicketID != tk.ID || pub.events[0].TicketNumber != tk.TicketNumber {
		t.Errorf("published event = %+v, want ticket details", pub.events[0])
	}
}

func TestCheckInUnknownTicket(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CheckIn(context.Background(), "no-such-ticket", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckInMissingTicketID(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CheckIn(context.Background(), "", "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCheckInWrongEvent(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)
	_, err := svc.CheckIn(ctx, issued[0].ID, "ev-2")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	// The mismatch must not consume the ticket.
	res, err := svc.Validate(ctx, issued[0].ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Error("ticket consumed by rejected cross-event scan")
	}
}

func TestCheckInTwiceConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)
	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	_, err := svc.CheckIn(ctx, issued[0].ID, "")
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("second CheckIn err = %v, want ErrAlreadyCheckedIn", err)
	}
}

// TestCheckInConcurrentSingleWinner hammers one ticket from many
// goroutines.  Exactly one must succeed and everyone else must see
// the already-checked-in conflict; the store must end up with exactly
// one check-in record.
func TestCheckInConcurrentSingleWinner(t *testing.T) {
	svc, _, checkins, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)
	ticketID := issued[0].ID

	const workers = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int64
		conflicts atomic.Int64
		others    atomic.Int64
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.CheckIn(ctx, ticketID, "ev-1")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyCheckedIn):
				conflicts.Add(1)
			default:
				others.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Errorf("successes = %d, want exactly 1", got)
	}
	if got := conflicts.Load(); got != workers-1 {
		t.Errorf("conflicts = %d, want %d", got, workers-1)
	}
	if got := others.Load(); got != 0 {
		t.Errorf("unexpected errors = %d, want 0", got)
	}
	if n, _ := checkins.CountByEvent(ctx, "ev-1"); n != 1 {
		t.Errorf("check-in records = %d, want 1", n)
	}
}

func TestCheckInPartialFailure(t *testing.T) {
	svc, tickets, checkins, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 2, 0)
	clean, divergent := issued[0], issued[1]

	// First ticket checks in cleanly before the store starts failing.
	if _, err := svc.CheckIn(ctx, clean.ID, ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	checkins.createErr = errors.New("disk full")
	_, err := svc.CheckIn(ctx, divergent.ID, "")
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("err = %v, want ErrPartialFailure", err)
	}

	// The ticket stays used: the divergence is reported, not unwound.
	got, _ := tickets.GetByID(ctx, divergent.ID)
	if got.Status != model.TicketUsed {
		t.Errorf("ticket status = %q, want %q", got.Status, model.TicketUsed)
	}

	// Only the divergent ticket shows up in the reconciliation view;
	// the cleanly checked-in one has its record and stays out.
	orphans, err := svc.ListUnreconciled(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ListUnreconciled: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != divergent.ID {
		t.Errorf("unreconciled = %+v, want only ticket %s", orphans, divergent.ID)
	}
}

func TestCheckInPublisherFailureIsIgnored(t *testing.T) {
	svc, _, _, pub := newTestService()
	ctx := context.Background()
	pub.err = errors.New("broker down")

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)
	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("CheckIn failed on publisher error: %v", err)
	}
}

func TestCheckInWithoutPublisher(t *testing.T) {
	cs := newFakeCheckinStore()
	ts := newFakeTicketStore(cs)
	svc := NewTicketService(ts, cs, nil)
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)
	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
}

func TestGetCheckinStats(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 3, 0)
	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	stats, err := svc.GetCheckinStats(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetCheckinStats: %v", err)
	}
	if stats.TotalTickets != 3 || stats.CheckedIn != 1 || stats.Pending != 2 {
		t.Errorf("stats = %+v, want 3/1/2", stats)
	}
	want := 100.0 / 3.0
	if diff := stats.CheckinRate - want; diff > 0.01 || diff < -0.01 {
		t.Errorf("rate = %v, want ~%.2f", stats.CheckinRate, want)
	}
}

func TestGetCheckinStatsEmptyEvent(t *testing.T) {
	svc, _, _, _ := newTestService()

	stats, err := svc.GetCheckinStats(context.Background(), "ev-none")
	if err != nil {
		t.Fatalf("GetCheckinStats: %v", err)
	}
	if stats.TotalTickets != 0 || stats.CheckedIn != 0 || stats.Pending != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
	if stats.CheckinRate != 0 {
		t.Errorf("rate = %v, want 0 for empty event", stats.CheckinRate)
	}
}

func TestValidate(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 1, 0)

	res, err := svc.Validate(ctx, issued[0].ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Error("active ticket reported invalid")
	}
	if res.Ticket == nil || res.Ticket.ID != issued[0].ID {
		t.Errorf("result ticket = %+v, want the looked-up ticket", res.Ticket)
	}

	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	res, err = svc.Validate(ctx, issued[0].ID)
	if err != nil {
		t.Fatalf("Validate after check-in: %v", err)
	}
	if res.Valid {
		t.Error("used ticket reported valid")
	}

	if _, err := svc.Validate(ctx, "no-such-ticket"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown ticket", err)
	}
}

func TestListCheckins(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 2, 0)
	for _, tk := range issued {
		if _, err := svc.CheckIn(ctx, tk.ID, ""); err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
	}

	items, err := svc.ListCheckins(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ListCheckins: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d check-ins, want 2", len(items))
	}
}
