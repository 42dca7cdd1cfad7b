package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/queue"
	"github.com/css-intel/courtevent/internal/utils"
)

// TicketStore is the slice of ticket persistence the lifecycle manager
// needs.  Absence in GetByID is reported as sql.ErrNoRows.  MarkUsed
// must be a conditional update: it flips active to used only when the
// row is still active, and reports whether this caller won the
// transition.  That single guarantee is what keeps concurrent
// check-ins on the same ticket from both succeeding.
type TicketStore interface {
	InsertBatch(ctx context.Context, tickets []model.Ticket) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	MarkUsed(ctx context.Context, id string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	ListUnreconciled(ctx context.Context, eventID string) ([]model.Ticket, error)
}

// CheckinStore is the slice of check-in persistence the lifecycle
// manager needs.
type CheckinStore interface {
	Create(ctx context.Context, rec *model.Checkin) error
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.CheckinDetail, error)
}

// CheckinPublisher notifies downstream consumers of a recorded
// check-in.  Publishing is best effort and never fails the check-in.
type CheckinPublisher interface {
	PublishCheckinRecorded(ctx context.Context, event queue.CheckinRecordedEvent) error
}

// TicketService mediates the only two lifecycle-changing operations on
// tickets, issuance and check-in, and guarantees that a check-in
// record referencing a ticket exists iff the ticket's status is used.
// Stores are injected so the service can be exercised against fakes.
type TicketService struct {
	tickets  TicketStore
	checkins CheckinStore
	pub      CheckinPublisher // may be nil when no broker is configured
}

// NewTicketService constructs a TicketService.  The publisher may be
// nil; the stores must not be.
func NewTicketService(tickets TicketStore, checkins CheckinStore, pub CheckinPublisher) *TicketService {
	if tickets == nil || checkins == nil {
		panic("nil store passed to NewTicketService")
	}
	return &TicketService{tickets: tickets, checkins: checkins, pub: pub}
}

// Issue creates quantity tickets for holder against an event, all
// active, all priced at unitPrice.  The batch persists as a whole or
// the whole call fails; a partially committed batch is surfaced as a
// store failure, never as partial success.  Callers are expected to
// have validated that the event exists; Issue itself does not check
// and will create orphaned tickets for an unknown event ID.
func (s *TicketService) Issue(ctx context.Context, eventID, holderID string, quantity int, unitPrice float64) ([]model.Ticket, error) {
	if eventID == "" || holderID == "" {
		return nil, fmt.Errorf("%w: event_id and user_id are required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	now := time.Now().UTC()
	tickets := make([]model.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		number, err := utils.NewTicketNumber()
		if err != nil {
			return nil, fmt.Errorf("%w: generate ticket number: %v", ErrStoreUnavailable, err)
		}
		tickets = append(tickets, model.Ticket{
			ID:           uuid.NewString(),
			EventID:      eventID,
			UserID:       holderID,
			TicketNumber: number,
			Price:        unitPrice,
			Status:       model.TicketActive,
			CreatedAt:    now,
		})
	}
	if err := s.tickets.InsertBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("%w: insert tickets: %v", ErrStoreUnavailable, err)
	}
	return tickets, nil
}

// CheckIn redeems a ticket at the venue.  The sequence is: fetch the
// ticket, reject a used one, atomically flip active to used via the
// store's conditional update, then write the check-in record.  Flipping
// first means the conditional update is the race arbiter: of any number
// of concurrent calls on the same ticket, exactly one reaches the
// insert.  If the insert then fails, the divergence is reported as
// ErrPartialFailure rather than unwinding the flip, and stays visible
// through ListUnreconciled.
func (s *TicketService) CheckIn(ctx context.Context, ticketID, eventID string) (*model.Checkin, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("%w: ticket_id is required", ErrValidation)
	}
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("%w: load ticket: %v", ErrStoreUnavailable, err)
	}
	if eventID != "" && eventID != t.EventID {
		return nil, fmt.Errorf("%w: ticket belongs to a different event", ErrValidation)
	}
	if t.Status == model.TicketUsed {
		return nil, fmt.Errorf("%w: ticket %s", ErrAlreadyCheckedIn, t.TicketNumber)
	}

	won, err := s.tickets.MarkUsed(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: mark ticket used: %v", ErrStoreUnavailable, err)
	}
	if !won {
		// Lost the race to a concurrent scan of the same ticket.
		return nil, fmt.Errorf("%w: ticket %s", ErrAlreadyCheckedIn, t.TicketNumber)
	}

	rec := &model.Checkin{
		ID:          uuid.NewString(),
		EventID:     t.EventID,
		TicketID:    t.ID,
		UserID:      t.UserID,
		CheckedInAt: time.Now().UTC(),
	}
	if err := s.checkins.Create(ctx, rec); err != nil {
		// The ticket is already used with no check-in row behind it.
		return nil, fmt.Errorf("%w: ticket %s marked used but check-in record failed: %v", ErrPartialFailure, t.ID, err)
	}

	if s.pub != nil {
		ev := queue.CheckinRecordedEvent{
			CheckinID:    rec.ID,
			EventID:      rec.EventID,
			TicketID:     rec.TicketID,
			TicketNumber: t.TicketNumber,
			HolderID:     rec.UserID,
			Price:        t.Price,
			CheckedInAt:  rec.CheckedInAt.Format(time.RFC3339),
		}
		if err := s.pub.PublishCheckinRecorded(ctx, ev); err != nil {
			log.Printf("checkin: publish event failed: %v", err)
		}
	}
	return rec, nil
}

// GetCheckinStats aggregates redemption progress for an event.  The
// denominator of the rate is floored at 1 so an event with zero
// tickets reports a rate of 0 instead of NaN.
func (s *TicketService) GetCheckinStats(ctx context.Context, eventID string) (*model.CheckinStats, error) {
	total, err := s.tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: count tickets: %v", ErrStoreUnavailable, err)
	}
	checked, err := s.checkins.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: count check-ins: %v", ErrStoreUnavailable, err)
	}
	denom := total
	if denom < 1 {
		denom = 1
	}
	return &model.CheckinStats{
		TotalTickets: total,
		CheckedIn:    checked,
		Pending:      total - checked,
		CheckinRate:  float64(checked) / float64(denom) * 100,
	}, nil
}

// ValidationResult reports whether a ticket is currently redeemable.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Ticket *model.Ticket `json:"ticket"`
}

// Validate reports whether a ticket can still be redeemed.  A used
// ticket yields valid:false; a nonexistent ticket is ErrNotFound, not
// a negative validation.
func (s *TicketService) Validate(ctx context.Context, ticketID string) (*ValidationResult, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ticket %s", ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("%w: load ticket: %v", ErrStoreUnavailable, err)
	}
	return &ValidationResult{Valid: t.Status == model.TicketActive, Ticket: t}, nil
}

// ListCheckins returns an event's check-ins newest first with holder
// and ticket details joined in.
func (s *TicketService) ListCheckins(ctx context.Context, eventID string) ([]model.CheckinDetail, error) {
	out, err := s.checkins.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: list check-ins: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

// ListUnreconciled returns tickets stuck in the partial-failure state:
// status used with no check-in row.  Whether repair is automatic or
// manual is the integrating system's call; this service only makes the
// state detectable.
func (s *TicketService) ListUnreconciled(ctx context.Context, eventID string) ([]model.Ticket, error) {
	out, err := s.tickets.ListUnreconciled(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: list unreconciled: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}
