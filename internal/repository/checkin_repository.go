package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/css-intel/courtevent/internal/model"
)

// CheckinRepo provides data access to the checkins table.  Check-in
// rows are written once and never updated; the ticket_id column
// carries a unique index so the store itself refuses a second
// check-in for the same ticket.
type CheckinRepo struct {
	db *sql.DB
}

// NewCheckinRepo returns a new CheckinRepo bound to the provided database.
func NewCheckinRepo(db *sql.DB) *CheckinRepo { return &CheckinRepo{db: db} }

// Create inserts a check-in record.  A duplicate ticket_id surfaces
// as ErrDuplicate.
func (r *CheckinRepo) Create(ctx context.Context, rec *model.Checkin) error {
	const q = `INSERT INTO checkins (id, event_id, ticket_id, user_id, checked_in_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.EventID, rec.TicketID, rec.UserID, rec.CheckedInAt.UTC(),
	); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// CountByEvent returns the number of check-ins recorded for an event.
func (r *CheckinRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checkins WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// ListByEvent returns an event's check-ins newest first, with the
// holder's name/email and the ticket number joined in for the staff
// screen.
func (r *CheckinRepo) ListByEvent(ctx context.Context, eventID string) ([]model.CheckinDetail, error) {
	const q = `SELECT c.id, c.event_id, c.ticket_id, c.user_id, c.checked_in_at,
	                  p.full_name, p.email, t.ticket_number
	           FROM checkins c
	           JOIN profiles p ON p.id = c.user_id
	           JOIN tickets t ON t.id = c.ticket_id
	           WHERE c.event_id = ?
	           ORDER BY c.checked_in_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CheckinDetail, 0)
	for rows.Next() {
		var d model.CheckinDetail
		if err := rows.Scan(
			&d.ID, &d.EventID, &d.TicketID, &d.UserID, &d.CheckedInAt,
			&d.HolderName, &d.HolderEmail, &d.TicketNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
