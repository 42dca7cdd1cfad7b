package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/css-intel/courtevent/internal/model"
)

// TicketRepo provides data access to the tickets table.  Tickets are
// inserted in batches at registration time and mutated exactly once,
// active to used, by the check-in flow.  All timestamps are stored in
// UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// InsertBatch inserts all tickets in a single multi-row statement so
// the batch either persists as a whole or fails as a whole.  Passing
// an empty slice has no effect and returns nil.  A ticket number
// collision surfaces as ErrDuplicate.
func (r *TicketRepo) InsertBatch(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (id, event_id, user_id, ticket_number, price, status, created_at) VALUES `
	args := make([]interface{}, 0, len(tickets)*7)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, t.ID, t.EventID, t.UserID, t.TicketNumber, t.Price, t.Status, t.CreatedAt.UTC())
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID returns a single ticket.  Absence is reported as
// sql.ErrNoRows so callers can distinguish it from store failures.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	const q = `SELECT id, event_id, user_id, ticket_number, price, status, created_at
	           FROM tickets WHERE id = ?`
	var t model.Ticket
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.EventID, &t.UserID, &t.TicketNumber, &t.Price, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed atomically flips a ticket from active to used.  The WHERE
// clause carries the expected prior state, so under any number of
// concurrent callers the row update succeeds for exactly one of them.
// It returns true when this caller won the transition and false when
// the ticket was already used (or does not exist).
func (r *TicketRepo) MarkUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = ? WHERE id = ? AND status = ?`,
		model.TicketUsed, id, model.TicketActive,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountByEvent returns the number of tickets issued for an event.
func (r *TicketRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// CountByEvents returns the number of tickets issued across a set of
// events.  An empty set counts zero without touching the database.
func (r *TicketRepo) CountByEvents(ctx context.Context, eventIDs []string) (int64, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	placeholders := make([]string, 0, len(eventIDs))
	args := make([]interface{}, 0, len(eventIDs))
	for _, id := range eventIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT COUNT(*) FROM tickets WHERE event_id IN (` + strings.Join(placeholders, ",") + `)`
	var n int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// SumRevenueByEvent totals the price-at-issue of every ticket for an
// event.  Tickets keep the price they were sold at, so this is the
// realized revenue even if the event price changed later.
func (r *TicketRepo) SumRevenueByEvent(ctx context.Context, eventID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price), 0) FROM tickets WHERE event_id = ?`, eventID,
	).Scan(&total)
	return total, err
}

// ListByUser returns a holder's tickets with event display fields
// joined in, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]model.TicketDetail, error) {
	const q = `SELECT t.id, t.event_id, t.user_id, t.ticket_number, t.price, t.status, t.created_at,
	                  e.title, e.location, e.event_date
	           FROM tickets t
	           JOIN events e ON e.id = t.event_id
	           WHERE t.user_id = ?
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketDetail, 0)
	for rows.Next() {
		var d model.TicketDetail
		if err := rows.Scan(
			&d.ID, &d.EventID, &d.UserID, &d.TicketNumber, &d.Price, &d.Status, &d.CreatedAt,
			&d.EventTitle, &d.EventLocation, &d.EventDate,
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

// ListByEvent returns an event's tickets with the holder's profile
// joined in, newest first.  Organizers use this to see who bought in.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]model.TicketHolderDetail, error) {
	const q = `SELECT t.id, t.event_id, t.user_id, t.ticket_number, t.price, t.status, t.created_at,
	                  p.full_name, p.email
	           FROM tickets t
	           JOIN profiles p ON p.id = t.user_id
	           WHERE t.event_id = ?
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketHolderDetail, 0)
	for rows.Next() {
		var d model.TicketHolderDetail
		if err := rows.Scan(
			&d.ID, &d.EventID, &d.UserID, &d.TicketNumber, &d.Price, &d.Status, &d.CreatedAt,
			&d.HolderName, &d.HolderEmail,
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

// ListUnreconciled returns tickets marked used that have no check-in
// row.  This state only arises when the check-in insert failed after
// the status flip succeeded; it is surfaced so an operator (or an
// outer reconciler) can decide how to repair it.
func (r *TicketRepo) ListUnreconciled(ctx context.Context, eventID string) ([]model.Ticket, error) {
	const q = `SELECT t.id, t.event_id, t.user_id, t.ticket_number, t.price, t.status, t.created_at
	           FROM tickets t
	           LEFT JOIN checkins c ON c.ticket_id = t.id
	           WHERE t.event_id = ? AND t.status = ? AND c.id IS NULL
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID, model.TicketUsed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.UserID, &t.TicketNumber, &t.Price, &t.Status, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
