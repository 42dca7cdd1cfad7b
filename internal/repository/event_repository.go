package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/css-intel/courtevent/internal/model"
)

// EventRepo provides CRUD operations for events.  Events are created
// by organizers and browsed by attendees with optional filters.  All
// timestamp fields are stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, location, event_date, category, price, capacity, organizer_id, status, created_at`

// Create inserts a new event.  The ID and CreatedAt fields are
// populated on the provided record.  Status defaults to published
// when empty.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = "published"
	}
	const q = `INSERT INTO events (id, title, description, location, event_date, category, price, capacity, organizer_id, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var capacity interface{}
	if ev.Capacity != nil {
		capacity = *ev.Capacity
	}
	if _, err := r.db.ExecContext(ctx, q,
		ev.ID, ev.Title, ev.Description, ev.Location, ev.EventDate.UTC(),
		ev.Category, ev.Price, capacity, ev.OrganizerID, ev.Status,
	); err != nil {
		return err
	}
	// Query back the row so the caller sees DB-assigned defaults.
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM events WHERE id = ?`, ev.ID).Scan(&ev.CreatedAt)
}

// GetByID returns a single event.  When no event with the given ID
// exists, ErrEventNotFound is returned.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// EventFilter describes the optional filters and pagination for
// listing events.  Search matches the title case-insensitively as a
// substring.  Limit and Offset control the page; Limit must be
// positive.
type EventFilter struct {
	Category    string
	Search      string
	OrganizerID string
	Limit       int
	Offset      int
}

// List returns events matching the filter ordered by event date
// ascending, along with the total number of matching rows so callers
// can paginate.  When nothing matches, an empty slice is returned.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	where := []string{}
	args := []any{}

	if f.Category != "" && f.Category != "all" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}
	if f.OrganizerID != "" {
		where = append(where, "organizer_id = ?")
		args = append(args, f.OrganizerID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + eventColumns + ` FROM events WHERE ` + cond + `
	            ORDER BY event_date ASC
	            LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Event, 0, f.Limit)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByOrganizer returns every event created by the given organizer,
// newest event date first is not required here; dashboard views want
// creation order, so rows come back ordered by created_at descending.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EventPatch carries the updatable fields of an event.  Nil fields are
// left untouched.  Update builds the SET clause dynamically so a
// partial edit does not clobber other columns.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	EventDate   *string // RFC3339; parsed by the handler before reaching here
	Category    *string
	Price       *float64
	Capacity    *uint32
	Status      *string
}

// Update applies a partial patch to an event.  It returns
// ErrEventNotFound when the event does not exist and the updated row
// on success.  An empty patch is a no-op that still verifies
// existence.
func (r *EventRepo) Update(ctx context.Context, id string, p EventPatch) (*model.Event, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.EventDate != nil {
		add("event_date", *p.EventDate)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Capacity != nil {
		add("capacity", *p.Capacity)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if len(set) > 0 {
		q := `UPDATE events SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	// Read back the row; a missing event surfaces here as ErrEventNotFound.
	return r.GetByID(ctx, id)
}

// Delete removes an event.  It returns ErrEventNotFound when no row
// was deleted.  Tickets and check-ins referencing the event are left
// in place; the store schema owns referential behavior.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*model.Event, error) {
	var ev model.Event
	var capacity sql.NullInt64
	if err := s.Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.Location, &ev.EventDate,
		&ev.Category, &ev.Price, &capacity, &ev.OrganizerID, &ev.Status, &ev.CreatedAt,
	); err != nil {
		return nil, err
	}
	if capacity.Valid {
		c := uint32(capacity.Int64)
		ev.Capacity = &c
	}
	return &ev, nil
}
