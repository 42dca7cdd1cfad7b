package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/css-intel/courtevent/internal/model"
)

// RegistrationRepo provides data access to the registrations table.
// A registration is an RSVP without payment; unlike tickets there is
// no state machine here, just a status label.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a new RegistrationRepo bound to the provided database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// Create inserts a registration and populates the generated ID and
// timestamp on the provided record.  A second RSVP by the same holder
// for the same event trips the unique key and surfaces as
// ErrDuplicate.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = "registered"
	}
	const q = `INSERT INTO registrations (id, event_id, user_id, status) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, reg.ID, reg.EventID, reg.UserID, reg.Status); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return r.db.QueryRowContext(ctx, `SELECT registered_at FROM registrations WHERE id = ?`, reg.ID).Scan(&reg.RegisteredAt)
}

// ListByUser returns a holder's registrations, newest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	const q = `SELECT id, event_id, user_id, status, registered_at
	           FROM registrations WHERE user_id = ? ORDER BY registered_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel marks a registration as cancelled.  Only the owner may
// cancel; a row owned by someone else reports ErrForbidden and a
// missing row reports sql.ErrNoRows.
func (r *RegistrationRepo) Cancel(ctx context.Context, id, userID string) error {
	var owner string
	if err := r.db.QueryRowContext(ctx, `SELECT user_id FROM registrations WHERE id = ?`, id).Scan(&owner); err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	_, err := r.db.ExecContext(ctx, `UPDATE registrations SET status = 'cancelled' WHERE id = ?`, id)
	return err
}
