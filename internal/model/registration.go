package model

import "time"

// Registration is an RSVP: interest in an event without payment or a
// ticket.  Rows live in the `registrations` table.  Unlike tickets,
// registrations carry no lifecycle logic; status is a plain label.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  EventID      – event of interest.
//  UserID       – profile that registered.
//  Status       – registered or cancelled.
//  RegisteredAt – when the RSVP was made.
type Registration struct {
	ID           string    `json:"id"`            // registrations.id
	EventID      string    `json:"event_id"`      // registrations.event_id
	UserID       string    `json:"user_id"`       // registrations.user_id
	Status       string    `json:"status"`        // registrations.status
	RegisteredAt time.Time `json:"registered_at"` // registrations.registered_at
}
