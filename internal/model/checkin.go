package model

import "time"

// Checkin is the immutable record of a ticket having been redeemed at
// the venue.  Rows live in the `checkins` table.  A check-in record
// referencing a ticket exists iff that ticket's status is used; the
// service layer is responsible for upholding this invariant.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  EventID     – event the ticket was redeemed at.
//  TicketID    – redeemed ticket; unique, at most one check-in per ticket.
//  UserID      – holder, denormalized from the ticket at check-in time.
//  CheckedInAt – server-assigned redemption timestamp.
type Checkin struct {
	ID          string    `json:"id"`            // checkins.id
	EventID     string    `json:"event_id"`      // checkins.event_id
	TicketID    string    `json:"ticket_id"`     // checkins.ticket_id
	UserID      string    `json:"user_id"`       // checkins.user_id
	CheckedInAt time.Time `json:"checked_in_at"` // checkins.checked_in_at
}

// CheckinDetail is a check-in joined with the holder's profile and the
// ticket number, as shown on the staff check-in screen.
type CheckinDetail struct {
	Checkin
	HolderName   string `json:"holder_name"`
	HolderEmail  string `json:"holder_email"`
	TicketNumber string `json:"ticket_number"`
}

// CheckinStats summarizes redemption progress for one event.  Rate is
// a percentage; an event with zero tickets reports 0, never NaN.
type CheckinStats struct {
	TotalTickets int64   `json:"total_tickets"`
	CheckedIn    int64   `json:"checked_in"`
	Pending      int64   `json:"pending"`
	CheckinRate  float64 `json:"checkin_rate"`
}
