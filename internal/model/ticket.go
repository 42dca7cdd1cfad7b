package model

import "time"

// Ticket statuses.  A ticket starts as active and is flipped to used
// exactly once by the check-in flow; there is no reverse transition.
const (
	TicketActive = "active"
	TicketUsed   = "used"
)

// Ticket is a unit of admission to one event, owned by one holder.
// Rows live in the `tickets` table.  Tickets are created in batches at
// registration time and never deleted in the normal flow.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  EventID      – event this ticket admits to.
//  UserID       – holder of the ticket.
//  TicketNumber – human-readable code printed on the ticket
//                 (TKT-<unix-ms>-<random suffix>).
//  Price        – price at the time of issue.
//  Status       – active or used.
//  CreatedAt    – issuance timestamp.
type Ticket struct {
	ID           string    `json:"id"`            // tickets.id
	EventID      string    `json:"event_id"`      // tickets.event_id
	UserID       string    `json:"user_id"`       // tickets.user_id
	TicketNumber string    `json:"ticket_number"` // tickets.ticket_number
	Price        float64   `json:"price"`         // tickets.price
	Status       string    `json:"status"`        // tickets.status
	CreatedAt    time.Time `json:"created_at"`    // tickets.created_at
}

// TicketDetail is a ticket joined with display fields from its event.
// It is returned when listing a holder's tickets.
type TicketDetail struct {
	Ticket
	EventTitle    string    `json:"event_title"`
	EventLocation string    `json:"event_location"`
	EventDate     time.Time `json:"event_date"`
}

// TicketHolderDetail is a ticket joined with the holder's profile.  It
// is returned when an organizer lists the tickets sold for an event.
type TicketHolderDetail struct {
	Ticket
	HolderName  string `json:"holder_name"`
	HolderEmail string `json:"holder_email"`
}
