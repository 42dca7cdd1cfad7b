// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckinRecordedEvent is published after a ticket is successfully
// checked in.  It carries enough information for downstream consumers
// to log, notify, or feed analytics without querying the primary
// database.
type CheckinRecordedEvent struct {
	CheckinID    string  `json:"checkin_id"`
	EventID      string  `json:"event_id"`
	TicketID     string  `json:"ticket_id"`
	TicketNumber string  `json:"ticket_number"`
	HolderID     string  `json:"holder_id"`
	Price        float64 `json:"price"`
	CheckedInAt  string  `json:"checked_in_at"`
}
