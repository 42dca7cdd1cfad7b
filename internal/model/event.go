package model

import "time"

// Event represents a published event that attendees can register for.
// Rows live in the `events` table.  All identifiers are UUID strings
// generated by the application, and all timestamps are stored in UTC.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  Title       – display title of the event.
//  Description – free-form description text.
//  Location    – venue or address.
//  EventDate   – when the event takes place.
//  Category    – one of music, tech, business, sports, arts, other.
//  Price       – ticket price in the event's currency; zero means free.
//  Capacity    – optional maximum attendance; nil means unbounded.
//  OrganizerID – profile that created the event.
//  Status      – current state of the event (e.g. published).
//  CreatedAt   – creation timestamp.
type Event struct {
	ID          string    `json:"id"`           // events.id
	Title       string    `json:"title"`        // events.title
	Description string    `json:"description"`  // events.description
	Location    string    `json:"location"`     // events.location
	EventDate   time.Time `json:"event_date"`   // events.event_date
	Category    string    `json:"category"`     // events.category
	Price       float64   `json:"price"`        // events.price
	Capacity    *uint32   `json:"capacity"`     // events.capacity (nullable)
	OrganizerID string    `json:"organizer_id"` // events.organizer_id
	Status      string    `json:"status"`       // events.status
	CreatedAt   time.Time `json:"created_at"`   // events.created_at
}

// Event categories accepted by the API.  Anything else is rejected as
// a validation error when creating or updating an event.
var EventCategories = map[string]bool{
	"music":    true,
	"tech":     true,
	"business": true,
	"sports":   true,
	"arts":     true,
	"other":    true,
}
