package model

import "time"

// Registration is a user's claim on one seat of one event.  The pair
// (EventID, UserID) is unique: a user never holds two registrations for
// the same event.
type Registration struct {
	ID        uint64    // event_registration.id
	EventID   uint64    // event_registration.event_id
	UserID    uint64    // event_registration.user_id
	CreatedAt time.Time // event_registration.created_at
}
