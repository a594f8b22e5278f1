package model

import "time"

// Wire layouts for dates and times.  The combined layout sorts
// lexicographically, which is what the chat front end relies on.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Event is a single scheduled session at one office.  An event is
// uniquely identified by its id, but temporally identified by the
// (date, time) pair: the two columns are combined into one instant for
// every "upcoming" comparison.  MaxParticipants is the seat cap the
// registration engine enforces.
//
// Fields:
//
//	ID              – primary key identifier.
//	Date            – session day (DATE column, midnight UTC).
//	Time            – time of day as stored by MySQL ("HH:MM:SS").
//	Coach           – free-text coach label (see Coach).
//	OfficeID        – office hosting the session.
//	MaxParticipants – seat cap enforced at registration time.
type Event struct {
	ID              uint64    // events.id
	Date            time.Time // events.date
	Time            string    // events.time
	Coach           string    // events.coach
	OfficeID        uint64    // events.office_id
	MaxParticipants int       // events.max_participants
}

// StartsAt combines the event's date and time-of-day columns into a single
// instant in the date's location.  A malformed time-of-day falls back to
// midnight, which only makes the event appear earlier and therefore never
// lets a past event pass a future-only filter.
func (e Event) StartsAt() time.Time {
	h, m, s := parseTimeOfDay(e.Time)
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), h, m, s, 0, e.Date.Location())
}

// parseTimeOfDay accepts "15:04:05" and "15:04" forms.
func parseTimeOfDay(v string) (h, m, s int) {
	if t, err := time.Parse("15:04:05", v); err == nil {
		return t.Hour(), t.Minute(), t.Second()
	}
	if t, err := time.Parse(TimeLayout, v); err == nil {
		return t.Hour(), t.Minute(), 0
	}
	return 0, 0, 0
}
