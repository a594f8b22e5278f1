package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/officefit/office-yoga/internal/model"
)

// EventRepo provides access to the events table and the personalized,
// time-filtered views built on top of it. Every "future" filter combines
// the date and time columns into one instant with MySQL's TIMESTAMP()
// and compares it against the caller-supplied clock reading, so the
// notion of "now" is decided exactly once per request.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// UpcomingEvent is one row of the unfiltered upcoming listing: a future
// event annotated with its office and live registration count.
type UpcomingEvent struct {
	EventID         uint64 `json:"event_id"`
	DateTime        string `json:"datetime"`
	OfficeName      string `json:"office_name"`
	Registered      int    `json:"registered_participants"`
	MaxParticipants int    `json:"max_participants"`
}

// AvailableEvent extends UpcomingEvent with coach metadata resolved by
// matching the event's free-text coach label against coaches.name. Both
// coach fields are null when no row matches the label.
type AvailableEvent struct {
	EventID          uint64  `json:"event_id"`
	DateTime         string  `json:"datetime"`
	OfficeName       string  `json:"office_name"`
	Registered       int     `json:"registered_participants"`
	MaxParticipants  int     `json:"max_participants"`
	CoachName        *string `json:"coach_name"`
	CoachDescription *string `json:"coach_description"`
}

// UserEvent is one row of a user's own future registrations.
type UserEvent struct {
	EventID         uint64 `json:"event_id"`
	EventDate       string `json:"event_date"`
	EventTime       string `json:"event_time"`
	OfficeName      string `json:"office_name"`
	Coach           string `json:"coach"`
	MaxParticipants int    `json:"max_participants"`
}

// GetByID fetches a single event with its office name resolved, so
// consumers (registration handler, queue payloads) never need a second
// lookup. Missing rows map to ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (EventWithOffice, error) {
	var rec EventWithOffice
	e := &rec.Event
	err := r.DB.QueryRowContext(ctx,
		`SELECT e.id, e.date, e.time, e.coach, e.office_id, e.max_participants, o.name
         FROM events e
         JOIN offices o ON o.id = e.office_id
         WHERE e.id=? LIMIT 1`,
		id).Scan(&e.ID, &e.Date, &e.Time, &e.Coach, &e.OfficeID, &e.MaxParticipants, &rec.OfficeName)
	if err == sql.ErrNoRows {
		return rec, ErrEventNotFound
	}
	return rec, err
}

// Upcoming returns future events ascending by start time, capped at
// limit, each with office name and live registration count.
func (r *EventRepo) Upcoming(ctx context.Context, now time.Time, limit int) ([]UpcomingEvent, error) {
	const q = `SELECT e.id, TIMESTAMP(e.date, e.time) AS starts_at, o.name,
                      COUNT(r.id), e.max_participants
               FROM events e
               JOIN offices o ON o.id = e.office_id
               LEFT JOIN event_registration r ON r.event_id = e.id
               WHERE TIMESTAMP(e.date, e.time) >= ?
               GROUP BY e.id, starts_at, o.name, e.max_participants
               ORDER BY starts_at ASC
               LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UpcomingEvent, 0, limit)
	for rows.Next() {
		var ev UpcomingEvent
		var startsAt time.Time
		if err := rows.Scan(&ev.EventID, &startsAt, &ev.OfficeName, &ev.Registered, &ev.MaxParticipants); err != nil {
			return nil, err
		}
		ev.DateTime = startsAt.Format(model.DateTimeLayout)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AvailableForUser returns future events the user could still join:
// events they are already registered for are excluded, and when the user
// has a preferred office the listing is restricted to it. Coach metadata
// is left-joined by name and stays null for unmatched labels.
func (r *EventRepo) AvailableForUser(ctx context.Context, user model.User, now time.Time, limit int) ([]AvailableEvent, error) {
	q := `SELECT e.id, TIMESTAMP(e.date, e.time) AS starts_at, o.name,
                 COUNT(r.id), e.max_participants, c.name, c.description
          FROM events e
          JOIN offices o ON o.id = e.office_id
          LEFT JOIN event_registration r ON r.event_id = e.id
          LEFT JOIN coaches c ON c.name = e.coach
          WHERE TIMESTAMP(e.date, e.time) >= ?
            AND e.id NOT IN (SELECT event_id FROM event_registration WHERE user_id = ?)`
	args := []any{now, user.ID}
	if user.Office != nil {
		q += ` AND e.office_id = ?`
		args = append(args, *user.Office)
	}
	q += ` GROUP BY e.id, starts_at, o.name, e.max_participants, c.name, c.description
           ORDER BY starts_at ASC
           LIMIT ?`
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AvailableEvent, 0, limit)
	for rows.Next() {
		var ev AvailableEvent
		var startsAt time.Time
		var coachName, coachDesc sql.NullString
		if err := rows.Scan(&ev.EventID, &startsAt, &ev.OfficeName, &ev.Registered,
			&ev.MaxParticipants, &coachName, &coachDesc); err != nil {
			return nil, err
		}
		ev.DateTime = startsAt.Format(model.DateTimeLayout)
		if coachName.Valid {
			v := coachName.String
			ev.CoachName = &v
		}
		if coachDesc.Valid {
			v := coachDesc.String
			ev.CoachDescription = &v
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// EventsForUser returns all of the user's registrations whose event
// starts strictly in the future, with event and office detail. No cap.
func (r *EventRepo) EventsForUser(ctx context.Context, userID uint64, now time.Time) ([]UserEvent, error) {
	const q = `SELECT r.event_id, e.date, e.time, o.name, e.coach, e.max_participants
               FROM event_registration r
               JOIN events e ON e.id = r.event_id
               JOIN offices o ON o.id = e.office_id
               WHERE r.user_id = ? AND TIMESTAMP(e.date, e.time) > ?
               ORDER BY e.date ASC, e.time ASC`
	rows, err := r.DB.QueryContext(ctx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UserEvent, 0)
	for rows.Next() {
		var ev UserEvent
		var date time.Time
		var tod string
		if err := rows.Scan(&ev.EventID, &date, &tod, &ev.OfficeName, &ev.Coach, &ev.MaxParticipants); err != nil {
			return nil, err
		}
		ev.EventDate = date.Format(model.DateLayout)
		ev.EventTime = shortTime(tod)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// EventWithOffice pairs an event with its office name for the admin
// roster's two-level fetch.
type EventWithOffice struct {
	Event      model.Event
	OfficeName string
}

// NextEvents returns the next limit future events ascending by start
// time, with office names.
func (r *EventRepo) NextEvents(ctx context.Context, now time.Time, limit int) ([]EventWithOffice, error) {
	const q = `SELECT e.id, e.date, e.time, e.coach, e.office_id, e.max_participants, o.name
               FROM events e
               JOIN offices o ON o.id = e.office_id
               WHERE TIMESTAMP(e.date, e.time) > ?
               ORDER BY e.date ASC, e.time ASC
               LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]EventWithOffice, 0, limit)
	for rows.Next() {
		var rec EventWithOffice
		e := &rec.Event
		if err := rows.Scan(&e.ID, &e.Date, &e.Time, &e.Coach, &e.OfficeID, &e.MaxParticipants, &rec.OfficeName); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// shortTime trims a stored "HH:MM:SS" time-of-day to the "HH:MM" wire
// form used by the front end.
func shortTime(tod string) string {
	if len(tod) >= 5 {
		return tod[:5]
	}
	return tod
}
