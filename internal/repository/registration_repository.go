package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/officefit/office-yoga/internal/model"
)

// RegistrationRepo manages rows of the event_registration table. The
// create path is the one genuine concurrency hazard of the system: two
// requests racing for the last seat of an event must not both commit.
// Create therefore runs its duplicate, capacity and cutoff checks inside
// a single transaction with the event row locked, so concurrent inserts
// for the same event serialize on the capacity count.
type RegistrationRepo struct{ DB *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{DB: db} }

// Create registers the user for the event, enforcing in order:
//
//  1. the (event, user) pair holds no registration yet -> ErrAlreadyRegistered
//  2. the registration count is below max_participants -> ErrEventFull
//  3. the event's combined date and time is still in the future -> ErrEventEnded
//
// The event row is re-read under SELECT ... FOR UPDATE inside the
// transaction, so the capacity count cannot move between the check and
// the insert. Callers are expected to have resolved the event and user
// beforehand; a vanished event still maps to ErrEventNotFound here.
func (r *RegistrationRepo) Create(ctx context.Context, eventID, userID uint64, now time.Time) (model.Registration, error) {
	var reg model.Registration

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return reg, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the event row for the duration of the transaction.
	var ev model.Event
	err = tx.QueryRowContext(ctx,
		"SELECT id, date, time, coach, office_id, max_participants FROM events WHERE id=? FOR UPDATE",
		eventID).Scan(&ev.ID, &ev.Date, &ev.Time, &ev.Coach, &ev.OfficeID, &ev.MaxParticipants)
	if err == sql.ErrNoRows {
		return reg, ErrEventNotFound
	}
	if err != nil {
		return reg, err
	}

	var existing int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registration WHERE event_id=? AND user_id=?",
		eventID, userID).Scan(&existing); err != nil {
		return reg, err
	}
	if existing > 0 {
		return reg, ErrAlreadyRegistered
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registration WHERE event_id=?", eventID).Scan(&count); err != nil {
		return reg, err
	}
	if count >= ev.MaxParticipants {
		return reg, ErrEventFull
	}

	if !ev.StartsAt().After(now) {
		return reg, ErrEventEnded
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO event_registration (event_id, user_id, created_at) VALUES (?,?,?)",
		eventID, userID, now)
	if err != nil {
		// The unique (event_id, user_id) key backs up the in-transaction
		// duplicate check.
		if isDuplicateKey(err) {
			return reg, ErrAlreadyRegistered
		}
		return reg, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return reg, err
	}
	if err := tx.Commit(); err != nil {
		return reg, err
	}
	committed = true

	reg = model.Registration{ID: uint64(id), EventID: eventID, UserID: userID, CreatedAt: now}
	return reg, nil
}

// Delete removes the user's registration for the event. There is no
// cutoff on cancellation: a seat may be released even after the event
// has started. Zero affected rows map to ErrNotRegistered.
func (r *RegistrationRepo) Delete(ctx context.Context, eventID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM event_registration WHERE event_id=? AND user_id=?", eventID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

// UserNamesForEvent returns the display names of everyone registered for
// the event, in registration order. Used by the admin roster.
func (r *RegistrationRepo) UserNamesForEvent(ctx context.Context, eventID uint64) ([]string, error) {
	const q = `SELECT u.name
               FROM event_registration r
               JOIN users u ON u.id = r.user_id
               WHERE r.event_id = ?
               ORDER BY r.id ASC`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
