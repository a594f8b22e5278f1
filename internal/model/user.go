package model

import "time"

// User represents an employee record as stored in the `users` table.
// Users are keyed externally by their Telegram id, which is unique and
// stable; the numeric primary key is internal to the store.  The Info
// blob is a free-form key-value profile updated by shallow merge.
//
// Fields:
//
//	ID         – primary key identifier of the user.
//	Name       – display name taken from the chat profile.
//	TelegramID – unique external chat identifier.
//	EmployeeID – optional employee number (nil when never supplied).
//	Role       – role tag (e.g. "user", "admin").
//	Info       – free-form profile blob, stored as JSON.
//	Office     – optional preferred office id (preference only, not a
//	             capacity constraint; nil when unset).
//	CreatedAt  – timestamp of creation.
//	UpdatedAt  – timestamp of last update.
type User struct {
	ID         uint64         // users.id
	Name       string         // users.name
	TelegramID int64          // users.telegram_id
	EmployeeID *string        // users.employee_id (nullable)
	Role       string         // users.role
	Info       map[string]any // users.info (JSON)
	Office     *uint64        // users.office (nullable)
	CreatedAt  time.Time      // users.created_at
	UpdatedAt  time.Time      // users.updated_at
}
