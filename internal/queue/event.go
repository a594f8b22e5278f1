// Package queue defines message payloads exchanged over the message broker.
package queue

// Registration lifecycle actions carried in RegistrationEvent.Action.
const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
)

// RegistrationEvent is published whenever a registration is created or
// cancelled. It carries enough context for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type RegistrationEvent struct {
	Action     string `json:"action"`
	EventID    uint64 `json:"event_id"`
	UserID     uint64 `json:"user_id"`
	TelegramID int64  `json:"telegram_id"`
	UserName   string `json:"user_name"`
	OfficeName string `json:"office_name"`
	StartsAt   string `json:"starts_at"`
	OccurredAt string `json:"occurred_at"`
}
