package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
	"github.com/officefit/office-yoga/internal/queue"
	"github.com/officefit/office-yoga/internal/repository"
)

// RegistrationStore is the slice of the registration repository the
// HTTP layer needs. Create performs the duplicate, capacity and cutoff
// checks atomically and reports each failure as its own sentinel.
type RegistrationStore interface {
	Create(ctx context.Context, eventID, userID uint64, now time.Time) (model.Registration, error)
	Delete(ctx context.Context, eventID, userID uint64) error
	UserNamesForEvent(ctx context.Context, eventID uint64) ([]string, error)
}

// RegistrationHandler serves registration create/cancel and the admin
// roster. Publish, when set, receives registration lifecycle events for
// the message broker; it is invoked after the store commit and its
// failures never affect the response. Now is the clock source, swapped
// in tests.
type RegistrationHandler struct {
	Events        EventStore
	Users         UserStore
	Registrations RegistrationStore
	Publish       func(ctx context.Context, ev queue.RegistrationEvent)
	Now           func() time.Time
}

func NewRegistrationHandler(events EventStore, users UserStore, regs RegistrationStore) *RegistrationHandler {
	if events == nil || users == nil || regs == nil {
		panic("nil store passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Events: events, Users: users, Registrations: regs, Now: time.Now}
}

type registrationReq struct {
	EventID    uint64 `json:"event_id"`
	TelegramID int64  `json:"telegram_id"`
}

// Create handles POST /event_registrations. Preconditions are checked
// in a fixed order, each with its own failure mode: event exists, user
// exists, not already registered, seats left, event not ended. The last
// three run inside one store transaction (see RegistrationStore), so
// two requests racing for the final seat cannot both commit.
func (h *RegistrationHandler) Create(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Event does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	u, err := h.Users.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	now := h.Now()
	if _, err := h.Registrations.Create(ctx, ev.Event.ID, u.ID, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User is already registered for this event"})
		case errors.Is(err, repository.ErrEventFull):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "All seats for this event are taken"})
		case errors.Is(err, repository.ErrEventEnded):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot register for an event that has already ended"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Event does not exist"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
	}

	h.publish(queue.RegistrationEvent{
		Action:     queue.ActionCreated,
		EventID:    ev.Event.ID,
		UserID:     u.ID,
		TelegramID: u.TelegramID,
		UserName:   u.Name,
		OfficeName: ev.OfficeName,
		StartsAt:   ev.Event.StartsAt().Format(model.DateTimeLayout),
		OccurredAt: now.UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, echo.Map{"message": "Successfully registered for the event"})
}

// Delete handles POST /event_registrations/delete. There is no cutoff
// on cancellation; a missing registration answers 404 with a distinct
// message from a missing user.
func (h *RegistrationHandler) Delete(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		return userLookupError(c, err)
	}

	if err := h.Registrations.Delete(ctx, req.EventID, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "You are not subscribed to this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	// Event detail is best-effort context for the payload: the
	// cancellation itself has already committed.
	var officeName, startsAt string
	if ev, err := h.Events.GetByID(ctx, req.EventID); err == nil {
		officeName = ev.OfficeName
		startsAt = ev.Event.StartsAt().Format(model.DateTimeLayout)
	}
	h.publish(queue.RegistrationEvent{
		Action:     queue.ActionCancelled,
		EventID:    req.EventID,
		UserID:     u.ID,
		TelegramID: u.TelegramID,
		UserName:   u.Name,
		OfficeName: officeName,
		StartsAt:   startsAt,
		OccurredAt: h.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "Event registration removed"})
}

// rosterEntry is one line of the admin roster: a registered user within
// one of the next upcoming events.
type rosterEntry struct {
	UserName   string `json:"user_name"`
	EventID    uint64 `json:"event_id"`
	EventDate  string `json:"event_date"`
	EventTime  string `json:"event_time"`
	OfficeName string `json:"office_name"`
}

// Roster handles GET /upcoming_event_registrations: every registrant of
// the next events, listed in event order. The two-level fetch (events,
// then per-event names) is acceptable since the event count is capped.
// An empty roster is a valid, empty list.
func (h *RegistrationHandler) Roster(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.NextEvents(ctx, h.Now(), rosterEvents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	roster := make([]rosterEntry, 0)
	for _, ev := range events {
		names, err := h.Registrations.UserNamesForEvent(ctx, ev.Event.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		for _, name := range names {
			roster = append(roster, rosterEntry{
				UserName:   name,
				EventID:    ev.Event.ID,
				EventDate:  ev.Event.Date.Format(model.DateLayout),
				EventTime:  shortClock(ev.Event.Time),
				OfficeName: ev.OfficeName,
			})
		}
	}
	return c.JSON(http.StatusOK, roster)
}

// publish forwards a lifecycle event to the broker hook, if configured.
// Delivery is fire-and-forget off the request goroutine.
func (h *RegistrationHandler) publish(ev queue.RegistrationEvent) {
	if h.Publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.Publish(ctx, ev)
	}()
}

// shortClock trims "HH:MM:SS" to "HH:MM".
func shortClock(tod string) string {
	if len(tod) >= 5 {
		return tod[:5]
	}
	return tod
}
