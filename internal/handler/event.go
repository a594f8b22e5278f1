package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
	"github.com/officefit/office-yoga/internal/repository"
)

// Caps on the availability listings. The 8-row cap keeps the chat front
// end's inline keyboards short; 20 fills one status message.
const (
	upcomingLimit  = 20
	availableLimit = 8
	rosterEvents   = 10
)

// EventStore is the slice of the event repository the HTTP layer needs.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (repository.EventWithOffice, error)
	Upcoming(ctx context.Context, now time.Time, limit int) ([]repository.UpcomingEvent, error)
	AvailableForUser(ctx context.Context, user model.User, now time.Time, limit int) ([]repository.AvailableEvent, error)
	EventsForUser(ctx context.Context, userID uint64, now time.Time) ([]repository.UserEvent, error)
	NextEvents(ctx context.Context, now time.Time, limit int) ([]repository.EventWithOffice, error)
}

// EventHandler serves the time-windowed availability queries. Now is
// the clock source; it defaults to time.Now and is swapped in tests.
type EventHandler struct {
	Events EventStore
	Users  UserStore
	Now    func() time.Time
}

func NewEventHandler(events EventStore, users UserStore) *EventHandler {
	if events == nil || users == nil {
		panic("nil store passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Users: users, Now: time.Now}
}

// Upcoming handles GET /upcoming_events: all future events with office
// name and live registration count, ascending by start time, capped.
func (h *EventHandler) Upcoming(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.Upcoming(ctx, h.Now(), upcomingLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, events)
}

// Available handles GET /available_events?telegram_id=. The listing is
// personalized: events the user already joined are excluded and a set
// preferred office narrows the result to that office.
func (h *EventHandler) Available(c echo.Context) error {
	telegramID, err := queryTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telegram_id is required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}
	events, err := h.Events.AvailableForUser(ctx, u, h.Now(), availableLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, events)
}

// UserEvents handles GET /user_events?telegram_id=: the user's own
// future registrations with event and office detail, uncapped. An empty
// result answers 404 with a message, which the front end shows as-is.
func (h *EventHandler) UserEvents(c echo.Context) error {
	telegramID, err := queryTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telegram_id is required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}
	events, err := h.Events.EventsForUser(ctx, u.ID, h.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if len(events) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No events found for this user."})
	}
	return c.JSON(http.StatusOK, events)
}

// queryTelegramID parses the telegram_id query parameter.
func queryTelegramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.QueryParam("telegram_id"), 10, 64)
}
