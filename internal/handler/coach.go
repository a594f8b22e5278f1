package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
)

// CoachStore lists the coach catalog.
type CoachStore interface {
	List(ctx context.Context) ([]model.Coach, error)
}

// CoachHandler serves the public coach catalog.
type CoachHandler struct {
	Coaches CoachStore
}

func NewCoachHandler(coaches CoachStore) *CoachHandler {
	if coaches == nil {
		panic("nil store passed to NewCoachHandler")
	}
	return &CoachHandler{Coaches: coaches}
}

type coachDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ListCoaches handles GET /coaches.
func (h *CoachHandler) ListCoaches(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	coaches, err := h.Coaches.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	out := make([]coachDTO, 0, len(coaches))
	for _, co := range coaches {
		out = append(out, coachDTO{ID: co.ID, Name: co.Name, Description: co.Description})
	}
	return c.JSON(http.StatusOK, out)
}
