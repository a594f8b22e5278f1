package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
)

// OfficeStore lists the office catalog.
type OfficeStore interface {
	List(ctx context.Context) ([]model.Office, error)
}

// OfficeHandler serves the office catalog consumed by the chat front
// end's office picker.
type OfficeHandler struct {
	Offices OfficeStore
}

func NewOfficeHandler(offices OfficeStore) *OfficeHandler {
	if offices == nil {
		panic("nil store passed to NewOfficeHandler")
	}
	return &OfficeHandler{Offices: offices}
}

type officeDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ListOffices handles GET /offices.
func (h *OfficeHandler) ListOffices(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	offices, err := h.Offices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	out := make([]officeDTO, 0, len(offices))
	for _, o := range offices {
		out = append(out, officeDTO{ID: o.ID, Name: o.Name, Address: o.Address})
	}
	return c.JSON(http.StatusOK, out)
}
