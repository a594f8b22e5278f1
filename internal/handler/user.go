package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
	"github.com/officefit/office-yoga/internal/repository"
)

// UserStore is the slice of the user repository the HTTP layer needs.
// Declaring it here keeps handlers testable with in-memory fakes while
// *repository.UserRepo satisfies it in production.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
	Exists(ctx context.Context, telegramID int64) (bool, error)
	UpdateInfo(ctx context.Context, id uint64, info map[string]any) error
	Update(ctx context.Context, id uint64, upd repository.UserUpdate) error
	SetOffice(ctx context.Context, id uint64, officeID uint64) error
}

// UserHandler serves user lifecycle, profile and preference endpoints.
// InvalidateCache, when set, is called after mutations that feed the
// cached public reads (the registration-status check).
type UserHandler struct {
	Users           UserStore
	InvalidateCache func()
}

func NewUserHandler(users UserStore) *UserHandler {
	if users == nil {
		panic("nil store passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Name       string         `json:"name"`
	TelegramID int64          `json:"telegram_id"`
	EmployeeID *string        `json:"employee_id"`
	Role       string         `json:"role"`
	Info       map[string]any `json:"info"`
}

// CreateUser handles POST /users. The telegram id is the external
// identity key; creating a second user with the same id is a conflict.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.TelegramID == 0 || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, telegram_id and role are required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u := model.User{
		Name:       req.Name,
		TelegramID: req.TelegramID,
		EmployeeID: req.EmployeeID,
		Role:       req.Role,
		Info:       req.Info,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User is already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if h.InvalidateCache != nil {
		h.InvalidateCache()
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully"})
}

// GetInfo handles GET /users/info/:telegram_id and returns the raw
// profile blob, an empty object when nothing was ever stored.
func (h *UserHandler) GetInfo(c echo.Context) error {
	telegramID, err := paramTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid telegram id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}
	if u.Info == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, u.Info)
}

// UpdateInfo handles PUT /users/info/:telegram_id. The supplied object
// is shallow-merged into the stored blob: supplied keys are added or
// overwritten, keys not mentioned are retained. Non-object payloads are
// rejected without touching the store.
func (h *UserHandler) UpdateInfo(c echo.Context) error {
	telegramID, err := paramTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid telegram id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}

	var body struct {
		Info map[string]any `json:"info"`
	}
	if err := c.Bind(&body); err != nil || body.Info == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid data for the info field"})
	}

	merged := mergeInfo(u.Info, body.Info)
	if err := h.Users.UpdateInfo(ctx, u.ID, merged); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User info updated successfully"})
}

// IsRegistered handles GET /users/is_registered/:telegram_id. This is a
// public read used by the chat front end on first contact; it always
// answers 200 with a boolean.
func (h *UserHandler) IsRegistered(c echo.Context) error {
	telegramID, err := paramTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid telegram id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ok, err := h.Users.Exists(ctx, telegramID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_registered": ok})
}

type updateUserReq struct {
	TelegramID int64          `json:"telegram_id"`
	Name       *string        `json:"name"`
	EmployeeID *string        `json:"employee_id"`
	Role       *string        `json:"role"`
	Info       map[string]any `json:"info"`
}

// UpdateByTelegramID handles PUT /users/update_by_telegram_id. Every
// field besides the telegram id is optional; absent fields retain their
// prior values. Unlike UpdateInfo, a supplied info object replaces the
// blob wholesale.
func (h *UserHandler) UpdateByTelegramID(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TelegramID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telegram_id is required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, req.TelegramID)
	if err != nil {
		return userLookupError(c, err)
	}

	upd := repository.UserUpdate{
		Name:       req.Name,
		EmployeeID: req.EmployeeID,
		Role:       req.Role,
		Info:       req.Info,
	}
	if err := h.Users.Update(ctx, u.ID, upd); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User data updated successfully"})
}

// GetOffice handles GET /users/office/:telegram_id. A user without a
// preferred office answers 404 with a message rather than an error: the
// front end treats "not set" as a prompt to pick one.
func (h *UserHandler) GetOffice(c echo.Context) error {
	telegramID, err := paramTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid telegram id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}
	if u.Office == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User has no favorite office set"})
	}
	return c.JSON(http.StatusOK, echo.Map{"office_id": *u.Office})
}

// SetOffice handles PUT /users/office/:telegram_id. The value must be an
// integer id; it is deliberately not checked against the office catalog
// (small, static reference data the front end just listed).
func (h *UserHandler) SetOffice(c echo.Context) error {
	telegramID, err := paramTelegramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid telegram id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return userLookupError(c, err)
	}

	var body struct {
		OfficeID *uint64 `json:"office_id"`
	}
	// Binding rejects non-integer values (strings, fractions) outright.
	if err := c.Bind(&body); err != nil || body.OfficeID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid office id format, an integer is expected"})
	}
	if err := h.Users.SetOffice(ctx, u.ID, *body.OfficeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Favorite office updated successfully"})
}

// mergeInfo overlays src onto dst without mutating either: keys in src
// are added or overwritten, remaining dst keys are kept.
func mergeInfo(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// paramTelegramID parses the :telegram_id path parameter.
func paramTelegramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("telegram_id"), 10, 64)
}

// userLookupError maps user resolution failures to HTTP responses.
func userLookupError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

// reqContext bounds store calls to one request-scoped unit of work.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
