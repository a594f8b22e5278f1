// Package bot implements the Telegram front end. It is a pure REST
// client of the API: menus and button presses are translated into HTTP
// calls carrying the shared secret, and every failure surfaces as a
// human-readable chat message. The bot never touches the store.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client calls the registration API. All requests carry the shared
// secret header; the server ignores it on public paths.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// AvailableEvent mirrors one row of GET /available_events.
type AvailableEvent struct {
	EventID          uint64  `json:"event_id"`
	DateTime         string  `json:"datetime"`
	OfficeName       string  `json:"office_name"`
	Registered       int     `json:"registered_participants"`
	MaxParticipants  int     `json:"max_participants"`
	CoachName        *string `json:"coach_name"`
	CoachDescription *string `json:"coach_description"`
}

// UserEvent mirrors one row of GET /user_events.
type UserEvent struct {
	EventID         uint64 `json:"event_id"`
	EventDate       string `json:"event_date"`
	EventTime       string `json:"event_time"`
	OfficeName      string `json:"office_name"`
	Coach           string `json:"coach"`
	MaxParticipants int    `json:"max_participants"`
}

// RosterEntry mirrors one row of GET /upcoming_event_registrations.
type RosterEntry struct {
	UserName   string `json:"user_name"`
	EventID    uint64 `json:"event_id"`
	EventDate  string `json:"event_date"`
	EventTime  string `json:"event_time"`
	OfficeName string `json:"office_name"`
}

// Office mirrors one row of GET /offices.
type Office struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// RegisterUser creates the user on first contact. It reports created
// false without error when the user already exists (HTTP 409).
func (c *Client) RegisterUser(ctx context.Context, telegramID int64, name string) (created bool, err error) {
	body := map[string]any{
		"name":        name,
		"telegram_id": telegramID,
		"role":        "user",
		"info":        map[string]any{},
	}
	status, _, err := c.do(ctx, http.MethodPost, "/users", nil, body)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusCreated:
		return true, nil
	case http.StatusConflict:
		return false, nil
	default:
		return false, fmt.Errorf("create user: unexpected status %d", status)
	}
}

// UpdateUser sends a bulk profile update; nil fields are omitted and
// retain their stored values.
func (c *Client) UpdateUser(ctx context.Context, telegramID int64, name, employeeID *string) error {
	body := map[string]any{"telegram_id": telegramID}
	if name != nil {
		body["name"] = *name
	}
	if employeeID != nil {
		body["employee_id"] = *employeeID
	}
	status, _, err := c.do(ctx, http.MethodPut, "/users/update_by_telegram_id", nil, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("update user: unexpected status %d", status)
	}
	return nil
}

// AvailableEvents returns the personalized availability listing.
func (c *Client) AvailableEvents(ctx context.Context, telegramID int64) ([]AvailableEvent, error) {
	q := url.Values{"telegram_id": {strconv.FormatInt(telegramID, 10)}}
	var out []AvailableEvent
	if err := c.getJSON(ctx, "/available_events", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserEvents returns the user's own future registrations. An empty
// slice is returned when the API answers 404 with its "no events"
// message.
func (c *Client) UserEvents(ctx context.Context, telegramID int64) ([]UserEvent, error) {
	q := url.Values{"telegram_id": {strconv.FormatInt(telegramID, 10)}}
	status, data, err := c.do(ctx, http.MethodGet, "/user_events", q, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("user events: unexpected status %d", status)
	}
	var out []UserEvent
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Roster returns the registrants of the next upcoming events.
func (c *Client) Roster(ctx context.Context) ([]RosterEntry, error) {
	var out []RosterEntry
	if err := c.getJSON(ctx, "/upcoming_event_registrations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Offices returns the office catalog for the preference picker.
func (c *Client) Offices(ctx context.Context) ([]Office, error) {
	var out []Office
	if err := c.getJSON(ctx, "/offices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRegistration registers the user for the event. On a 4xx the API
// message is returned so the chat can show the specific reason (full,
// ended, duplicate).
func (c *Client) CreateRegistration(ctx context.Context, telegramID int64, eventID uint64) (ok bool, msg string, err error) {
	body := map[string]any{"telegram_id": telegramID, "event_id": eventID}
	status, data, err := c.do(ctx, http.MethodPost, "/event_registrations", nil, body)
	if err != nil {
		return false, "", err
	}
	if status == http.StatusCreated {
		return true, "", nil
	}
	return false, apiError(data), nil
}

// DeleteRegistration cancels the user's registration for the event.
func (c *Client) DeleteRegistration(ctx context.Context, telegramID int64, eventID uint64) (ok bool, msg string, err error) {
	body := map[string]any{"telegram_id": telegramID, "event_id": eventID}
	status, data, err := c.do(ctx, http.MethodPost, "/event_registrations/delete", nil, body)
	if err != nil {
		return false, "", err
	}
	if status == http.StatusOK {
		return true, "", nil
	}
	return false, apiError(data), nil
}

// SetOffice stores the user's preferred office.
func (c *Client) SetOffice(ctx context.Context, telegramID int64, officeID uint64) error {
	body := map[string]any{"office_id": officeID}
	path := "/users/office/" + strconv.FormatInt(telegramID, 10)
	status, _, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("set office: unexpected status %d", status)
	}
	return nil
}

// getJSON performs a GET expecting a 200 JSON payload.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	status, data, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, status)
	}
	return json.Unmarshal(data, out)
}

// do performs one API request with the shared secret attached and
// returns the raw status and body.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any) (int, []byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// apiError extracts the error (or message) field of a failure body.
func apiError(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "unexpected API response"
}
