package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer starts a stub API that records the last request body
// and answers each path from the routes map.
type stubRoute struct {
	status int
	body   string
}

func newTestServer(t *testing.T, routes map[string]stubRoute) (*Client, func() map[string]any) {
	t.Helper()
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastBody = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&lastBody)
		}
		route, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(route.status)
		_, _ = w.Write([]byte(route.body))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "topsecret")
	return c, func() map[string]any { return lastBody }
}

func TestRegisterUserStatusMapping(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	status := http.StatusCreated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(status)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "topsecret")

	created, err := c.RegisterUser(context.Background(), 100, "Alice")
	if err != nil || !created {
		t.Fatalf("201: created=%v err=%v, want true,nil", created, err)
	}
	if gotKey != "topsecret" {
		t.Fatalf("missing shared secret header, got %q", gotKey)
	}
	if gotBody["name"] != "Alice" || gotBody["role"] != "user" {
		t.Fatalf("unexpected create payload: %v", gotBody)
	}

	status = http.StatusConflict
	created, err = c.RegisterUser(context.Background(), 100, "Alice")
	if err != nil || created {
		t.Fatalf("409: created=%v err=%v, want false,nil", created, err)
	}

	status = http.StatusInternalServerError
	if _, err = c.RegisterUser(context.Background(), 100, "Alice"); err == nil {
		t.Fatal("500 must surface as an error")
	}
}

func TestUserEventsTreats404AsEmpty(t *testing.T) {
	c, _ := newTestServer(t, map[string]stubRoute{
		"/user_events": {http.StatusNotFound, `{"message":"No events found for this user."}`},
	})
	events, err := c.UserEvents(context.Background(), 100)
	if err != nil {
		t.Fatalf("404 user events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("404 user events: got %d rows, want none", len(events))
	}
}

func TestAvailableEventsDecodesRows(t *testing.T) {
	c, _ := newTestServer(t, map[string]stubRoute{
		"/available_events": {http.StatusOK, `[
			{"event_id":7,"datetime":"2025-03-11 18:30:00","office_name":"HQ",
			 "registered_participants":3,"max_participants":10,
			 "coach_name":"Anna","coach_description":"Vinyasa flow"},
			{"event_id":8,"datetime":"2025-03-12 18:30:00","office_name":"North",
			 "registered_participants":0,"max_participants":10,
			 "coach_name":null,"coach_description":null}
		]`},
	})
	events, err := c.AvailableEvents(context.Background(), 100)
	if err != nil {
		t.Fatalf("available events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("rows: got %d, want 2", len(events))
	}
	if events[0].CoachName == nil || *events[0].CoachName != "Anna" {
		t.Fatalf("coach name lost in decode: %+v", events[0])
	}
	if events[1].CoachName != nil {
		t.Fatalf("null coach must decode as nil: %+v", events[1])
	}
}

func TestCreateRegistrationSurfacesAPIMessage(t *testing.T) {
	c, _ := newTestServer(t, map[string]stubRoute{
		"/event_registrations": {http.StatusBadRequest, `{"error":"All seats for this event are taken"}`},
	})
	ok, msg, err := c.CreateRegistration(context.Background(), 100, 7)
	if err != nil {
		t.Fatalf("registration: %v", err)
	}
	if ok || msg != "All seats for this event are taken" {
		t.Fatalf("got ok=%v msg=%q, want failure with API message", ok, msg)
	}
}

func TestDeleteRegistrationSuccess(t *testing.T) {
	c, lastBody := newTestServer(t, map[string]stubRoute{
		"/event_registrations/delete": {http.StatusOK, `{"message":"Event registration removed"}`},
	})
	ok, msg, err := c.DeleteRegistration(context.Background(), 100, 7)
	if err != nil || !ok || msg != "" {
		t.Fatalf("cancel: ok=%v msg=%q err=%v, want success", ok, msg, err)
	}
	body := lastBody()
	if body["event_id"] != float64(7) || body["telegram_id"] != float64(100) {
		t.Fatalf("unexpected cancel payload: %v", body)
	}
}
