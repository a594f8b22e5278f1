package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officefit/office-yoga/internal/model"
	"github.com/officefit/office-yoga/internal/repository"
)

// fakeStore is an in-memory stand-in for every repository interface the
// handlers consume. It mirrors the store semantics the SQL layer
// provides: unique telegram ids, the unique (event, user) registration
// pair, capacity and cutoff enforcement inside Create, and the
// time-windowed views.
type fakeStore struct {
	users   []model.User
	offices []model.Office
	coaches []model.Coach
	events  []model.Event
	regs    []model.Registration

	nextUserID uint64
	nextRegID  uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextUserID: 1, nextRegID: 1}
}

// ----- UserStore -----

func (s *fakeStore) Create(ctx context.Context, u *model.User) error {
	for _, existing := range s.users {
		if existing.TelegramID == u.TelegramID {
			return repository.ErrUserExists
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users = append(s.users, *u)
	return nil
}

func (s *fakeStore) GetByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	for _, u := range s.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeStore) Exists(ctx context.Context, telegramID int64) (bool, error) {
	_, err := s.GetByTelegramID(ctx, telegramID)
	return err == nil, nil
}

func (s *fakeStore) UpdateInfo(ctx context.Context, id uint64, info map[string]any) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Info = info
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (s *fakeStore) Update(ctx context.Context, id uint64, upd repository.UserUpdate) error {
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if upd.Name != nil {
			s.users[i].Name = *upd.Name
		}
		if upd.EmployeeID != nil {
			s.users[i].EmployeeID = upd.EmployeeID
		}
		if upd.Role != nil {
			s.users[i].Role = *upd.Role
		}
		if upd.Info != nil {
			s.users[i].Info = upd.Info
		}
		return nil
	}
	return repository.ErrUserNotFound
}

func (s *fakeStore) SetOffice(ctx context.Context, id uint64, officeID uint64) error {
	for i := range s.users {
		if s.users[i].ID == id {
			v := officeID
			s.users[i].Office = &v
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// ----- CoachStore / OfficeStore -----

func (s *fakeStore) List(ctx context.Context) ([]model.Coach, error) {
	return s.coaches, nil
}

// officeCatalog adapts the fake to OfficeStore, whose List signature
// collides with CoachStore's.
type officeCatalog struct{ s *fakeStore }

func (o officeCatalog) List(ctx context.Context) ([]model.Office, error) {
	return o.s.offices, nil
}

// ----- EventStore -----

func (s *fakeStore) GetByID(ctx context.Context, id uint64) (repository.EventWithOffice, error) {
	for _, e := range s.events {
		if e.ID == id {
			return repository.EventWithOffice{Event: e, OfficeName: s.officeName(e.OfficeID)}, nil
		}
	}
	return repository.EventWithOffice{}, repository.ErrEventNotFound
}

func (s *fakeStore) Upcoming(ctx context.Context, now time.Time, limit int) ([]repository.UpcomingEvent, error) {
	events := s.futureEvents(now, false)
	out := make([]repository.UpcomingEvent, 0, limit)
	for _, e := range events {
		if len(out) == limit {
			break
		}
		out = append(out, repository.UpcomingEvent{
			EventID:         e.ID,
			DateTime:        e.StartsAt().Format(model.DateTimeLayout),
			OfficeName:      s.officeName(e.OfficeID),
			Registered:      s.countRegs(e.ID),
			MaxParticipants: e.MaxParticipants,
		})
	}
	return out, nil
}

func (s *fakeStore) AvailableForUser(ctx context.Context, user model.User, now time.Time, limit int) ([]repository.AvailableEvent, error) {
	events := s.futureEvents(now, false)
	out := make([]repository.AvailableEvent, 0, limit)
	for _, e := range events {
		if len(out) == limit {
			break
		}
		if s.isRegistered(e.ID, user.ID) {
			continue
		}
		if user.Office != nil && e.OfficeID != *user.Office {
			continue
		}
		av := repository.AvailableEvent{
			EventID:         e.ID,
			DateTime:        e.StartsAt().Format(model.DateTimeLayout),
			OfficeName:      s.officeName(e.OfficeID),
			Registered:      s.countRegs(e.ID),
			MaxParticipants: e.MaxParticipants,
		}
		for _, co := range s.coaches {
			if co.Name == e.Coach {
				name := co.Name
				av.CoachName = &name
				av.CoachDescription = co.Description
				break
			}
		}
		out = append(out, av)
	}
	return out, nil
}

func (s *fakeStore) EventsForUser(ctx context.Context, userID uint64, now time.Time) ([]repository.UserEvent, error) {
	events := s.futureEvents(now, true)
	out := make([]repository.UserEvent, 0)
	for _, e := range events {
		if !s.isRegistered(e.ID, userID) {
			continue
		}
		out = append(out, repository.UserEvent{
			EventID:         e.ID,
			EventDate:       e.Date.Format(model.DateLayout),
			EventTime:       shortClock(e.Time),
			OfficeName:      s.officeName(e.OfficeID),
			Coach:           e.Coach,
			MaxParticipants: e.MaxParticipants,
		})
	}
	return out, nil
}

func (s *fakeStore) NextEvents(ctx context.Context, now time.Time, limit int) ([]repository.EventWithOffice, error) {
	events := s.futureEvents(now, true)
	out := make([]repository.EventWithOffice, 0, limit)
	for _, e := range events {
		if len(out) == limit {
			break
		}
		out = append(out, repository.EventWithOffice{Event: e, OfficeName: s.officeName(e.OfficeID)})
	}
	return out, nil
}

// ----- RegistrationStore -----

func (s *fakeStore) CreateRegistration(ctx context.Context, eventID, userID uint64, now time.Time) (model.Registration, error) {
	ev, err := s.GetByID(ctx, eventID)
	if err != nil {
		return model.Registration{}, err
	}
	if s.isRegistered(eventID, userID) {
		return model.Registration{}, repository.ErrAlreadyRegistered
	}
	if s.countRegs(eventID) >= ev.Event.MaxParticipants {
		return model.Registration{}, repository.ErrEventFull
	}
	if !ev.Event.StartsAt().After(now) {
		return model.Registration{}, repository.ErrEventEnded
	}
	reg := model.Registration{ID: s.nextRegID, EventID: eventID, UserID: userID, CreatedAt: now}
	s.nextRegID++
	s.regs = append(s.regs, reg)
	return reg, nil
}

func (s *fakeStore) DeleteRegistration(ctx context.Context, eventID, userID uint64) error {
	for i, r := range s.regs {
		if r.EventID == eventID && r.UserID == userID {
			s.regs = append(s.regs[:i], s.regs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotRegistered
}

func (s *fakeStore) UserNamesForEvent(ctx context.Context, eventID uint64) ([]string, error) {
	names := make([]string, 0)
	for _, r := range s.regs {
		if r.EventID != eventID {
			continue
		}
		for _, u := range s.users {
			if u.ID == r.UserID {
				names = append(names, u.Name)
				break
			}
		}
	}
	return names, nil
}

// regStore adapts the fake's registration methods to the
// RegistrationStore interface, whose Create/Delete names collide with
// UserStore's.
type regStore struct{ s *fakeStore }

func (r regStore) Create(ctx context.Context, eventID, userID uint64, now time.Time) (model.Registration, error) {
	return r.s.CreateRegistration(ctx, eventID, userID, now)
}
func (r regStore) Delete(ctx context.Context, eventID, userID uint64) error {
	return r.s.DeleteRegistration(ctx, eventID, userID)
}
func (r regStore) UserNamesForEvent(ctx context.Context, eventID uint64) ([]string, error) {
	return r.s.UserNamesForEvent(ctx, eventID)
}

// ----- internals -----

func (s *fakeStore) futureEvents(now time.Time, strict bool) []model.Event {
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		starts := e.StartsAt()
		if strict && !starts.After(now) {
			continue
		}
		if !strict && starts.Before(now) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt().Before(out[j].StartsAt()) })
	return out
}

func (s *fakeStore) officeName(id uint64) string {
	for _, o := range s.offices {
		if o.ID == id {
			return o.Name
		}
	}
	return ""
}

func (s *fakeStore) countRegs(eventID uint64) int {
	n := 0
	for _, r := range s.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (s *fakeStore) isRegistered(eventID, userID uint64) bool {
	for _, r := range s.regs {
		if r.EventID == eventID && r.UserID == userID {
			return true
		}
	}
	return false
}

// ----- request helpers -----

// newTestContext builds an echo context for a request. Path params are
// set by callers on the returned context before invoking the handler.
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedUser inserts a user directly into the fake and returns it.
func seedUser(t *testing.T, s *fakeStore, telegramID int64, name string) model.User {
	t.Helper()
	u := model.User{Name: name, TelegramID: telegramID, Role: "user"}
	if err := s.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
