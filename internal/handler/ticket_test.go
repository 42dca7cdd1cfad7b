package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/repository"
	"github.com/css-intel/courtevent/internal/service"
)

type memEventStore struct {
	events map[string]*model.Event
}

func (m *memEventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func newTicketTestEnv(t *testing.T, events ...*model.Event) *TicketHandler {
	t.Helper()
	es := &memEventStore{events: map[string]*model.Event{}}
	for _, ev := range events {
		es.events[ev.ID] = ev
	}
	tickets := &memTicketStore{tickets: map[string]*model.Ticket{}}
	svc := service.NewTicketService(tickets, &memCheckinStore{}, nil)
	return NewTicketHandler(svc, repository.NewTicketRepo(nil), es)
}

func doRegister(h *TicketHandler, userID, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	_ = h.Register(c)
	return rec
}

func decodeTickets(t *testing.T, rec *httptest.ResponseRecorder) []model.Ticket {
	t.Helper()
	var resp struct {
		Data []model.Ticket `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp.Data
}

// An omitted price issues free tickets even when the event carries a
// list price; charging it is an explicit client decision.
func TestRegisterOmittedPriceIssuesFreeTickets(t *testing.T) {
	h := newTicketTestEnv(t, &model.Event{ID: "ev-1", Title: "Conf", Price: 10})

	rec := doRegister(h, "user-1", `{"event_id":"ev-1","quantity":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	tickets := decodeTickets(t, rec)
	if len(tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(tickets))
	}
	if tickets[0].Price != 0 {
		t.Errorf("ticket price = %v, want 0 when price omitted", tickets[0].Price)
	}
}

func TestRegisterExplicitPrice(t *testing.T) {
	h := newTicketTestEnv(t, &model.Event{ID: "ev-1", Title: "Conf", Price: 10})

	rec := doRegister(h, "user-1", `{"event_id":"ev-1","quantity":2,"price":25.50}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	tickets := decodeTickets(t, rec)
	if len(tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(tickets))
	}
	for _, tk := range tickets {
		if tk.Price != 25.50 {
			t.Errorf("ticket price = %v, want 25.50", tk.Price)
		}
	}
}

func TestRegisterDefaultsQuantityToOne(t *testing.T) {
	h := newTicketTestEnv(t, &model.Event{ID: "ev-1", Title: "Conf"})

	rec := doRegister(h, "user-1", `{"event_id":"ev-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	if tickets := decodeTickets(t, rec); len(tickets) != 1 {
		t.Errorf("got %d tickets, want 1", len(tickets))
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	h := newTicketTestEnv(t)

	rec := doRegister(h, "user-1", `{"event_id":"nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRegisterMissingEventID(t *testing.T) {
	h := newTicketTestEnv(t)

	rec := doRegister(h, "user-1", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
