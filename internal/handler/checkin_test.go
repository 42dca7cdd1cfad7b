package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/service"
)

// memTicketStore backs the handler tests with an in-memory
// service.TicketStore.  MarkUsed holds the mutex across the
// read-check-write, matching the conditional UPDATE it stands in for.
type memTicketStore struct {
	mu      sync.Mutex
	tickets map[string]*model.Ticket
}

func (m *memTicketStore) InsertBatch(_ context.Context, tickets []model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range tickets {
		t := tickets[i]
		m.tickets[t.ID] = &t
	}
	return nil
}

func (m *memTicketStore) GetByID(_ context.Context, id string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *memTicketStore) MarkUsed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.Status != model.TicketActive {
		return false, nil
	}
	t.Status = model.TicketUsed
	return true, nil
}

func (m *memTicketStore) CountByEvent(_ context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *memTicketStore) ListUnreconciled(_ context.Context, eventID string) ([]model.Ticket, error) {
	return nil, nil
}

type memCheckinStore struct {
	mu        sync.Mutex
	records   []model.Checkin
	createErr error
}

func (m *memCheckinStore) Create(_ context.Context, rec *model.Checkin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memCheckinStore) CountByEvent(_ context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.records {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *memCheckinStore) ListByEvent(_ context.Context, eventID string) ([]model.CheckinDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CheckinDetail
	for _, r := range m.records {
		if r.EventID == eventID {
			out = append(out, model.CheckinDetail{Checkin: r})
		}
	}
	return out, nil
}

func newCheckinTestEnv(t *testing.T) (*CheckinHandler, *service.TicketService, *memCheckinStore) {
	t.Helper()
	tickets := &memTicketStore{tickets: map[string]*model.Ticket{}}
	checkins := &memCheckinStore{}
	svc := service.NewTicketService(tickets, checkins, nil)
	return NewCheckinHandler(svc), svc, checkins
}

func doScan(h *CheckinHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/scan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.Scan(c)
	return rec
}

func TestScanSuccess(t *testing.T) {
	h, svc, _ := newCheckinTestEnv(t)

	issued, err := svc.Issue(context.Background(), "ev-1", "user-1", 1, 10)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := doScan(h, `{"ticket_id":"`+issued[0].ID+`","event_id":"ev-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string        `json:"message"`
		Data    model.Checkin `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.TicketID != issued[0].ID {
		t.Errorf("record ticket_id = %s, want %s", resp.Data.TicketID, issued[0].ID)
	}
}

func TestScanUnknownTicket(t *testing.T) {
	h, _, _ := newCheckinTestEnv(t)

	rec := doScan(h, `{"ticket_id":"does-not-exist"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestScanMissingTicketID(t *testing.T) {
	h, _, _ := newCheckinTestEnv(t)

	rec := doScan(h, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScanTwiceConflicts(t *testing.T) {
	h, svc, _ := newCheckinTestEnv(t)

	issued, _ := svc.Issue(context.Background(), "ev-1", "user-1", 1, 0)
	body := `{"ticket_id":"` + issued[0].ID + `"}`

	if rec := doScan(h, body); rec.Code != http.StatusOK {
		t.Fatalf("first scan status = %d, want 200", rec.Code)
	}
	if rec := doScan(h, body); rec.Code != http.StatusConflict {
		t.Fatalf("second scan status = %d, want 409", rec.Code)
	}
}

func TestScanWrongEvent(t *testing.T) {
	h, svc, _ := newCheckinTestEnv(t)

	issued, _ := svc.Issue(context.Background(), "ev-1", "user-1", 1, 0)
	rec := doScan(h, `{"ticket_id":"`+issued[0].ID+`","event_id":"ev-2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestScanPartialFailure(t *testing.T) {
	h, svc, checkins := newCheckinTestEnv(t)

	issued, _ := svc.Issue(context.Background(), "ev-1", "user-1", 1, 0)
	checkins.createErr = errors.New("disk full")

	rec := doScan(h, `{"ticket_id":"`+issued[0].ID+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		PartialFailure bool `json:"partial_failure"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.PartialFailure {
		t.Error("partial_failure flag not set")
	}
}

func TestStatsEndpoint(t *testing.T) {
	h, svc, _ := newCheckinTestEnv(t)
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 4, 0)
	if _, err := svc.CheckIn(ctx, issued[0].ID, ""); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/checkin/stats/:event_id")
	c.SetParamNames("event_id")
	c.SetParamValues("ev-1")

	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Stats model.CheckinStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Stats.TotalTickets != 4 || resp.Stats.CheckedIn != 1 || resp.Stats.Pending != 3 {
		t.Errorf("stats = %+v, want 4/1/3", resp.Stats)
	}
	if resp.Stats.CheckinRate != 25 {
		t.Errorf("rate = %v, want 25", resp.Stats.CheckinRate)
	}
}

func TestListByEventEndpoint(t *testing.T) {
	h, svc, _ := newCheckinTestEnv(t)
	ctx := context.Background()

	issued, _ := svc.Issue(ctx, "ev-1", "user-1", 2, 0)
	for _, tk := range issued {
		if _, err := svc.CheckIn(ctx, tk.ID, ""); err != nil {
			t.Fatalf("CheckIn: %v", err)
		}
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/checkin/event/:event_id")
	c.SetParamNames("event_id")
	c.SetParamValues("ev-1")

	if err := h.ListByEvent(c); err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}
