package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/repository"
	"github.com/css-intel/courtevent/internal/service"
)

// EventGetter is the slice of event lookup the ticket handler needs to
// verify that an event exists before issuing against it.  Satisfied by
// *repository.EventRepo.
type EventGetter interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// TicketHandler serves ticket issuance, listing and validation.
// Issuance and validation go through the lifecycle service; the
// listing endpoints read straight from the repository since they are
// pure joins with no lifecycle rules.
type TicketHandler struct {
	Svc     *service.TicketService
	Tickets *repository.TicketRepo
	Events  EventGetter
}

// NewTicketHandler constructs a TicketHandler and panics if any
// dependency is nil.
func NewTicketHandler(svc *service.TicketService, tickets *repository.TicketRepo, events EventGetter) *TicketHandler {
	if svc == nil || tickets == nil || events == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Svc: svc, Tickets: tickets, Events: events}
}

type issueReq struct {
	EventID  string  `json:"event_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Register handles POST /v1/tickets/register.  It issues tickets for
// the authenticated holder.  Quantity defaults to 1 and an omitted
// price issues free tickets; charging the event's list price is the
// client's call to make explicitly.  The event must exist; issuing
// against an unknown event is rejected here rather than creating
// orphaned tickets.
func (h *TicketHandler) Register(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body issueReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	ctx := c.Request().Context()

	if _, err := h.Events.GetByID(ctx, body.EventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	tickets, err := h.Svc.Issue(ctx, body.EventID, userID, body.Quantity, body.Price)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue tickets"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": tickets})
}

// ListMine handles GET /v1/tickets/mine.  It returns the
// authenticated holder's tickets with event details joined in, newest
// first.
func (h *TicketHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Tickets.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// ListByEvent handles GET /v1/tickets/event/:event_id.  Organizers use
// it to see every ticket sold for their event, with holder details.
func (h *TicketHandler) ListByEvent(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID := c.Param("event_id")
	ctx := c.Request().Context()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if ev.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	items, err := h.Tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Validate handles GET /v1/tickets/validate/:ticket_id.  A used
// ticket answers valid:false; an unknown ticket is 404.
func (h *TicketHandler) Validate(c echo.Context) error {
	res, err := h.Svc.Validate(c.Request().Context(), c.Param("ticket_id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": res.Valid, "data": res.Ticket})
}
