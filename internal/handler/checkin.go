package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/service"
)

// CheckinHandler serves the staff check-in surface: scanning tickets,
// listing an event's check-ins, redemption stats and the
// reconciliation view.  All lifecycle rules live in the service; the
// handler only maps failure kinds onto HTTP statuses.
type CheckinHandler struct {
	Svc *service.TicketService
}

// NewCheckinHandler constructs a CheckinHandler and panics if the
// service is nil.
func NewCheckinHandler(svc *service.TicketService) *CheckinHandler {
	if svc == nil {
		panic("nil service passed to NewCheckinHandler")
	}
	return &CheckinHandler{Svc: svc}
}

type scanReq struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
}

// Scan handles POST /v1/checkin/scan.  At most one scan per ticket
// ever succeeds; a second scanner racing on the same badge gets 409.
// A check-in that flipped the ticket but failed to write the record
// answers 500 with a partial_failure flag so the operator knows the
// ticket needs reconciling, not rescanning.
func (h *CheckinHandler) Scan(c echo.Context) error {
	var body scanReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TicketID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_id is required"})
	}

	rec, err := h.Svc.CheckIn(c.Request().Context(), body.TicketID, body.EventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, service.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already checked in"})
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPartialFailure):
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":           "check-in partially applied; ticket requires reconciliation",
				"partial_failure": true,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "check-in successful",
		"data":    rec,
	})
}

// ListByEvent handles GET /v1/checkin/event/:event_id.  Newest first,
// with holder name/email and ticket number joined in.
func (h *CheckinHandler) ListByEvent(c echo.Context) error {
	items, err := h.Svc.ListCheckins(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load check-ins"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"total": len(items),
	})
}

// Stats handles GET /v1/checkin/stats/:event_id.
func (h *CheckinHandler) Stats(c echo.Context) error {
	stats, err := h.Svc.GetCheckinStats(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// Unreconciled handles GET /v1/checkin/unreconciled/:event_id.  It
// lists tickets marked used with no check-in row behind them, the
// state left by a partial check-in failure.
func (h *CheckinHandler) Unreconciled(c echo.Context) error {
	items, err := h.Svc.ListUnreconciled(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load unreconciled tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"total": len(items),
	})
}
