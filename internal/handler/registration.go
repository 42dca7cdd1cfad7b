package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/repository"
)

// RegistrationHandler serves RSVPs: interest in an event without a
// ticket.  There is deliberately no lifecycle here beyond a status
// label.
type RegistrationHandler struct {
	Registrations *repository.RegistrationRepo
	Events        *repository.EventRepo
}

// NewRegistrationHandler constructs a RegistrationHandler and panics
// if any dependency is nil.
func NewRegistrationHandler(regs *repository.RegistrationRepo, events *repository.EventRepo) *RegistrationHandler {
	if regs == nil || events == nil {
		panic("nil repository passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Registrations: regs, Events: events}
}

type rsvpReq struct {
	EventID string `json:"event_id"`
}

// Create handles POST /v1/registrations.  The event must exist.
func (h *RegistrationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body rsvpReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	ctx := c.Request().Context()

	if _, err := h.Events.GetByID(ctx, body.EventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	reg := &model.Registration{EventID: body.EventID, UserID: userID}
	if err := h.Registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered for this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create registration"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": reg})
}

// ListMine handles GET /v1/registrations/mine.
func (h *RegistrationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Registrations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load registrations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Cancel handles DELETE /v1/registrations/:id.  Only the owner may
// cancel their RSVP.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	err = h.Registrations.Cancel(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel registration"})
	}
	return c.NoContent(http.StatusNoContent)
}
