package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/repository"
	"github.com/css-intel/courtevent/internal/service"
)

// AnalyticsHandler serves read-only aggregation endpoints: per-event
// attendance and revenue, and the organizer dashboard.  Everything
// here is summation over rows the other handlers wrote; no state is
// mutated.
type AnalyticsHandler struct {
	Svc     *service.TicketService
	Events  *repository.EventRepo
	Tickets *repository.TicketRepo
}

// NewAnalyticsHandler constructs an AnalyticsHandler and panics if any
// dependency is nil.
func NewAnalyticsHandler(svc *service.TicketService, events *repository.EventRepo, tickets *repository.TicketRepo) *AnalyticsHandler {
	if svc == nil || events == nil || tickets == nil {
		panic("nil dependency passed to NewAnalyticsHandler")
	}
	return &AnalyticsHandler{Svc: svc, Events: events, Tickets: tickets}
}

// EventAnalytics handles GET /v1/analytics/event/:event_id.  The
// attendance block is the same aggregation as the check-in stats
// endpoint; revenue totals the price-at-issue of every ticket.
func (h *AnalyticsHandler) EventAnalytics(c echo.Context) error {
	eventID := c.Param("event_id")
	ctx := c.Request().Context()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	stats, err := h.Svc.GetCheckinStats(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
	}
	revenue, err := h.Tickets.SumRevenueByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load revenue"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"analytics": echo.Map{
			"event": ev,
			"attendance": echo.Map{
				"total_registered": stats.TotalTickets,
				"total_checked_in": stats.CheckedIn,
				"pending":          stats.Pending,
				"checkin_rate":     stats.CheckinRate,
			},
			"revenue": echo.Map{
				"total":    revenue,
				"currency": "USD",
			},
		},
	})
}

// OrganizerStats handles GET /v1/analytics/organizer.  It reports the
// authenticated organizer's event count, total attendees across all
// their events (membership filter over the event ids) and the events
// themselves.
func (h *AnalyticsHandler) OrganizerStats(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	events, err := h.Events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load events"})
	}
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	attendees, err := h.Tickets.CountByEvents(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not count attendees"})
	}

	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stats": echo.Map{
			"total_events":    len(events),
			"total_attendees": attendees,
			"events":          events,
		},
	})
}
