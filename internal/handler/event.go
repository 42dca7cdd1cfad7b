package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/repository"
)

// EventHandler serves organizer CRUD and public browsing for events.
// Role enforcement happens in middleware; handlers only check that the
// authenticated user is acting on their own events where it matters.
type EventHandler struct {
	Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler and panics if the
// repository is nil.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
	if events == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

type eventReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	EventDate   string  `json:"event_date"` // RFC3339
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Capacity    *uint32 `json:"capacity"`
}

// Create handles POST /v1/events.  The authenticated organizer becomes
// the event's owner.
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body eventReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	category := strings.ToLower(strings.TrimSpace(body.Category))
	if !model.EventCategories[category] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
	}
	if body.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}
	if body.Capacity != nil && *body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	when, err := time.Parse(time.RFC3339, body.EventDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be RFC3339"})
	}

	ev := &model.Event{
		Title:       body.Title,
		Description: body.Description,
		Location:    body.Location,
		EventDate:   when.UTC(),
		Category:    category,
		Price:       body.Price,
		Capacity:    body.Capacity,
		OrganizerID: organizerID,
	}
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": ev})
}

// List handles GET /v1/events with optional category, search and
// organizer_id filters plus limit/offset pagination.
func (h *EventHandler) List(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	f := repository.EventFilter{
		Category:    strings.ToLower(strings.TrimSpace(c.QueryParam("category"))),
		Search:      strings.TrimSpace(c.QueryParam("search")),
		OrganizerID: strings.TrimSpace(c.QueryParam("organizer_id")),
		Limit:       limit,
		Offset:      offset,
	}
	items, total, err := h.Events.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list events"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"pagination": echo.Map{
			"limit":  limit,
			"offset": offset,
			"total":  total,
		},
	})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id := c.Param("id")
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ev})
}

type eventPatchReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	EventDate   *string  `json:"event_date"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Capacity    *uint32  `json:"capacity"`
	Status      *string  `json:"status"`
}

// Update handles PUT /v1/events/:id.  Only the owning organizer may
// edit; absent fields are left untouched.
func (h *EventHandler) Update(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	existing, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if existing.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var body eventPatchReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	patch := repository.EventPatch{
		Title:       body.Title,
		Description: body.Description,
		Location:    body.Location,
		Price:       body.Price,
		Capacity:    body.Capacity,
		Status:      body.Status,
	}
	if body.Category != nil {
		cat := strings.ToLower(strings.TrimSpace(*body.Category))
		if !model.EventCategories[cat] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		patch.Category = &cat
	}
	if body.Price != nil && *body.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative"})
	}
	if body.EventDate != nil {
		when, err := time.Parse(time.RFC3339, *body.EventDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be RFC3339"})
		}
		formatted := when.UTC().Format("2006-01-02 15:04:05")
		patch.EventDate = &formatted
	}

	updated, err := h.Events.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// Delete handles DELETE /v1/events/:id.  Only the owning organizer
// may delete.
func (h *EventHandler) Delete(c echo.Context) error {
	organizerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	existing, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if existing.OrganizerID != organizerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}
