package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Catalog domain.CatalogService
}

func NewEventController(logger *slog.Logger, catalog domain.CatalogService) *EventController {
	return &EventController{
		Logger:  logger,
		Catalog: catalog,
	}
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List published events
// @Description Returns published events ordered by sort order. Filter by type (olymp, contest, conference) or featured=true for the front-page selection.
// @Tags events
// @Produce json
// @Param type query string false "Event type" Enums(olymp, contest, conference)
// @Param featured query bool false "Only featured events"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	var events []*domain.Event
	var err error
	if r.URL.Query().Get("featured") == "true" {
		events, err = c.Catalog.ListFeatured(r.Context())
	} else {
		eventType := domain.EventType(r.URL.Query().Get("type"))
		events, err = c.Catalog.ListPublished(r.Context(), eventType)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown event type")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{slug} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get a published event by slug
// @Description Returns the published event with the given slug. Unpublished events are reported as not found, never leaked.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	event, err := c.Catalog.FindPublished(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
