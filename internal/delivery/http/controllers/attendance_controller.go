package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type AttendanceController struct {
	Logger       *slog.Logger
	Reservations domain.ReservationService
	Queries      domain.EventQueryService
}

func NewAttendanceController(logger *slog.Logger, reservations domain.ReservationService, queries domain.EventQueryService) *AttendanceController {
	return &AttendanceController{
		Logger:       logger,
		Reservations: reservations,
		Queries:      queries,
	}
}

// ReservationResponse is the success payload for join/leave operations.
// swagger:model ReservationResponse
type ReservationResponse struct {
	AttendeesCount int `json:"attendees_count"`
}

// Join godoc
// @Summary Join an event
// @Description Registers the authenticated user as an attendee. Admission is atomic: capacity and duplicate checks travel with the mutation.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data: ReservationResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_attending | event_full"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [post]
func (c *AttendanceController) Join(w http.ResponseWriter, r *http.Request) {
	eventID, actor, ok := c.reservationArgs(w, r)
	if !ok {
		return
	}

	count, err := c.Reservations.Join(r.Context(), eventID, actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrAlreadyAttending):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyAttending, "already attending this event")
		case errors.Is(err, domain.ErrEventFull):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFull, "event is at capacity")
		case errors.Is(err, domain.ErrUnableToJoin):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInternalError, "unable to join event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ReservationResponse{AttendeesCount: count})
}

// Leave godoc
// @Summary Leave an event
// @Description Withdraws the authenticated user from the event's attendee set.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: ReservationResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_attending"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [delete]
func (c *AttendanceController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, actor, ok := c.reservationArgs(w, r)
	if !ok {
		return
	}

	count, err := c.Reservations.Leave(r.Context(), eventID, actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrNotAttending):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeNotAttending, "not attending this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReservationResponse{AttendeesCount: count})
}

// ListAttendees godoc
// @Summary List event attendees
// @Description Returns the attendee user IDs. Only the event owner may list them.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: []string"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees [get]
func (c *AttendanceController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, actor, ok := c.reservationArgs(w, r)
	if !ok {
		return
	}

	userIDs, err := c.Queries.ListAttendees(r.Context(), eventID, actor.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event owner may list attendees")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, userIDs)
}

// reservationArgs extracts and validates the event ID and the authenticated
// principal shared by all attendance handlers.
func (c *AttendanceController) reservationArgs(w http.ResponseWriter, r *http.Request) (string, domain.Principal, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", domain.Principal{}, false
	}
	if !helpers.IsUUID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", domain.Principal{}, false
	}
	actor, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", domain.Principal{}, false
	}
	return eventID, actor, true
}
