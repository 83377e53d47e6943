package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

const testEventID = "0b84a351-9a05-4cc1-8b6f-0f9d5c6c8a11"

// stubReservations returns canned results for join/leave.
type stubReservations struct {
	count int
	err   error
}

func (s *stubReservations) Join(context.Context, string, domain.Principal) (int, error) {
	return s.count, s.err
}

func (s *stubReservations) Leave(context.Context, string, domain.Principal) (int, error) {
	return s.count, s.err
}

// stubQueries returns canned attendee lists and views.
type stubQueries struct {
	view      *domain.EventView
	views     []*domain.EventView
	attendees []string
	err       error
}

func (s *stubQueries) GetEvent(context.Context, string, string) (*domain.EventView, error) {
	return s.view, s.err
}

func (s *stubQueries) ListEvents(context.Context) ([]*domain.EventView, error) {
	return s.views, s.err
}

func (s *stubQueries) ListAttendees(context.Context, string, string) ([]string, error) {
	return s.attendees, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authed(req *http.Request) *http.Request {
	ctx := middleware.SetPrincipal(req.Context(), domain.Principal{UserID: "user-1", Email: "u@example.com"})
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAttendanceController_Join(t *testing.T) {
	tests := []struct {
		name       string
		reserve    *stubReservations
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			reserve:    &stubReservations{count: 7},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "event not found",
			reserve:    &stubReservations{err: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "already attending",
			reserve:    &stubReservations{err: domain.ErrAlreadyAttending},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeAlreadyAttending,
		},
		{
			name:       "event full",
			reserve:    &stubReservations{err: domain.ErrEventFull},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeEventFull,
		},
		{
			name:       "unable to join",
			reserve:    &stubReservations{err: domain.ErrUnableToJoin},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeInternalError,
		},
		{
			name:       "store failure",
			reserve:    &stubReservations{err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAttendanceController(testLogger(), tt.reserve, &stubQueries{})

			req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/attendees", nil)
			req.SetPathValue("eventID", testEventID)
			w := httptest.NewRecorder()
			ctrl.Join(w, authed(req))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, float64(7), data["attendees_count"])
		})
	}
}

func TestAttendanceController_Join_InvalidEventID(t *testing.T) {
	ctrl := NewAttendanceController(testLogger(), &stubReservations{}, &stubQueries{})

	req := httptest.NewRequest(http.MethodPost, "/events/not-a-uuid/attendees", nil)
	req.SetPathValue("eventID", "not-a-uuid")
	w := httptest.NewRecorder()
	ctrl.Join(w, authed(req))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, helpers.ErrCodeBadRequest, resp.Error.Code)
}

func TestAttendanceController_Join_Unauthenticated(t *testing.T) {
	ctrl := NewAttendanceController(testLogger(), &stubReservations{}, &stubQueries{})

	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/attendees", nil)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.Join(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceController_Leave(t *testing.T) {
	tests := []struct {
		name       string
		reserve    *stubReservations
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			reserve:    &stubReservations{count: 3},
			wantStatus: http.StatusOK,
		},
		{
			name:       "event not found",
			reserve:    &stubReservations{err: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "not attending",
			reserve:    &stubReservations{err: domain.ErrNotAttending},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeNotAttending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAttendanceController(testLogger(), tt.reserve, &stubQueries{})

			req := httptest.NewRequest(http.MethodDelete, "/events/"+testEventID+"/attendees", nil)
			req.SetPathValue("eventID", testEventID)
			w := httptest.NewRecorder()
			ctrl.Leave(w, authed(req))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, float64(3), data["attendees_count"])
		})
	}
}

func TestAttendanceController_ListAttendees(t *testing.T) {
	t.Run("owner sees attendees", func(t *testing.T) {
		ctrl := NewAttendanceController(testLogger(), &stubReservations{}, &stubQueries{attendees: []string{"u1", "u2"}})

		req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID+"/attendees", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.ListAttendees(w, authed(req))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, []any{"u1", "u2"}, resp.Data)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		ctrl := NewAttendanceController(testLogger(), &stubReservations{}, &stubQueries{err: domain.ErrForbidden})

		req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID+"/attendees", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.ListAttendees(w, authed(req))

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeForbidden, resp.Error.Code)
	})
}
