package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthController_Healthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ctrl := NewHealthController(testLogger(), &fakePinger{})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		ctrl.Healthz(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("store down", func(t *testing.T) {
		ctrl := NewHealthController(testLogger(), &fakePinger{err: errors.New("dial tcp: refused")})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		ctrl.Healthz(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
