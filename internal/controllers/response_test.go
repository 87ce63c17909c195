package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/hotel_backend/internal/apperror"
)

func respond(t *testing.T, r Responder, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	r.respondError(c, err)
	return w
}

func TestRespondErrorKeepsFieldOfWrappedErrors(t *testing.T) {
	r := NewResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	w := respond(t, r, fmt.Errorf("create room: %w", apperror.FieldInvalid("price", "price must be greater than 0")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"success":false,"message":"create room: price must be greater than 0","field":"price"}`, w.Body.String())

	w = respond(t, r, apperror.NotFound("Room not found"))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"success":false,"message":"Room not found"}`, w.Body.String())

	w = respond(t, r, errors.New("disk full"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
}
