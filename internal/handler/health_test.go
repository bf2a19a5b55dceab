package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestReadyReportsFailedChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, 503, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, w.Code)
}
