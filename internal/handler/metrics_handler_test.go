package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/remui-admin-api/internal/service"
)

func TestReadyReportsFailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("redis: connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Prometheus)

	w := get(r, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"cache":"redis: connection refused","store":"ok"}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	metrics := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "goroutines_total")
}
