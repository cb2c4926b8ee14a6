package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiemoustard/compani-api-sub005/internal/service"
)

func TestMetricsHandlerHealth(t *testing.T) {
	up := HealthCheck{Name: "postgres", Ping: func(ctx context.Context) error { return nil }}
	down := HealthCheck{Name: "mongo", Ping: func(ctx context.Context) error { return errors.New("no reachable servers") }}

	c, w := newTestContext(http.MethodGet, "/health", "", nil)
	NewMetricsHandler(nil, up).Health(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","stores":{"postgres":"up"}}`, w.Body.String())

	c, w = newTestContext(http.MethodGet, "/health", "", nil)
	NewMetricsHandler(nil, up, down).Health(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","stores":{"postgres":"up","mongo":"down"}}`, w.Body.String())
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/metrics", "", nil)
	NewMetricsHandler(nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	metrics := service.NewMetricsService()
	metrics.RecordHistoryAppend("slot_creation")
	c, w = newTestContext(http.MethodGet, "/metrics", "", nil)
	NewMetricsHandler(metrics).Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "slot_creation")
}
