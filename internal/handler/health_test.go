package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"donutsmp-market-api/internal/handler"
	"donutsmp-market-api/internal/router"
)

func TestStatusEndpoint(t *testing.T) {
	r := router.New(router.Config{Handler: handler.New("file")})

	rec := doRequest(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `"service":"donutsmp-market-api"`)
	require.Contains(t, body, `"archive":"file"`)
	require.Contains(t, body, `"uptime_seconds"`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthEndpoint(t *testing.T) {
	r := router.New(router.Config{Handler: handler.New("file")})

	rec := doRequest(r, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
