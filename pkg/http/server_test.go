package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/boom", func(c echo.Context) error { return AppErrorResponse(c, TooManyRequestsError("slow down")) })
}

func serve(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var body APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get(echo.HeaderContentType) != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestServer_HealthzAndHandlers(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}, nil}, WithMetrics(false))

	rec, body := serve(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, body.Data)

	rec, body = serve(t, s, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", body.Data)
}

func TestServer_StatusCodeMatchesBody(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithMetrics(false))

	rec, body := serve(t, s, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, body.Status)
}

func TestServer_MetricsEndpointToggle(t *testing.T) {
	off := NewServer(nil, WithMetrics(false))
	rec, _ := serve(t, off, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	on := NewServer(nil, WithMetrics(true))
	rec, _ = serve(t, on, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Options(t *testing.T) {
	s := NewServer(nil, WithHost("127.0.0.1"), WithPort(9090), WithCORS(false), WithSlowThreshold(0))
	assert.Equal(t, "127.0.0.1", s.config.Host)
	assert.Equal(t, 9090, s.config.Port)
	assert.False(t, s.config.CORS)
}
