package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oohdesk/oohdesk/internal/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 300, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())

	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")
	t.Setenv("SELECTION_SNAPSHOT_TTL", "-1m")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf).Info("hidden")
	assert.Empty(t, buf.String())
	newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf).Warn("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])

	buf.Reset()
	newLogger(nil, &buf).Info("text")
	assert.Contains(t, buf.String(), "msg=text")
}

func TestRouterHealthAndSecurityHeaders(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Config:  &Config{AppEnv: "test", RateLimitPerMinute: 100},
		Metrics: metrics,
		Readiness: map[string]Pinger{
			"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		},
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `oohdesk_http_requests_total{code="200",route="/healthz"}`))
}

func TestReadinessReportsFailures(t *testing.T) {
	router := NewRouter(RouterParams{
		Config: &Config{RateLimitPerMinute: 100},
		Readiness: map[string]Pinger{
			"redis": PingFunc(func(ctx context.Context) error { return errors.New("down") }),
		},
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"redis":"down"`)
}

func TestRateLimitAnswersProblem(t *testing.T) {
	router := NewRouter(RouterParams{Config: &Config{RateLimitPerMinute: 1}})
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
