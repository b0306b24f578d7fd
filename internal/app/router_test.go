package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/adapter/ai"
	"github.com/careerpilot/insights/internal/adapter/httpserver"
	"github.com/careerpilot/insights/internal/adapter/lock"
	"github.com/careerpilot/insights/internal/app"
	"github.com/careerpilot/insights/internal/config"
	"github.com/careerpilot/insights/internal/domain"
	"github.com/careerpilot/insights/internal/usecase"
)

type downAI struct{}

func (downAI) ChatJSON(context.Context, string, string, int) (string, error) {
	return "", domain.ErrUpstreamUnavailable
}

type nopAnalyses struct{}

func (nopAnalyses) Create(_ context.Context, a domain.Analysis) (string, error) { return a.ID, nil }
func (nopAnalyses) Get(context.Context, string) (domain.Analysis, error) {
	return domain.Analysis{}, domain.ErrNotFound
}

type nopSessions struct{}

func (nopSessions) Create(_ context.Context, s domain.InterviewSession) (string, error) {
	return "sess-1", nil
}
func (nopSessions) Get(context.Context, string) (domain.InterviewSession, error) {
	return domain.InterviewSession{}, domain.ErrNotFound
}
func (nopSessions) Update(context.Context, domain.InterviewSession) error { return nil }

func newRouter(cfg config.Config) http.Handler {
	analyze := usecase.NewAnalyzeService(downAI{}, ai.NewParser(), nopAnalyses{}, time.Second, 512)
	interview := usecase.NewInterviewService(analyze, nopSessions{}, lock.NewLocal())
	srv := httpserver.NewServer(cfg, analyze, interview)
	return app.BuildRouter(cfg, srv)
}

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		app.ParseOrigins(" https://a.example , https://b.example "))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , , "))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	h := newRouter(config.Config{RateLimitPerMin: 100})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_RequiresIdentity(t *testing.T) {
	t.Parallel()
	h := newRouter(config.Config{RateLimitPerMin: 100})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze/salary", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AnalyzeWithIdentity(t *testing.T) {
	t.Parallel()
	h := newRouter(config.Config{RateLimitPerMin: 100})

	body := `{"job_title": "Engineer", "location": "Remote", "years_experience": 3, "industry": "Technology"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze/salary", strings.NewReader(body))
	req.Header.Set("X-User-Id", "u-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"usedFallback":true`)
}

func TestRouter_SecurityAndRequestIDHeaders(t *testing.T) {
	t.Parallel()
	h := newRouter(config.Config{RateLimitPerMin: 100})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()
	h := newRouter(config.Config{RateLimitPerMin: 2})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/interview", strings.NewReader(`{"action": "complete-session", "session_id": "x"}`))
		req.Header.Set("X-User-Id", "u-1")
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
