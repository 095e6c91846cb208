//go:build !integration

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/infra/logging"
)

type fakeStats struct {
	since time.Time
	err   error
}

func (f *fakeStats) Summary(ctx context.Context, since time.Time) (*model.GenerationStats, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return &model.GenerationStats{Total: 3, Succeeded: 2, Failed: 1, ByLevel: map[model.Level]int{model.LevelB1: 3}}, nil
}

func newTestServer(stats *fakeStats, checks map[string]HealthCheck) *Server {
	cfg := config.AdminConfig{Port: 0, JWTSecret: "s3cret", TokenTTL: time.Hour}
	return NewServer(cfg, stats, checks, logging.Nop())
}

func do(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeStats{}, map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
	})
	rec := do(t, s.Routes(), "/health", "")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("status %d headers %v", rec.Code, rec.Header())
	}

	s = newTestServer(&fakeStats{}, map[string]HealthCheck{
		"postgres": func(context.Context) error { return errors.New("down") },
	})
	if rec := do(t, s.Routes(), "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeStats{}, nil)
	if rec := do(t, s.Routes(), "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestStatsRequiresToken(t *testing.T) {
	s := newTestServer(&fakeStats{}, nil)
	h := s.Routes()

	if rec := do(t, h, "/api/v1/stats", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := do(t, h, "/api/v1/stats", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}

	other := NewAuthManager("other-secret", time.Hour)
	foreign, _ := other.Mint("admin")
	if rec := do(t, h, "/api/v1/stats", foreign); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: %d", rec.Code)
	}

	expired := NewAuthManager("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Mint("admin")
	if rec := do(t, h, "/api/v1/stats", old); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: %d", rec.Code)
	}
}

func TestStatsRejectsNonAdminRole(t *testing.T) {
	s := newTestServer(&fakeStats{}, nil)
	claims := AdminClaims{Role: "viewer", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	if rec := do(t, s.Routes(), "/api/v1/stats", tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	stats := &fakeStats{}
	s := newTestServer(stats, nil)
	fixed := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	tok, err := s.auth.Mint("admin")
	if err != nil {
		t.Fatal(err)
	}
	h := s.Routes()

	rec := do(t, h, "/api/v1/stats?since=24h", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !stats.since.Equal(fixed.Add(-24 * time.Hour)) {
		t.Fatalf("since = %v", stats.since)
	}
	var body model.GenerationStats
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 3 || body.ByLevel[model.LevelB1] != 3 {
		t.Fatalf("body = %+v", body)
	}

	if rec := do(t, h, "/api/v1/stats?since=2025-05-01T00:00:00Z", tok); rec.Code != http.StatusOK {
		t.Fatalf("rfc3339: %d", rec.Code)
	}
	if rec := do(t, h, "/api/v1/stats?since=yesterday", tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad since: %d", rec.Code)
	}

	stats.err = domain.ErrInvalidArgument
	if rec := do(t, h, "/api/v1/stats", tok); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid argument: %d", rec.Code)
	}
	stats.err = errors.New("db down")
	if rec := do(t, h, "/api/v1/stats", tok); rec.Code != http.StatusInternalServerError {
		t.Fatalf("db error: %d", rec.Code)
	}
}
