package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func performRequest(e *echo.Echo, target, ip string) int {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func newLimitedEcho() *echo.Echo {
	e := echo.New()
	e.Use(NewRateLimiter().RateLimit())
	e.GET("/api/ping", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/uploads/test.png", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestRateLimitAllowsNormalTraffic(t *testing.T) {
	e := newLimitedEcho()

	for i := 0; i < 10; i++ {
		if code := performRequest(e, "/api/ping", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, code)
		}
	}
}

func TestRateLimitBlocksBurstOverflow(t *testing.T) {
	e := newLimitedEcho()

	blocked := false
	for i := 0; i < 50; i++ {
		if code := performRequest(e, "/api/ping", "10.0.0.2"); code == http.StatusTooManyRequests {
			blocked = true
			break
		}
	}
	if !blocked {
		t.Fatal("sustained burst was never rate limited")
	}

	// Once blocked, subsequent requests from the same IP stay blocked
	if code := performRequest(e, "/api/ping", "10.0.0.2"); code != http.StatusTooManyRequests {
		t.Errorf("blocked IP got status %d, want 429", code)
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	e := newLimitedEcho()

	for i := 0; i < 50; i++ {
		performRequest(e, "/api/ping", "10.0.0.3")
	}

	if code := performRequest(e, "/api/ping", "10.0.0.4"); code != http.StatusOK {
		t.Errorf("unrelated IP got status %d, want 200", code)
	}
}

func TestRateLimitLoginIsStricter(t *testing.T) {
	e := newLimitedEcho()

	blockedAfter := -1
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Real-IP", "10.0.0.5")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blockedAfter = i
			break
		}
	}
	if blockedAfter < 0 {
		t.Fatal("login endpoint was never rate limited")
	}
	if blockedAfter > 10 {
		t.Errorf("login limit kicked in after %d requests, expected within the burst of 5", blockedAfter)
	}
}

func TestRateLimitSkipsUploads(t *testing.T) {
	e := newLimitedEcho()

	for i := 0; i < 100; i++ {
		if code := performRequest(e, "/uploads/test.png", "10.0.0.6"); code != http.StatusOK {
			t.Fatalf("upload request %d: status %d, want 200", i, code)
		}
	}
}
