package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(limiter *RateLimiter, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:test-guest")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: CheckGroupFor,
		Limiter:  limiter,
		Rules:    rules,
	}))
	r.POST("/api/v1/checks", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/api/v1/checks/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitCheckStricterThanDefault(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter, map[string]RateLimitRule{
		RateLimitGroupDefault: {Rate: 5, Burst: 10},
		RateLimitGroupCheck:   {Rate: 1, Burst: 2},
	})

	for i := 0; i < 5; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/checks/c1", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("read %d expected 200, got %d", i+1, resp.Code)
		}
	}

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
		if resp.Code != http.StatusCreated {
			t.Fatalf("check %d expected 201, got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("check 3 expected 429, got %d", resp.Code)
	}

	now = now.Add(time.Second)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("check after refill expected 201, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := newRateLimitedRouter(limiter, map[string]RateLimitRule{
		RateLimitGroupCheck: {Rate: 0.5, Burst: 1},
	})

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
	if resp1.Code != http.StatusCreated {
		t.Fatalf("expected first request 201, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if got := resp2.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", payload.Error.Code)
	}
	if payload.Error.Details["retryAfterMs"] != float64(2000) {
		t.Fatalf("expected retryAfterMs 2000, got %v", payload.Error.Details["retryAfterMs"])
	}
}

func TestRateLimitUnknownGroupPassesThrough(t *testing.T) {
	limiter := NewRateLimiter(nil)
	r := newRateLimitedRouter(limiter, map[string]RateLimitRule{})

	for i := 0; i < 10; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checks", nil))
		if resp.Code != http.StatusCreated {
			t.Fatalf("request %d expected 201, got %d", i+1, resp.Code)
		}
	}
}
