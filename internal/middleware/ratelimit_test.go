package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rishta/config"
	"rishta/internal/auth"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !rl.allowAt("u:1", base) {
		t.Fatal("first request should be allowed")
	}
	if !rl.allowAt("u:1", base.Add(time.Second)) {
		t.Fatal("second request should be allowed")
	}
	if rl.allowAt("u:1", base.Add(2*time.Second)) {
		t.Fatal("third request in window should be rejected")
	}
	if !rl.allowAt("u:1", base.Add(time.Minute)) {
		t.Fatal("request in next window should be allowed")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !rl.allowAt("u:1", base) {
		t.Fatal("user 1 should be allowed")
	}
	if rl.allowAt("u:1", base.Add(time.Second)) {
		t.Fatal("user 1 should be limited")
	}
	if !rl.allowAt("u:2", base.Add(time.Second)) {
		t.Fatal("user 2 must not share user 1's quota")
	}
	if !rl.allowAt("ip:10.0.0.9", base.Add(time.Second)) {
		t.Fatal("anonymous caller must not share user quotas")
	}
}

func TestRateLimit_PerUserNotPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "rishta"}

	r := gin.New()
	r.Use(AuthRequired(cfg))
	r.Use(RateLimit(NewRateLimiter(1, time.Minute)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(userID uint) int {
		token, err := auth.GenerateAccessToken(cfg, userID, "u@example.com", "USER")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(1); code != http.StatusOK {
		t.Fatalf("user 1 first request: got %d want 200", code)
	}
	if code := do(1); code != http.StatusTooManyRequests {
		t.Fatalf("user 1 second request: got %d want 429", code)
	}
	// Same source IP, different authenticated user.
	if code := do(2); code != http.StatusOK {
		t.Fatalf("user 2 behind same IP: got %d want 200", code)
	}
}
