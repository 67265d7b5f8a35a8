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

func jwtTestConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "rishta"}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := jwtTestConfig()

	r := gin.New()
	r.Use(AuthRequired(cfg))
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got %d want 401", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got %d want 401", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got %d want 401", w.Code)
		}
	})

	t.Run("valid token exposes claims", func(t *testing.T) {
		token, err := auth.GenerateAccessToken(cfg, 7, "a@example.com", "USER")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("got %d want 200: %s", w.Code, w.Body.String())
		}
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := jwtTestConfig()

	r := gin.New()
	r.Use(AuthRequired(cfg))
	r.GET("/admin", RequireRole("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(role string) int {
		token, err := auth.GenerateAccessToken(cfg, 1, "a@example.com", role)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("USER"); code != http.StatusForbidden {
		t.Fatalf("USER role: got %d want 403", code)
	}
	if code := do("ADMIN"); code != http.StatusOK {
		t.Fatalf("ADMIN role: got %d want 200", code)
	}
}

func TestGetClaims_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetClaims(c) != nil {
		t.Fatal("claims should be nil without AuthRequired")
	}
	if GetUserID(c) != 0 {
		t.Fatal("user ID should be zero without AuthRequired")
	}
}
