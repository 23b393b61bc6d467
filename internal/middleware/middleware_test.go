package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sufganiot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(tokens *services.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.Use(LoadPrincipal(tokens))

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/any", AuthRequired(), ok)
	r.GET("/admin", AdminRequired(), ok)
	r.GET("/couple", CoupleRequired(), ok)
	r.GET("/whoami", func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.CoupleName)
	})
	return r
}

func TestRoleGuards(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	admin, _, _ := tokens.Issue(services.RoleAdmin, "", "")
	couple, _, _ := tokens.Issue(services.RoleCouple, "c1", "Noa")
	r := newEngine(tokens)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"anonymous any", "/any", "", http.StatusUnauthorized},
		{"bad token", "/any", "garbage", http.StatusUnauthorized},
		{"couple any", "/any", couple, http.StatusOK},
		{"admin on admin", "/admin", admin, http.StatusOK},
		{"couple on admin", "/admin", couple, http.StatusForbidden},
		{"anonymous admin", "/admin", "", http.StatusUnauthorized},
		{"couple on couple", "/couple", couple, http.StatusOK},
		{"admin on couple", "/couple", admin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCurrentPrincipal(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	couple, _, _ := tokens.Issue(services.RoleCouple, "c1", "Noa")
	r := newEngine(tokens)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+couple)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "Noa" {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Body.String() != "anonymous" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewIPRateLimiter(0.001, 2)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	// 其他 IP 不受影响
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("other ip status = %d", w.Code)
	}
}

func TestSweep(t *testing.T) {
	rl := NewIPRateLimiter(1, 1)
	rl.GetLimiter("a")
	rl.GetLimiter("b")
	if n := rl.Sweep(time.Hour); n != 0 {
		t.Errorf("fresh visitors swept: %d", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := rl.Sweep(time.Millisecond); n != 2 {
		t.Errorf("swept %d, want 2", n)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.String(http.StatusTeapot, c.Param("id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if w.Code != http.StatusTeapot || w.Body.String() != "42" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}
