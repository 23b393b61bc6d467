package handlers

import (
	"net/http"

	"sufganiot/internal/middleware"
	"sufganiot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth    *services.AuthService
	couples *services.CoupleService
}

func NewAuthHandler(svc *services.Services) *AuthHandler {
	return &AuthHandler{auth: svc.Auth, couples: svc.Couples}
}

// startSession 令牌写入 cookie session，供浏览器页面使用
func startSession(c *gin.Context, session *services.Session) {
	s := sessions.Default(c)
	s.Set(middleware.SessionTokenKey, session.Token)
	if err := s.Save(); err != nil {
		// 客户端仍可用返回的 Bearer token
		c.Error(err)
	}
}

// AdminLogin POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	startSession(c, session)
	ok(c, http.StatusOK, session)
}

// CoupleLogin POST /api/auth/couple/login
func (h *AuthHandler) CoupleLogin(c *gin.Context) {
	var req struct {
		LoginCode string `json:"loginCode"`
	}
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.auth.CoupleLogin(c.Request.Context(), req.LoginCode)
	if err != nil {
		respondError(c, err)
		return
	}
	startSession(c, session)
	ok(c, http.StatusOK, session)
}

// Verify GET /api/auth/verify 返回当前身份；情侣被删除后令牌失效
func (h *AuthHandler) Verify(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p.IsAdmin() {
		ok(c, http.StatusOK, gin.H{"role": p.Role})
		return
	}

	couple, err := h.couples.Get(c.Request.Context(), p.CoupleID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Session is no longer valid")
		return
	}
	ok(c, http.StatusOK, gin.H{"role": p.Role, "couple": couple})
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		c.Error(err)
	}
	okMessage(c, "Logged out", nil)
}
