package middleware

import (
	"net/http"
	"strings"

	"sufganiot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	PrincipalKey = "principal"
	// SessionTokenKey 登录后令牌同时写入 cookie session，浏览器页面无需自己带 header
	SessionTokenKey = "token"
)

// Principal 当前请求的身份
type Principal struct {
	Role       services.Role
	CoupleID   string
	CoupleName string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == services.RoleAdmin
}

func (p *Principal) IsCouple() bool {
	return p != nil && p.Role == services.RoleCouple
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// LoadPrincipal 从 Authorization: Bearer 或 session 中解析令牌；无效令牌视为未登录
func LoadPrincipal(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if v, ok := sessions.Default(c).Get(SessionTokenKey).(string); ok {
				token = v
			}
		}

		if token != "" {
			if claims, err := tokens.Parse(token); err == nil {
				c.Set(PrincipalKey, &Principal{
					Role:       claims.Role,
					CoupleID:   claims.CoupleID,
					CoupleName: claims.CoupleName,
				})
			}
		}
		c.Next()
	}
}

// CurrentPrincipal 未登录返回 nil
func CurrentPrincipal(c *gin.Context) *Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}

// AuthRequired ensures someone is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func CoupleRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.IsCouple() {
			abort(c, http.StatusForbidden, "Couple access required")
			return
		}
		c.Next()
	}
}
