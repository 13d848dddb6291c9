package middleware

import (
	"net/http"
	"strings"
	"time"

	"freightdesk/internal/auth"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireAuth
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// SetTokenCookie stores the access token as an httpOnly, SameSite=Lax cookie on path /.
func SetTokenCookie(c *gin.Context, token string, maxAge time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(maxAge.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", secure, true)
}

// TokenFromRequest tries the cookie first, then an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth validates the access token and stores the user id and role on the context
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUserRole, claims.Role)
		if id, err := claims.UserID(); err == nil {
			c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), id))
		}

		c.Next()
	}
}

// RequireRole must run after RequireAuth; it answers 403 unless the token role is allowed.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRole)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "You don't have permission to access this resource"))
	}
}
