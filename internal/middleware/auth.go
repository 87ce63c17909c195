package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

const userKey = "user"

// AuthMiddleware resolves the session token (cookie first, then the bearer
// header) to an active user and stores it on the context. Lookup failures
// are logged and answered with a generic 500.
func AuthMiddleware(auth *services.AuthService, cookieName string, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c.Request.Context(), TokenFrom(c, cookieName))
		if err != nil {
			if apperror.CodeOf(err) == "" {
				log.Error("resolve session failed", "err", err, "req_id", RequestIDFrom(c), "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// TokenFrom returns the raw session token or "".
func TokenFrom(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access denied. No token provided."})
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			// allow admin to pass any role-gate
			if !user.IsAdmin() {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied. Insufficient permissions."})
				return
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
