package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/middleware"
	"github.com/zaqqye/hotel_backend/internal/services"
)

// callerFrom maps the authenticated user to a service caller; the zero
// Caller is anonymous.
func callerFrom(c *gin.Context) services.Caller {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return services.Caller{}
	}
	return services.Caller{ID: user.ID, Role: user.Role}
}
