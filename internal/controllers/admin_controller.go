package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

// AdminController serves /api/users. Every route sits behind
// RequireRoles("admin").
type AdminController struct {
	Users *services.UserService
	Responder
}

func (a *AdminController) ListUsers(c *gin.Context) {
	filter, err := services.ParseUserFilter(c.Request.URL.Query())
	if err != nil {
		a.respondError(c, err)
		return
	}
	users, err := a.Users.List(c.Request.Context(), filter)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": models.PublicUsers(users), "count": len(users)})
}

func (a *AdminController) UserStats(c *gin.Context) {
	stats, err := a.Users.Stats(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusOK, "", stats)
}

func (a *AdminController) GetUser(c *gin.Context) {
	id, ok := a.userID(c)
	if !ok {
		return
	}
	user, err := a.Users.Get(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusOK, "", user.Public())
}

func (a *AdminController) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if !a.bind(c, &req) {
		return
	}
	user, err := a.Users.Create(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusCreated, "User created successfully", user.Public())
}

func (a *AdminController) UpdateUser(c *gin.Context) {
	id, ok := a.userID(c)
	if !ok {
		return
	}
	var req services.UpdateUserInput
	if !a.bind(c, &req) {
		return
	}
	user, err := a.Users.Update(c.Request.Context(), id, req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusOK, "User updated successfully", user.Public())
}

func (a *AdminController) DeleteUser(c *gin.Context) {
	id, ok := a.userID(c)
	if !ok {
		return
	}
	if err := a.Users.Delete(c.Request.Context(), callerFrom(c).ID, id); err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusOK, "User deleted successfully", nil)
}

func (a *AdminController) userID(c *gin.Context) (string, bool) {
	id, ok := pathID(c.Param("id"))
	if !ok {
		a.respondError(c, apperror.NotFound(services.MsgUserNotFound))
	}
	return id, ok
}
