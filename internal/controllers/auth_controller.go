package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/middleware"
	"github.com/zaqqye/hotel_backend/internal/models"
	"github.com/zaqqye/hotel_backend/internal/services"
)

type AuthController struct {
	Auth       *services.AuthService
	CookieName string
	// SecureCookie marks the session cookie Secure (production).
	SecureCookie bool
	Responder
}

type sessionData struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func (a *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if !a.bind(c, &req) {
		return
	}
	user, token, err := a.Auth.Register(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.setSession(c, token)
	a.ok(c, http.StatusCreated, "User registered successfully", sessionData{User: user.Public(), Token: token})
}

func (a *AuthController) Login(c *gin.Context) {
	var req services.LoginInput
	if !a.bind(c, &req) {
		return
	}
	user, token, err := a.Auth.Login(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.setSession(c, token)
	a.ok(c, http.StatusOK, "Login successful", sessionData{User: user.Public(), Token: token})
}

// Logout is stateless: the cookie is expired and the client drops its token.
func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(a.CookieName, "", -1, "/", "", a.SecureCookie, true)
	a.ok(c, http.StatusOK, "Logout successful", nil)
}

func (a *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		a.respondError(c, apperror.Unauthorized("Access denied. No token provided."))
		return
	}
	a.ok(c, http.StatusOK, "", user.Public())
}

func (a *AuthController) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		a.respondError(c, apperror.Unauthorized("Access denied. No token provided."))
		return
	}
	var req services.ProfileInput
	if !a.bind(c, &req) {
		return
	}
	updated, err := a.Auth.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.ok(c, http.StatusOK, "Profile updated successfully", updated.Public())
}

func (a *AuthController) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(a.CookieName, token, int(a.Auth.Tokens().TTL().Seconds()), "/", "", a.SecureCookie, true)
}
