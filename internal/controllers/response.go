package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/middleware"
	"github.com/zaqqye/hotel_backend/internal/validation"
)

// Responder writes the {success, message, data, count} envelope.
type Responder struct {
	Log *slog.Logger
	// ExposeErrors adds the raw error text to 500 responses.
	ExposeErrors bool
}

func NewResponder(log *slog.Logger, exposeErrors bool) Responder {
	if log == nil {
		log = slog.Default()
	}
	return Responder{Log: log, ExposeErrors: exposeErrors}
}

func (r Responder) ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func statusOf(code apperror.Code) int {
	switch code {
	case apperror.CodeValidation, apperror.CodeConflict:
		return http.StatusBadRequest
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperror.CodeForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (r Responder) respondError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	status := statusOf(code)
	if status == http.StatusInternalServerError {
		r.Log.Error("request failed", "err", err, "path", c.Request.URL.Path, "req_id", middleware.RequestIDFrom(c))
		_ = c.Error(err)
		body := gin.H{"success": false, "message": "Internal server error"}
		if r.ExposeErrors {
			body["error"] = err.Error()
		}
		c.AbortWithStatusJSON(status, body)
		return
	}
	body := gin.H{"success": false, "message": err.Error()}
	if field := apperror.FieldOf(err); field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(status, body)
}

// bind decodes a JSON body and runs the binding rules.
func (r Responder) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		r.respondError(c, validation.Translate(err))
		return false
	}
	return true
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found - " + c.Request.URL.RequestURI()})
}
