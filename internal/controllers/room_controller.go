package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/services"
	"github.com/zaqqye/hotel_backend/internal/utils"
)

type RoomController struct {
	Rooms *services.RoomService
	Responder
}

// ListRooms answers GET /api/rooms. The body carries a strong ETag so polling
// clients can revalidate with If-None-Match and get a 304.
func (rc *RoomController) ListRooms(c *gin.Context) {
	filter, err := services.ParseRoomFilter(c.Request.URL.Query())
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rooms, err := rc.Rooms.List(c.Request.Context(), filter)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	body, err := json.Marshal(gin.H{"success": true, "data": rooms, "count": len(rooms)})
	if err != nil {
		rc.respondError(c, err)
		return
	}
	etag := utils.ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if matchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (rc *RoomController) Stats(c *gin.Context) {
	stats, err := rc.Rooms.Stats(c.Request.Context())
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusOK, "", stats)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := rc.roomID(c)
	if !ok {
		return
	}
	room, err := rc.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusOK, "", room)
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req services.RoomInput
	if !rc.bind(c, &req) {
		return
	}
	room, err := rc.Rooms.Create(c.Request.Context(), req)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusCreated, "Room created successfully", room)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := rc.roomID(c)
	if !ok {
		return
	}
	var req services.RoomInput
	if !rc.bind(c, &req) {
		return
	}
	room, err := rc.Rooms.Update(c.Request.Context(), id, req)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusOK, "Room updated successfully", room)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := rc.roomID(c)
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(c.Request.Context(), id); err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusOK, "Room deleted successfully", nil)
}

func (rc *RoomController) BookRoom(c *gin.Context) {
	id, ok := rc.roomID(c)
	if !ok {
		return
	}
	var req services.BookingInput
	if !rc.bind(c, &req) {
		return
	}
	room, err := rc.Rooms.Book(c.Request.Context(), id, callerFrom(c), req)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	rc.ok(c, http.StatusOK, "Room booked successfully", room)
}

func (rc *RoomController) CheckoutRoom(c *gin.Context) {
	id, ok := rc.roomID(c)
	if !ok {
		return
	}
	caller := callerFrom(c)
	room, err := rc.Rooms.Checkout(c.Request.Context(), id, caller)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	msg := "Checkout completed successfully"
	if caller.IsAdmin() {
		msg = "Admin checkout completed successfully"
	}
	rc.ok(c, http.StatusOK, msg, room)
}

// roomID rejects malformed ids as a missing room.
func (rc *RoomController) roomID(c *gin.Context) (string, bool) {
	id, ok := pathID(c.Param("id"))
	if !ok {
		rc.respondError(c, apperror.NotFound(services.MsgRoomNotFound))
	}
	return id, ok
}
