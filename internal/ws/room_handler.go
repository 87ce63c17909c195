package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Room events carry nothing the public room list does not.
		return true
	},
}

// RoomsHandler upgrades GET /api/rooms/ws and subscribes the connection.
func RoomsHandler(hub *RoomHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "realtime not available"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newRoomClient(hub, conn)
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.writePump()
		client.readPump()
	}
}
