package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers a client for userID and blocks until the connection ends.
func ServeWs(hub *Hub, c *websocket.Conn, userID string) {
	client := NewClient(hub, c, userID)
	hub.Register(client)

	go client.writePump()
	client.readPump()
}
