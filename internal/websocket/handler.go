package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection with the hub and blocks until the peer leaves.
func ServeWs(hub *Hub, c *websocket.Conn, visitorID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, VisitorID: visitorID, Send: make(chan []byte, sendBuffer)}
	if !hub.Register(client) {
		return
	}

	go client.writePump()
	client.readPump()
}
