package handler

import (
	"finance-dashboard/internal/pkg/logger"
	"finance-dashboard/internal/pkg/serverutils"
	internalWS "finance-dashboard/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// LiveHandler upgrades page connections so state changes can reload them.
type LiveHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewLiveHandler(hub *internalWS.Hub, log logger.ILogger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: log}
}

// ServeWs handles websocket requests from the peer.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	visitorID := serverutils.VisitorID(c)
	if visitorID == uuid.Nil {
		return fiber.ErrUnauthorized
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Debug("LIVE", "Starting WebSocket session", map[string]interface{}{"visitor_id": visitorID})
			internalWS.ServeWs(h.hub, conn, visitorID)
			h.logger.Debug("LIVE", "WebSocket session ended", map[string]interface{}{"visitor_id": visitorID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
