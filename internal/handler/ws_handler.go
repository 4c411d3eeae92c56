package handler

import (
	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/internal/pkg/serverutils"
	internalWS "deepseek-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type LiveHandler struct {
	hub      *internalWS.Hub
	verifier *serverutils.TokenVerifier
	logger   logger.ILogger
}

func NewLiveHandler(hub *internalWS.Hub, verifier *serverutils.TokenVerifier, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		hub:      hub,
		verifier: verifier,
		logger:   log,
	}
}

// ServeWs authenticates the handshake and upgrades. Browsers cannot set
// headers on a websocket, so the token may also come as ?token=.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}

	userID, err := h.verifier.Verify(tokenStr)
	if err != nil {
		h.logger.Warn("LiveHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return serverutils.Unauthenticated("Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("LiveHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("LiveHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
