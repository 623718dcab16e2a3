package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/playerback_backend/middleware"
	"github.com/HSouheill/playerback_backend/websocket"
)

// RegisterWebSocketRoutes exposes the live event stream. Authenticated
// callers also receive notifications addressed to them.
func RegisterWebSocketRoutes(e *echo.Echo, auth *middleware.Authenticator, hub *websocket.Hub) {
	e.GET("/api/ws", func(c echo.Context) error {
		userID, _ := middleware.GetUserIDFromToken(c)
		return websocket.HandleWebSocket(c, hub, userID)
	}, auth.OptionalAuth())
}
