package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/playerback_backend/controllers"
	"github.com/HSouheill/playerback_backend/metrics"
	"github.com/HSouheill/playerback_backend/middleware"
	"github.com/HSouheill/playerback_backend/websocket"
)

// Dependencies are the handlers and middleware shared by every route group
type Dependencies struct {
	Auth     *middleware.Authenticator
	Hub      *websocket.Hub
	Users    *controllers.UserController
	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Health   *controllers.HealthController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, d Dependencies) {
	e.HTTPErrorHandler = jsonErrorHandler(e)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the PlayerBack API"})
	})
	if d.Health != nil {
		e.Match([]string{http.MethodGet, http.MethodHead}, "/health", d.Health.Health)
	}
	e.GET("/metrics", metrics.Handler())

	RegisterUserRoutes(e, d.Auth, d.Users)
	RegisterPostRoutes(e, d.Auth, d.Posts)
	RegisterCommentRoutes(e, d.Auth, d.Comments)
	if d.Hub != nil {
		RegisterWebSocketRoutes(e, d.Auth, d.Hub)
	}
}

// jsonErrorHandler answers unmatched routes with {"error": "Not Found"} and
// defers everything else to echo
func jsonErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
			if !c.Response().Committed {
				_ = c.JSON(http.StatusNotFound, map[string]string{"error": "Not Found"})
			}
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
