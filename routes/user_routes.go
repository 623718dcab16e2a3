package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/playerback_backend/controllers"
	"github.com/HSouheill/playerback_backend/middleware"
)

// RegisterUserRoutes sets up account routes. /profile is registered before
// /:username so the static segment wins.
func RegisterUserRoutes(e *echo.Echo, auth *middleware.Authenticator, uc *controllers.UserController) {
	r := e.Group("/api/users")

	r.POST("/register", uc.Register)
	r.POST("/login", uc.Login)
	r.POST("/logout", uc.Logout, auth.RequireAuth())

	r.GET("/profile", uc.GetProfile, auth.RequireAuth())
	r.PUT("/profile", uc.UpdateProfile, auth.RequireAuth())
	r.DELETE("/profile", uc.DeleteProfile, auth.RequireAuth())

	r.GET("/:username", uc.GetUserByUsername)
}
