package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/playerback_backend/controllers"
	"github.com/HSouheill/playerback_backend/middleware"
)

// RegisterPostRoutes sets up post routes
func RegisterPostRoutes(e *echo.Echo, auth *middleware.Authenticator, pc *controllers.PostController) {
	r := e.Group("/api/posts")
	required := auth.RequireAuth()
	optional := auth.OptionalAuth()

	r.POST("", pc.CreatePost, required)
	r.GET("", pc.GetPosts, optional)
	r.GET("/user/:userId", pc.GetUserPosts, optional)
	r.GET("/:id", pc.GetPost, optional)
	r.POST("/:id/view", pc.RecordView, optional)
	r.PATCH("/:id/like", pc.LikePost, required)
	r.PUT("/:id", pc.UpdatePost, required)
	r.DELETE("/:id", pc.DeletePost, required)
}
