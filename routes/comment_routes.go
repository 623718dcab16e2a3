package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/playerback_backend/controllers"
	"github.com/HSouheill/playerback_backend/middleware"
)

// RegisterCommentRoutes sets up comment and reply routes
func RegisterCommentRoutes(e *echo.Echo, auth *middleware.Authenticator, cc *controllers.CommentController) {
	r := e.Group("/api/comments")
	required := auth.RequireAuth()
	optional := auth.OptionalAuth()

	r.POST("", cc.CreateComment, required)
	r.GET("/post/:postId", cc.GetPostComments, optional)
	r.GET("/:parentCommentId/replies", cc.GetReplies, optional)
	r.GET("/:id", cc.GetComment, optional)
	r.PATCH("/:id/like", cc.LikeComment, required)
	r.PUT("/:id", cc.UpdateComment, required)
	r.DELETE("/:id", cc.DeleteComment, required)
}
