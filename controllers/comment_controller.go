// controllers/comment_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/services"
	"github.com/HSouheill/playerback_backend/utils"
)

// CommentManager is the discussion logic behind the comment routes
type CommentManager interface {
	CreateComment(ctx context.Context, in services.CreateCommentInput) (*models.CommentView, error)
	GetComment(ctx context.Context, commentID primitive.ObjectID, viewer *primitive.ObjectID) (*models.CommentView, error)
	ListPostComments(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.CommentView, models.PageInfo, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.CommentView, models.PageInfo, error)
	SetLike(ctx context.Context, commentID, userID primitive.ObjectID, liking bool) (*models.CommentView, error)
	UpdateComment(ctx context.Context, commentID, userID primitive.ObjectID, content string) (*models.CommentView, error)
	DeleteComment(ctx context.Context, commentID, userID primitive.ObjectID) error
}

type CommentController struct {
	comments CommentManager
}

func NewCommentController(comments CommentManager) *CommentController {
	return &CommentController{comments: comments}
}

// CreateComment handler attaches a comment to a post or a parent comment
func (cc *CommentController) CreateComment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	in := services.CreateCommentInput{UserID: userID, Content: req.Content}
	if req.PostID != "" {
		id, ok := utils.ParseObjectID(req.PostID)
		if !ok {
			return respondError(c, models.NewValidationError("Invalid post ID"))
		}
		in.PostID = &id
	}
	if req.ParentCommentID != "" {
		id, ok := utils.ParseObjectID(req.ParentCommentID)
		if !ok {
			return respondError(c, models.NewValidationError("Invalid parent comment ID"))
		}
		in.ParentCommentID = &id
	}

	comment, err := cc.comments.CreateComment(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.CommentResponse{
		Message: "Comment created successfully",
		Comment: comment,
	})
}

// GetComment handler returns one comment with like info
func (cc *CommentController) GetComment(c echo.Context) error {
	commentID, err := pathID(c, "id", "comment")
	if err != nil {
		return respondError(c, err)
	}

	comment, err := cc.comments.GetComment(c.Request().Context(), commentID, viewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.CommentResponse{Comment: comment})
}

// GetPostComments handler lists a post's top-level comments
func (cc *CommentController) GetPostComments(c echo.Context) error {
	postID, err := pathID(c, "postId", "post")
	if err != nil {
		return respondError(c, err)
	}
	page, limit, err := pagination(c)
	if err != nil {
		return respondError(c, err)
	}

	comments, info, err := cc.comments.ListPostComments(c.Request().Context(), postID, viewer(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.CommentsResponse{Comments: comments, PageInfo: info})
}

// GetReplies handler lists the replies to a comment, oldest first
func (cc *CommentController) GetReplies(c echo.Context) error {
	parentID, err := pathID(c, "parentCommentId", "parent comment")
	if err != nil {
		return respondError(c, err)
	}
	page, limit, err := pagination(c)
	if err != nil {
		return respondError(c, err)
	}

	replies, info, err := cc.comments.ListReplies(c.Request().Context(), parentID, viewer(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.RepliesResponse{Replies: replies, PageInfo: info})
}

// LikeComment handler sets the caller's like on a comment
func (cc *CommentController) LikeComment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	commentID, err := pathID(c, "id", "comment")
	if err != nil {
		return respondError(c, err)
	}

	var req models.LikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := cc.comments.SetLike(c.Request().Context(), commentID, userID, *req.IsLiking)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.CommentResponse{Message: "Comment like updated", Comment: comment})
}

// UpdateComment handler edits a comment owned by the caller
func (cc *CommentController) UpdateComment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	commentID, err := pathID(c, "id", "comment")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	comment, err := cc.comments.UpdateComment(c.Request().Context(), commentID, userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.CommentResponse{Message: "Comment updated successfully", Comment: comment})
}

// DeleteComment handler deletes a comment owned by the caller and its replies
func (cc *CommentController) DeleteComment(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	commentID, err := pathID(c, "id", "comment")
	if err != nil {
		return respondError(c, err)
	}

	if err := cc.comments.DeleteComment(c.Request().Context(), commentID, userID); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, http.StatusOK, "Comment deleted successfully")
}
