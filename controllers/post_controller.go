// controllers/post_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/services"
)

// PostManager is the content logic behind the post routes
type PostManager interface {
	CreatePost(ctx context.Context, in services.CreatePostInput) (*models.PostView, error)
	GetPost(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (*models.PostView, error)
	ListPosts(ctx context.Context, in services.ListPostsInput) ([]*models.PostView, models.PageInfo, error)
	ListUserPosts(ctx context.Context, owner primitive.ObjectID, viewer *primitive.ObjectID, page, limit int) ([]*models.PostView, models.PageInfo, error)
	RecordView(ctx context.Context, postID primitive.ObjectID, viewer *primitive.ObjectID) (models.ViewResponse, error)
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liking bool) (*models.PostView, error)
	UpdatePost(ctx context.Context, in services.UpdatePostInput) (*models.PostView, error)
	DeletePost(ctx context.Context, postID, userID primitive.ObjectID) error
}

type PostController struct {
	posts PostManager
}

func NewPostController(posts PostManager) *PostController {
	return &PostController{posts: posts}
}

// CreatePost handler creates a post owned by the caller
func (pc *PostController) CreatePost(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := pc.posts.CreatePost(c.Request().Context(), services.CreatePostInput{
		UserID:      userID,
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Src:         req.Src,
		Content:     req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.PostResponse{
		Message: "Post created successfully",
		Post:    post,
	})
}

// GetPosts handler lists posts newest first
func (pc *PostController) GetPosts(c echo.Context) error {
	page, limit, err := pagination(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, info, err := pc.posts.ListPosts(c.Request().Context(), services.ListPostsInput{
		Viewer: viewer(c),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.PostsResponse{Posts: posts, PageInfo: info})
}

// GetUserPosts handler lists one user's posts newest first
func (pc *PostController) GetUserPosts(c echo.Context) error {
	owner, err := pathID(c, "userId", "user")
	if err != nil {
		return respondError(c, err)
	}
	page, limit, err := pagination(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, info, err := pc.posts.ListUserPosts(c.Request().Context(), owner, viewer(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.PostsResponse{Posts: posts, PageInfo: info})
}

// GetPost handler returns one post and records a view for authenticated callers
func (pc *PostController) GetPost(c echo.Context) error {
	postID, err := pathID(c, "id", "post")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	who := viewer(c)

	view, err := pc.posts.RecordView(ctx, postID, who)
	if err != nil {
		return respondError(c, err)
	}
	post, err := pc.posts.GetPost(ctx, postID, who)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.PostDetailResponse{Post: post, View: view})
}

// RecordView handler records a view without returning the post
func (pc *PostController) RecordView(c echo.Context) error {
	postID, err := pathID(c, "id", "post")
	if err != nil {
		return respondError(c, err)
	}

	view, err := pc.posts.RecordView(c.Request().Context(), postID, viewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// LikePost handler sets the caller's like on a post
func (pc *PostController) LikePost(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	postID, err := pathID(c, "id", "post")
	if err != nil {
		return respondError(c, err)
	}

	var req models.LikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := pc.posts.SetLike(c.Request().Context(), postID, userID, *req.IsLiking)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.PostResponse{Message: "Post like updated", Post: post})
}

// UpdatePost handler edits a post owned by the caller
func (pc *PostController) UpdatePost(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	postID, err := pathID(c, "id", "post")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := pc.posts.UpdatePost(c.Request().Context(), services.UpdatePostInput{
		PostID:      postID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Src:         req.Src,
		Content:     req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.PostResponse{Message: "Post updated successfully", Post: post})
}

// DeletePost handler deletes a post owned by the caller and its comments
func (pc *PostController) DeletePost(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	postID, err := pathID(c, "id", "post")
	if err != nil {
		return respondError(c, err)
	}

	if err := pc.posts.DeletePost(c.Request().Context(), postID, userID); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, http.StatusOK, "Post deleted successfully")
}
