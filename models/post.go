package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post types
const (
	PostTypeVideo = "video"
	PostTypeImage = "image"
	PostTypeText  = "text"
)

// IsValidPostType reports whether t is one of the fixed post types
func IsValidPostType(t string) bool {
	switch t {
	case PostTypeVideo, PostTypeImage, PostTypeText:
		return true
	}
	return false
}

// Post model. Likes and Views are sets of user ids maintained with
// $addToSet/$pull, so they never hold duplicates.
type Post struct {
	ID          primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      primitive.ObjectID   `json:"userId" bson:"userId"`
	Title       string               `json:"title" bson:"title"`
	Type        string               `json:"type" bson:"type"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	Src         string               `json:"src,omitempty" bson:"src,omitempty"`
	Content     string               `json:"content,omitempty" bson:"content,omitempty"`
	Comments    []primitive.ObjectID `json:"comments" bson:"comments"`
	Likes       []primitive.ObjectID `json:"-" bson:"likes"`
	Views       []primitive.ObjectID `json:"-" bson:"views"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`

	// Joined after fetch
	User *UserSummary `json:"user,omitempty" bson:"-"`
}

// PostView is a post enriched with interaction counters for one caller
type PostView struct {
	*Post
	LikeCount    int  `json:"likeCount"`
	ViewCount    int  `json:"viewCount"`
	CommentCount int  `json:"commentCount"`
	IsLiked      bool `json:"isLiked"`
}

// CreatePostRequest is the body of POST /api/posts
type CreatePostRequest struct {
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=video image text"`
	Description string `json:"description,omitempty"`
	Src         string `json:"src,omitempty"`
	Content     string `json:"content,omitempty"`
}

// UpdatePostRequest is the body of PUT /api/posts/:id. Type is fixed at
// creation and cannot be changed.
type UpdatePostRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Src         *string `json:"src,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// LikeRequest is the body of PATCH .../like
type LikeRequest struct {
	IsLiking *bool `json:"isLiking" validate:"required"`
}

// PostResponse wraps a single post
type PostResponse struct {
	Message string    `json:"message,omitempty"`
	Post    *PostView `json:"post"`
}

// PostsResponse is a page of posts
type PostsResponse struct {
	Posts []*PostView `json:"posts"`
	PageInfo
}

// ViewResponse reports the outcome of a view recording attempt
type ViewResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Views   int    `json:"views"`
}

// PostDetailResponse is returned by GET /api/posts/:id
type PostDetailResponse struct {
	Post *PostView    `json:"post"`
	View ViewResponse `json:"view"`
}
