package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCommentLength bounds comment content
const MaxCommentLength = 1000

// Comment is attached to exactly one of a post or a parent comment
type Comment struct {
	ID              primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID   `json:"userId" bson:"userId"`
	PostID          *primitive.ObjectID  `json:"postId,omitempty" bson:"postId,omitempty"`
	ParentCommentID *primitive.ObjectID  `json:"parentCommentId,omitempty" bson:"parentCommentId,omitempty"`
	Content         string               `json:"content" bson:"content"`
	Likes           []primitive.ObjectID `json:"-" bson:"likes"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updatedAt"`

	User *UserSummary `json:"user,omitempty" bson:"-"`
}

// CommentView is a comment enriched with like info for one caller
type CommentView struct {
	*Comment
	LikeCount int  `json:"likeCount"`
	IsLiked   bool `json:"isLiked"`
}

// CreateCommentRequest is the body of POST /api/comments
type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required,max=1000"`
	PostID          string `json:"postId,omitempty"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

// UpdateCommentRequest is the body of PUT /api/comments/:id
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CommentResponse wraps a single comment
type CommentResponse struct {
	Message string       `json:"message,omitempty"`
	Comment *CommentView `json:"comment"`
}

// CommentsResponse is a page of top-level comments
type CommentsResponse struct {
	Comments []*CommentView `json:"comments"`
	PageInfo
}

// RepliesResponse is a page of replies
type RepliesResponse struct {
	Replies []*CommentView `json:"replies"`
	PageInfo
}
