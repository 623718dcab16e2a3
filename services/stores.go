package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
)

// UserStore is the identity store used by the services
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error)
}

// PostStore is the content store
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Page(ctx context.Context, q repositories.PostQuery, page, limit int) ([]*models.Post, error)
	Count(ctx context.Context, q repositories.PostQuery) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	PullComments(ctx context.Context, postID primitive.ObjectID, commentIDs []primitive.ObjectID) error
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liking bool) (*models.Post, error)
	IsLiked(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	LikeCount(ctx context.Context, postID primitive.ObjectID) (int, error)
	AddView(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	ViewCount(ctx context.Context, postID primitive.ObjectID) (int, error)
}

// CommentStore is the discussion store
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	Page(ctx context.Context, q repositories.CommentQuery, page, limit int) ([]*models.Comment, error)
	Count(ctx context.Context, q repositories.CommentQuery) (int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	IDsByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	SetLike(ctx context.Context, commentID, userID primitive.ObjectID, liking bool) (*models.Comment, error)
	IsLiked(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error)
	LikeCount(ctx context.Context, commentID primitive.ObjectID) (int, error)
}

// Notifier receives interaction events. The websocket hub implements it.
type Notifier interface {
	Broadcast(eventType string, data interface{})
	NotifyUser(userID primitive.ObjectID, eventType, message string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(string, interface{})                                  {}
func (noopNotifier) NotifyUser(primitive.ObjectID, string, string, interface{}) {}

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	GenerateJWT(userID primitive.ObjectID, username string) (string, error)
}
