package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/playerback_backend/config"
	"github.com/HSouheill/playerback_backend/models"
)

// CommentQuery selects either the top-level comments of a post or the
// replies to a comment
type CommentQuery struct {
	PostID          *primitive.ObjectID
	ParentCommentID *primitive.ObjectID
}

func (q CommentQuery) filter() bson.M {
	if q.ParentCommentID != nil {
		return bson.M{"parentCommentId": *q.ParentCommentID}
	}
	f := bson.M{"parentCommentId": nil}
	if q.PostID != nil {
		f["postId"] = *q.PostID
	}
	return f
}

// direction is oldest first for replies and newest first otherwise
func (q CommentQuery) direction() int {
	if q.ParentCommentID != nil {
		return OldestFirst
	}
	return NewestFirst
}

type CommentRepository struct {
	collection *mongo.Collection
	likes      *MembershipSet
	timeout    time.Duration
	retries    int
}

func NewCommentRepository(db *mongo.Database, timeout time.Duration, retries int) *CommentRepository {
	coll := db.Collection(config.CommentsCollection)
	return &CommentRepository{
		collection: coll,
		likes:      NewMembershipSet(coll, "likes", timeout, retries),
		timeout:    timeout,
		retries:    retries,
	}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.Likes = []primitive.ObjectID{}

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return err
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.collection.FindOne(opCtx, bson.M{"_id": id}).Decode(&comment)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Page(ctx context.Context, q CommentQuery, page, limit int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if err := findPage(ctx, r.collection, r.timeout, r.retries, q.filter(), q.direction(), page, limit, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Count(ctx context.Context, q CommentQuery) (int64, error) {
	return countDocuments(ctx, r.collection, r.timeout, r.retries, q.filter())
}

// UpdateContent replaces the comment text and returns the updated comment
func (r *CommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// IDsByPost returns the ids of every comment attached directly to postID
func (r *CommentRepository) IDsByPost(ctx context.Context, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.ids(ctx, bson.M{"postId": postID})
}

// ChildIDs returns the ids of the direct replies to any of parentIDs
func (r *CommentRepository) ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	return r.ids(ctx, bson.M{"parentCommentId": bson.M{"$in": parentIDs}})
}

// DeleteMany removes the given comments and returns how many were deleted
func (r *CommentRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *CommentRepository) SetLike(ctx context.Context, commentID, userID primitive.ObjectID, liking bool) (*models.Comment, error) {
	var comment models.Comment
	if err := r.likes.Set(ctx, commentID, userID, liking, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) IsLiked(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	return r.likes.Contains(ctx, commentID, userID)
}

func (r *CommentRepository) LikeCount(ctx context.Context, commentID primitive.ObjectID) (int, error) {
	return r.likes.Count(ctx, commentID)
}

func (r *CommentRepository) ids(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		cursor, err := r.collection.Find(opCtx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return err
		}
		rows = nil
		return cursor.All(opCtx, &rows)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
