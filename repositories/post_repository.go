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

// PostQuery selects posts for listing
type PostQuery struct {
	UserID *primitive.ObjectID
}

func (q PostQuery) filter() bson.M {
	f := bson.M{}
	if q.UserID != nil {
		f["userId"] = *q.UserID
	}
	return f
}

type PostRepository struct {
	collection *mongo.Collection
	likes      *MembershipSet
	views      *MembershipSet
	timeout    time.Duration
	retries    int
}

func NewPostRepository(db *mongo.Database, timeout time.Duration, retries int) *PostRepository {
	coll := db.Collection(config.PostsCollection)
	return &PostRepository{
		collection: coll,
		likes:      NewMembershipSet(coll, "likes", timeout, retries),
		views:      NewMembershipSet(coll, "views", timeout, retries),
		timeout:    timeout,
		retries:    retries,
	}
}

// Create inserts post with empty interaction sets and comment list
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Comments = []primitive.ObjectID{}
	post.Likes = []primitive.ObjectID{}
	post.Views = []primitive.ObjectID{}

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return err
	}
	post.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.collection.FindOne(opCtx, bson.M{"_id": id}).Decode(&post)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Page returns one page of posts, newest first
func (r *PostRepository) Page(ctx context.Context, q PostQuery, page, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := findPage(ctx, r.collection, r.timeout, r.retries, q.filter(), NewestFirst, page, limit, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, q PostQuery) (int64, error) {
	return countDocuments(ctx, r.collection, r.timeout, r.retries, q.filter())
}

// Update sets and unsets fields and returns the updated post
func (r *PostRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set["updatedAt"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PushComment appends commentID to the post's comment list
func (r *PostRepository) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": commentID}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PullComments removes commentIDs from the post's comment list. A missing
// post is not an error.
func (r *PostRepository) PullComments(ctx context.Context, postID primitive.ObjectID, commentIDs []primitive.ObjectID) error {
	if len(commentIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$pull": bson.M{"comments": bson.M{"$in": commentIDs}}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	return err
}

// SetLike adds or removes userID from the post's likes
func (r *PostRepository) SetLike(ctx context.Context, postID, userID primitive.ObjectID, liking bool) (*models.Post, error) {
	var post models.Post
	if err := r.likes.Set(ctx, postID, userID, liking, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) IsLiked(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	return r.likes.Contains(ctx, postID, userID)
}

func (r *PostRepository) LikeCount(ctx context.Context, postID primitive.ObjectID) (int, error) {
	return r.likes.Count(ctx, postID)
}

// AddView records userID as a viewer and reports whether this call was the
// first view by that user
func (r *PostRepository) AddView(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	return r.views.AddOnce(ctx, postID, userID)
}

func (r *PostRepository) ViewCount(ctx context.Context, postID primitive.ObjectID) (int, error) {
	return r.views.Count(ctx, postID)
}
