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

// ErrDuplicate is returned when a unique index rejects a write
var ErrDuplicate = errors.New("duplicate key")

type UserRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	retries    int
}

func NewUserRepository(db *mongo.Database, timeout time.Duration, retries int) *UserRepository {
	return &UserRepository{
		collection: db.Collection(config.UsersCollection),
		timeout:    timeout,
		retries:    retries,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// ExistsByEmailOrUsername reports whether another user holds email or username
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"username": username}}}
		var err error
		n, err = r.collection.CountDocuments(opCtx, filter, options.Count().SetLimit(1))
		return err
	})
	return n > 0, err
}

// Update applies set to the user and returns the updated document
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicate
	case err != nil:
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

// Summaries loads display fields for ids, keyed by id
func (r *UserRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	out := make(map[primitive.ObjectID]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []*models.UserSummary
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		opts := options.Find().SetProjection(bson.M{"username": 1, "name": 1})
		cursor, err := r.collection.Find(opCtx, bson.M{"_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return err
		}
		users = nil
		return cursor.All(opCtx, &users)
	})
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := withReadRetry(ctx, r.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return r.collection.FindOne(opCtx, filter).Decode(&user)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
