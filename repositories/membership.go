package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/playerback_backend/models"
)

// MembershipSet is a set of user ids stored in one array field of a
// collection's documents. Every mutation is a single atomic update.
type MembershipSet struct {
	collection *mongo.Collection
	field      string
	timeout    time.Duration
	retries    int
}

// NewMembershipSet binds a set to field of collection
func NewMembershipSet(collection *mongo.Collection, field string, timeout time.Duration, retries int) *MembershipSet {
	return &MembershipSet{collection: collection, field: field, timeout: timeout, retries: retries}
}

// Set adds userID to the set when member is true and removes it otherwise.
// Both directions are idempotent. The updated document is decoded into out.
func (s *MembershipSet) Set(ctx context.Context, entityID, userID primitive.ObjectID, member bool, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	op := "$pull"
	if member {
		op = "$addToSet"
	}
	update := bson.M{op: bson.M{s.field: userID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": entityID}, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

// AddOnce adds userID if absent and reports whether this call added it.
// The filter excludes documents that already contain userID, so concurrent
// callers cannot both observe added == true.
func (s *MembershipSet) AddOnce(ctx context.Context, entityID, userID primitive.ObjectID) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{"_id": entityID, s.field: bson.M{"$ne": userID}}
	update := bson.M{"$addToSet": bson.M{s.field: userID}}

	result, err := s.collection.UpdateOne(opCtx, filter, update)
	if err != nil {
		return false, err
	}
	if result.ModifiedCount > 0 {
		return true, nil
	}

	exists, err := s.exists(ctx, entityID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, models.ErrNotFound
	}
	return false, nil
}

// Contains reports whether userID is in the set. A missing entity yields false.
func (s *MembershipSet) Contains(ctx context.Context, entityID, userID primitive.ObjectID) (bool, error) {
	var n int64
	err := withReadRetry(ctx, s.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		n, err = s.collection.CountDocuments(opCtx, bson.M{"_id": entityID, s.field: userID}, options.Count().SetLimit(1))
		return err
	})
	return n > 0, err
}

// Count returns the size of the set. A missing entity yields 0.
func (s *MembershipSet) Count(ctx context.Context, entityID primitive.ObjectID) (int, error) {
	var rows []struct {
		N int `bson:"n"`
	}
	err := withReadRetry(ctx, s.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"_id": entityID}}},
			{{Key: "$project", Value: bson.M{"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + s.field, bson.A{}}}}}}},
		}
		cursor, err := s.collection.Aggregate(opCtx, pipeline)
		if err != nil {
			return err
		}
		return cursor.All(opCtx, &rows)
	})
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].N, nil
}

func (s *MembershipSet) exists(ctx context.Context, entityID primitive.ObjectID) (bool, error) {
	var n int64
	err := withReadRetry(ctx, s.retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		n, err = s.collection.CountDocuments(opCtx, bson.M{"_id": entityID}, options.Count().SetLimit(1))
		return err
	})
	return n > 0, err
}
