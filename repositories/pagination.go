package repositories

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort directions on createdAt
const (
	NewestFirst = -1
	OldestFirst = 1
)

// findPage decodes one page of documents matching filter into out. page is
// 1-based; a page past the end yields an empty result and out is left as is.
func findPage(ctx context.Context, coll *mongo.Collection, timeout time.Duration, retries int,
	filter bson.M, direction, page, limit int, out interface{}) error {
	skip, ok := pageSkip(page, limit)
	if !ok {
		return nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(skip).
		SetLimit(int64(limit))

	return withReadRetry(ctx, retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cursor, err := coll.Find(opCtx, filter, opts)
		if err != nil {
			return err
		}
		return cursor.All(opCtx, out)
	})
}

// pageSkip returns the offset of page. ok is false when the offset does not
// fit in an int64, so no document can be on that page.
func pageSkip(page, limit int) (skip int64, ok bool) {
	p, l := int64(page)-1, int64(limit)
	if p <= 0 || l <= 0 {
		return 0, true
	}
	if p > math.MaxInt64/l {
		return 0, false
	}
	return p * l, true
}

func countDocuments(ctx context.Context, coll *mongo.Collection, timeout time.Duration, retries int, filter bson.M) (int64, error) {
	var n int64
	err := withReadRetry(ctx, retries, func() error {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		n, err = coll.CountDocuments(opCtx, filter)
		return err
	})
	return n, err
}
