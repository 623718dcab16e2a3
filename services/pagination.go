package services

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/playerback_backend/models"
)

// listPage runs the total count and the page fetch concurrently
func listPage[T any](ctx context.Context, page, limit int,
	count func(ctx context.Context) (int64, error),
	fetch func(ctx context.Context) ([]T, error),
) ([]T, models.PageInfo, error) {
	var (
		total int64
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = fetch(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.PageInfo{}, err
	}

	return items, models.NewPageInfo(page, limit, total), nil
}

// joinAuthors loads display fields for the distinct owners in ownerIDs
func joinAuthors(ctx context.Context, users UserStore, ownerIDs []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	return users.Summaries(ctx, lo.Uniq(ownerIDs))
}

func containsID(ids []primitive.ObjectID, id *primitive.ObjectID) bool {
	if id == nil {
		return false
	}
	return lo.Contains(ids, *id)
}
