package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const retryBackoff = 50 * time.Millisecond

// withReadRetry runs an idempotent read up to retries+1 times while it fails
// with a network or timeout error. Mutations never go through here.
func withReadRetry(ctx context.Context, retries int, read func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = read()
		if err == nil || attempt >= retries || !isTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		}
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
