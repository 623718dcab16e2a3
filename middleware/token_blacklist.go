package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBlacklist holds revoked tokens until they would have expired anyway
type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiry time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

const blacklistPrefix = "blacklist:"

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistPrefix + hex.EncodeToString(sum[:])
}

// RedisBlacklist stores revoked tokens in Redis with a TTL
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Add(ctx context.Context, token string, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, tokenKey(token), 1, ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	err := b.client.Get(ctx, tokenKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryBlacklist is the in-process fallback used when Redis is unavailable
type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Add(_ context.Context, token string, expiry time.Time) error {
	b.mu.Lock()
	b.tokens[tokenKey(token)] = expiry
	b.mu.Unlock()
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	expiry, ok := b.tokens[tokenKey(token)]
	b.mu.RUnlock()
	return ok && time.Now().Before(expiry), nil
}

// Cleanup periodically removes expired tokens until ctx is done
func (b *MemoryBlacklist) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.Lock()
			now := time.Now()
			for key, expiry := range b.tokens {
				if now.After(expiry) {
					delete(b.tokens, key)
				}
			}
			b.mu.Unlock()
		}
	}
}
