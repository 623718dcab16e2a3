// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/playerback_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]map[string]*rate.Limiter // ip -> endpoint bucket
	lastSeen       map[string]time.Time
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	idleTimeout    time.Duration
	endpointLimits map[string]endpointLimit
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]map[string]*rate.Limiter),
		lastSeen:      make(map[string]time.Time),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20}, // 10 requests per second
		blockDuration: 5 * time.Minute,
		idleTimeout:   10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// strict to slow down credential stuffing
			"/api/users/login":    {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/users/register": {limit: rate.Every(500 * time.Millisecond), burst: 5},
		},
	}
}

// Run clears expired blocks and idle clients until ctx is done
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.cleanup(now)
		}
	}
}

func (r *RateLimiter) cleanup(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			delete(r.ips, ip)
			delete(r.lastSeen, ip)
		}
	}
	for ip, seen := range r.lastSeen {
		if _, blocked := r.blockedIPs[ip]; blocked {
			continue
		}
		if now.Sub(seen) > r.idleTimeout {
			delete(r.ips, ip)
			delete(r.lastSeen, ip)
		}
	}
}

// trackedIPs returns the number of clients holding limiter state
func (r *RateLimiter) trackedIPs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ips)
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			path := c.Path()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				// Block has expired - reset the limiter
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}

			r.lastSeen[ip] = time.Now()
			limiter := r.getLimiter(ip, path)

			if !limiter.Allow() {
				blockUntil := time.Now().Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
	})
}

// getLimiter must be called with r.mu held
func (r *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	el, ok := r.endpointLimits[path]
	if !ok {
		el = r.defaultLimit
		path = ""
	}

	buckets, exists := r.ips[ip]
	if !exists {
		buckets = make(map[string]*rate.Limiter)
		r.ips[ip] = buckets
	}
	limiter, exists := buckets[path]
	if !exists {
		limiter = rate.NewLimiter(el.limit, el.burst)
		buckets[path] = limiter
	}
	return limiter
}
