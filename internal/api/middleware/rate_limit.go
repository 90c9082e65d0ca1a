package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/utils"
)

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter *rate.Limiter
	tier    subscription.Tier
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// getLimiter returns the bucket for a key, creating it on first use. A tier
// change replaces the bucket so the new limit applies immediately.
func (rl *RateLimiter) getLimiter(key string, tier subscription.Tier) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[key]
	if exists && entry.tier == tier {
		return entry.limiter
	}

	r, burst := rl.rate, rl.burst
	if tier != "" {
		rpm := tier.RequestsPerMinute()
		r = rate.Limit(float64(rpm) / 60)
		burst = rpm
	}

	entry = &limiterEntry{limiter: rate.NewLimiter(r, burst), tier: tier}
	rl.limiters[key] = entry
	return entry.limiter
}

// Cleanup removes idle buckets
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if entry.limiter.Tokens() == float64(entry.limiter.Burst()) {
			delete(rl.limiters, key)
		}
	}
}

func startCleanup(rl *RateLimiter) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.Cleanup()
		}
	}()
}

// RateLimit returns a middleware that rate limits requests by IP
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requestsPerSecond, burst)
	startCleanup(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.getLimiter(r.RemoteAddr, "").Allow() {
				utils.WriteError(w, errors.RateLimited("Too many requests. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TierRateLimit returns a middleware that rate limits authenticated users
// according to their subscription tier. Unauthenticated requests fall back
// to IP-based limiting at the FREE tier rate.
func TierRateLimit(users user.Service) func(http.Handler) http.Handler {
	freeRPM := subscription.TierFree.RequestsPerMinute()
	limiter := NewRateLimiter(float64(freeRPM)/60, freeRPM)
	startCleanup(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				if !limiter.getLimiter("ip:"+r.RemoteAddr, subscription.TierFree).Allow() {
					utils.WriteError(w, errors.RateLimited("Too many requests. Please try again later."))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tier := subscription.TierFree
			if u, err := users.GetByID(r.Context(), userID); err == nil && u.Tier.Valid() {
				tier = u.Tier
			}

			key := fmt.Sprintf("user:%d", userID)
			if !limiter.getLimiter(key, tier).Allow() {
				utils.WriteError(w, errors.RateLimited(
					fmt.Sprintf("Rate limit of %d requests/min reached for the %s tier", tier.RequestsPerMinute(), tier)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
