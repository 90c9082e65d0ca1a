package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_BucketReplacedOnTierChange(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	basic := rl.getLimiter("user:1", subscription.TierBasic)
	if got := rl.getLimiter("user:1", subscription.TierBasic); got != basic {
		t.Error("same tier should reuse the bucket")
	}
	if got := rl.getLimiter("user:1", subscription.TierVIP); got == basic {
		t.Error("tier change should replace the bucket")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	idle := rl.getLimiter("idle", subscription.TierFree)
	drained := rl.getLimiter("drained", subscription.TierFree)
	_ = idle
	for drained.Allow() {
	}

	rl.Cleanup()

	rl.mu.Lock()
	_, idleKept := rl.limiters["idle"]
	_, drainedKept := rl.limiters["drained"]
	rl.mu.Unlock()

	if idleKept {
		t.Error("full bucket should be removed")
	}
	if !drainedKept {
		t.Error("active bucket should survive cleanup")
	}
}

func TestTierRateLimit_UserBucket(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	users := testutil.NewMockUserRepository()
	userSvc := services.NewUserService(users, config.AuthConfig{JWTSecret: "test-secret", BCryptCost: 4}, log)

	ctx := context.Background()
	u, err := userSvc.Register(ctx, "trader", "trader@example.com", "password1", 0)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	handler := TierRateLimit(userSvc)(okHandler())

	freeRPM := subscription.TierFree.RequestsPerMinute()
	for i := 0; i < freeRPM; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, u.ID))
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d got status %d, want 200", i, rr.Code)
		}
	}

	// Burst exhausted; the next request is rejected.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, u.ID))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}

	// A tier upgrade replaces the bucket, so the user can talk again.
	if err := userSvc.SetTier(ctx, u.ID, subscription.TierVIP); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, u.ID))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d after upgrade, want 200", rr.Code)
	}
}

func TestTierRateLimit_AnonymousFallsBackToIP(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	users := testutil.NewMockUserRepository()
	userSvc := services.NewUserService(users, config.AuthConfig{JWTSecret: "test-secret", BCryptCost: 4}, log)

	handler := TierRateLimit(userSvc)(okHandler())

	freeRPM := subscription.TierFree.RequestsPerMinute()
	for i := 0; i < freeRPM; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d got status %d, want 200", i, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
}
