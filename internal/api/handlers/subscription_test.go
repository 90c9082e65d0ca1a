package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/testutil"
)

type subscriptionHandlerFixture struct {
	handler *SubscriptionHandler
	subs    *services.SubscriptionService
	users   *testutil.MockUserRepository
}

func newSubscriptionHandlerFixture() *subscriptionHandlerFixture {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	users := testutil.NewMockUserRepository()
	userSvc := services.NewUserService(users, config.AuthConfig{JWTSecret: "test-secret", BCryptCost: 4}, log)
	subSvc := services.NewSubscriptionService(testutil.NewMockSubscriptionRepository(), userSvc, testutil.NewMockBillingProvider(), log)

	return &subscriptionHandlerFixture{
		handler: NewSubscriptionHandler(subSvc, log, validator.New()),
		subs:    subSvc,
		users:   users,
	}
}

func authedRequest(method, target string, body []byte, userID int64) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func TestSubscriptionHandler_Plans(t *testing.T) {
	f := newSubscriptionHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rr := httptest.NewRecorder()
	f.handler.Plans(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}

	var resp struct {
		Data []struct {
			Tier              string `json:"tier"`
			MonthlyPriceCents int64  `json:"monthlyPriceCents"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 4 {
		t.Fatalf("got %d plans, want 4", len(resp.Data))
	}
	if resp.Data[0].Tier != "FREE" || resp.Data[3].MonthlyPriceCents != 4990 {
		t.Errorf("unexpected plan ordering: %+v", resp.Data)
	}
}

func TestSubscriptionHandler_CurrentCreatesFreeSub(t *testing.T) {
	f := newSubscriptionHandlerFixture()

	rr := httptest.NewRecorder()
	f.handler.Current(rr, authedRequest(http.MethodGet, "/api/subscriptions/current", nil, 1))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Tier   string `json:"tier"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Tier != "FREE" || resp.Data.Status != "active" {
		t.Errorf("got %s/%s, want FREE/active", resp.Data.Tier, resp.Data.Status)
	}
}

func TestSubscriptionHandler_CurrentRequiresAuth(t *testing.T) {
	f := newSubscriptionHandlerFixture()

	rr := httptest.NewRecorder()
	f.handler.Current(rr, httptest.NewRequest(http.MethodGet, "/api/subscriptions/current", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", rr.Code)
	}
}

func TestSubscriptionHandler_UpgradeValidation(t *testing.T) {
	f := newSubscriptionHandlerFixture()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown tier", `{"tier":"GOLD"}`, http.StatusBadRequest},
		{"missing tier", `{}`, http.StatusBadRequest},
		{"free tier needs a purchase first", `{"tier":"BASIC"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			f.handler.Upgrade(rr, authedRequest(http.MethodPost, "/api/subscriptions/upgrade", []byte(tt.body), 1))

			if rr.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestSubscriptionHandler_CancelWithoutPaidPlan(t *testing.T) {
	f := newSubscriptionHandlerFixture()

	rr := httptest.NewRecorder()
	f.handler.Cancel(rr, authedRequest(http.MethodPost, "/api/subscriptions/cancel", nil, 1))

	if rr.Code != http.StatusConflict {
		t.Errorf("got status %d, want 409: %s", rr.Code, rr.Body.String())
	}
}
