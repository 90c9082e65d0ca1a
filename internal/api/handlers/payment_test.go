package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/payment"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/testutil"
)

type paymentHandlerFixture struct {
	handler *PaymentHandler
	repo    *testutil.MockPaymentRepository
}

func newPaymentHandlerFixture() *paymentHandlerFixture {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	users := testutil.NewMockUserRepository()
	userSvc := services.NewUserService(users, config.AuthConfig{JWTSecret: "test-secret", BCryptCost: 4}, log)
	provider := testutil.NewMockBillingProvider()
	subSvc := services.NewSubscriptionService(testutil.NewMockSubscriptionRepository(), userSvc, provider, log)
	repo := testutil.NewMockPaymentRepository()
	paySvc := services.NewPaymentService(repo, subSvc, provider, log)

	return &paymentHandlerFixture{
		handler: NewPaymentHandler(paySvc, "", log, validator.New()),
		repo:    repo,
	}
}

func seedPayment(f *paymentHandlerFixture, id string, userID int64, status, provider string) {
	f.repo.Payments[id] = &payment.Payment{
		ID:          id,
		UserID:      userID,
		AmountCents: 2490,
		Currency:    "usd",
		Status:      status,
		Provider:    provider,
		CreatedAt:   time.Now(),
	}
}

type paginatedPaymentsResponse struct {
	Data struct {
		Data []struct {
			ID     string `json:"id"`
			UserID int64  `json:"userId"`
			Status string `json:"status"`
		} `json:"data"`
		TotalItems int64 `json:"total_items"`
	} `json:"data"`
}

func TestPaymentHandler_AdminList(t *testing.T) {
	f := newPaymentHandlerFixture()
	seedPayment(f, "pay_1", 1, payment.StatusCompleted, payment.ProviderStripe)
	seedPayment(f, "pay_2", 2, payment.StatusCompleted, payment.ProviderManual)
	seedPayment(f, "pay_3", 2, payment.StatusPending, payment.ProviderStripe)

	tests := []struct {
		name      string
		query     string
		wantTotal int64
	}{
		{"no filter spans all users", "", 3},
		{"by status", "?status=completed", 2},
		{"by provider", "?provider=manual", 1},
		{"status and provider", "?status=completed&provider=stripe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			f.handler.AdminList(rr, httptest.NewRequest(http.MethodGet, "/api/admin/payments"+tt.query, nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
			}

			var resp paginatedPaymentsResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Data.TotalItems != tt.wantTotal {
				t.Errorf("total_items = %d, want %d", resp.Data.TotalItems, tt.wantTotal)
			}
			if int64(len(resp.Data.Data)) != tt.wantTotal {
				t.Errorf("got %d payments, want %d", len(resp.Data.Data), tt.wantTotal)
			}
		})
	}

	// Distinct users show up in one listing.
	rr := httptest.NewRecorder()
	f.handler.AdminList(rr, httptest.NewRequest(http.MethodGet, "/api/admin/payments?status=completed", nil))
	var resp paginatedPaymentsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	seen := map[int64]bool{}
	for _, p := range resp.Data.Data {
		seen[p.UserID] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("expected payments from both users, got %v", resp.Data.Data)
	}
}

func TestPaymentHandler_AdminListTimeWindow(t *testing.T) {
	f := newPaymentHandlerFixture()
	seedPayment(f, "pay_old", 1, payment.StatusCompleted, payment.ProviderStripe)
	seedPayment(f, "pay_new", 1, payment.StatusCompleted, payment.ProviderStripe)
	f.repo.Payments["pay_old"].CreatedAt = time.Now().Add(-48 * time.Hour)

	from := time.Now().Add(-time.Hour).Format(time.RFC3339)
	rr := httptest.NewRecorder()
	f.handler.AdminList(rr, httptest.NewRequest(http.MethodGet, "/api/admin/payments?from="+from, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp paginatedPaymentsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TotalItems != 1 || len(resp.Data.Data) != 1 || resp.Data.Data[0].ID != "pay_new" {
		t.Errorf("window filter returned %+v, want only pay_new", resp.Data.Data)
	}

	// Garbage timestamps are rejected, not silently ignored.
	rr = httptest.NewRecorder()
	f.handler.AdminList(rr, httptest.NewRequest(http.MethodGet, "/api/admin/payments?from=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rr.Code)
	}
}
