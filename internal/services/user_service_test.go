package services

import (
	"context"
	"testing"
	"time"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/testutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		BCryptCost:         4, // min cost keeps tests fast
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo, testAuthConfig(), testutil.NewTestLogger())

	ctx := context.Background()
	u, err := svc.Register(ctx, "trader", "Trader@Example.com", "hunter22", 0)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "trader@example.com" {
		t.Errorf("Register() email = %q, want lowercased", u.Email)
	}
	if u.FunnelStage != user.StageRegistered {
		t.Errorf("Register() stage = %v, want registered", u.FunnelStage)
	}
	if u.PasswordHash == "" || u.PasswordHash == "hunter22" {
		t.Error("Register() should store a hash, not the password")
	}

	got, pair, err := svc.Login(ctx, "trader@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Login() user = %d, want %d", got.ID, u.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Login() should mint both tokens")
	}

	if _, _, err := svc.Login(ctx, "trader@example.com", "wrong"); err == nil {
		t.Error("Login() with a wrong password should fail")
	}
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo, testAuthConfig(), testutil.NewTestLogger())

	ctx := context.Background()
	if _, err := svc.Register(ctx, "a", "dup@example.com", "pw", 42); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Register(ctx, "b", "dup@example.com", "pw", 0); err == nil {
		t.Error("Register() with a taken email should fail")
	}
	if _, err := svc.Register(ctx, "c", "other@example.com", "pw", 42); err == nil {
		t.Error("Register() with a taken telegram ID should fail")
	}
}

func TestUserService_Refresh(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo, testAuthConfig(), testutil.NewTestLogger())

	ctx := context.Background()
	u, err := svc.Register(ctx, "trader", "r@example.com", "pw", 0)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, pair, err := svc.Login(ctx, "r@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("Refresh() should mint a new access token")
	}

	// A deleted account cannot keep refreshing.
	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Error("Refresh() for a deleted user should fail")
	}

	if _, err := svc.Refresh(ctx, "not-a-token"); err == nil {
		t.Error("Refresh() with garbage should fail")
	}
}

func TestUserService_AdvanceFunnel(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo, testAuthConfig(), testutil.NewTestLogger())

	ctx := context.Background()
	u, err := svc.Register(ctx, "trader", "f@example.com", "pw", 0)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name    string
		stage   string
		wantErr bool
	}{
		{"forward to trial", user.StageTrial, false},
		{"forward to paid", user.StagePaid, false},
		{"backwards to registered", user.StageRegistered, true},
		{"drop to churned", user.StageChurned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AdvanceFunnel(ctx, u.ID, tt.stage)
			if (err != nil) != tt.wantErr {
				t.Errorf("AdvanceFunnel(%s) error = %v, wantErr %v", tt.stage, err, tt.wantErr)
			}
		})
	}
}
