package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tradepulse/backend/internal/domain/shortlink"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/validator"
	"github.com/tradepulse/backend/internal/services"
	"github.com/tradepulse/backend/internal/testutil"
)

func newShortLinkRouter(t *testing.T) (chi.Router, shortlink.Service) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	svc := services.NewShortLinkService(testutil.NewMockShortLinkRepository(), log)
	handler := NewShortLinkHandler(svc, log, validator.New())

	r := chi.NewRouter()
	r.Get("/go/{slug}", handler.Redirect)
	return r, svc
}

func TestShortLinkHandler_RedirectAddsUTM(t *testing.T) {
	r, svc := newShortLinkRouter(t)

	_, err := svc.Create(context.Background(), &shortlink.ShortLink{
		Slug:      "spring",
		TargetURL: "https://tradepulse.app/landing",
		Campaign:  "spring-promo",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/go/spring", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("got status %d, want 302", rr.Code)
	}

	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	q := loc.Query()
	if q.Get("utm_source") != "telegram" || q.Get("utm_medium") != "social" {
		t.Errorf("missing default UTM tags: %s", loc)
	}
	if q.Get("utm_campaign") != "spring-promo" {
		t.Errorf("got campaign %q, want spring-promo", q.Get("utm_campaign"))
	}
}

func TestShortLinkHandler_RedirectUnknownSlug(t *testing.T) {
	r, _ := newShortLinkRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/go/missing", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rr.Code)
	}
}
