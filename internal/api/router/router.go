package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tradepulse/backend/internal/api/handlers"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/user"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Subscription *handlers.SubscriptionHandler
	Payment      *handlers.PaymentHandler
	Trade        *handlers.TradeHandler
	Stats        *handlers.StatsHandler
	ShortLink    *handlers.ShortLinkHandler
	Feedback     *handlers.FeedbackHandler
	Bot          *handlers.BotHandler
}

// New builds the HTTP routing tree. Four surfaces share it: public
// endpoints, the API-key surface for the bot and signal pipeline, the
// JWT surface for users, and the admin surface on top of JWT.
func New(cfg *config.Config, log *logger.Logger, users user.Service, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.Refresh)

		r.Get("/api/plans", h.Subscription.Plans)
		// The public track record, also read by the bot process
		r.Get("/api/stats/trading/overview", h.Stats.GlobalOverview)
		r.Get("/api/stats/trading/origins", h.Stats.GlobalOrigins)

		// Marketing short links live at the root, outside /api.
		r.Get("/go/{slug}", h.ShortLink.Redirect)

		// Stripe calls this; it authenticates with its signature header.
		r.Post("/api/payments/webhook", h.Payment.Webhook)
	})

	// Service surface for the bot process and the signal pipeline
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyMiddleware(cfg.Auth.APIKey))

		r.Post("/api/bot/command", h.Bot.Command)
		r.Post("/api/feedback/submit", h.Feedback.Submit)

		r.Route("/api/trades", func(r chi.Router) {
			r.Post("/", h.Trade.Record)
			r.Get("/{userId}", h.Trade.List)
			r.Delete("/{userId}/{id}", h.Trade.Delete)
		})
	})

	// User surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		r.Use(middleware.TierRateLimit(users))

		r.Get("/api/auth/me", h.Auth.Me)
		r.Put("/api/auth/language", h.Auth.SetLanguage)

		r.Route("/api/subscriptions", func(r chi.Router) {
			r.Get("/current", h.Subscription.Current)
			r.Post("/upgrade", h.Subscription.Upgrade)
			r.Post("/downgrade", h.Subscription.Downgrade)
			r.Post("/cancel", h.Subscription.Cancel)
		})

		r.Route("/api/payments", func(r chi.Router) {
			r.Post("/", h.Payment.CreateInvoice)
			r.Get("/", h.Payment.List)
			r.Get("/{id}", h.Payment.Get)
		})

		r.Route("/api/trades/my", func(r chi.Router) {
			r.Post("/", h.Trade.RecordMine)
			r.Get("/", h.Trade.ListMine)
			r.Delete("/{id}", h.Trade.DeleteMine)
		})

		r.Route("/api/stats/my", func(r chi.Router) {
			r.Get("/overview", h.Stats.UserOverview)
			r.Get("/origins", h.Stats.UserOrigins)
		})
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
		r.Use(middleware.RequireAdmin())

		r.Route("/api/admin", func(r chi.Router) {
			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", h.Subscription.List)
				r.Post("/{id}/activate", h.Subscription.Activate)
				r.Post("/{id}/extend", h.Subscription.Extend)
			})
			r.Post("/users/{userId}/subscription/cancel", h.Subscription.AdminCancel)

			r.Get("/payments", h.Payment.AdminList)
			r.Get("/payments/stats", h.Payment.Stats)
			r.Post("/payments/{id}/refund", h.Payment.Refund)

			r.Get("/stats/funnel", h.Stats.Funnel)
			r.Get("/stats/revenue", h.Stats.Revenue)

			r.Route("/links", func(r chi.Router) {
				r.Get("/", h.ShortLink.List)
				r.Post("/", h.ShortLink.Create)
				r.Get("/{slug}", h.ShortLink.Get)
				r.Post("/{slug}/deactivate", h.ShortLink.Deactivate)
				r.Delete("/{slug}", h.ShortLink.Delete)
			})

			r.Get("/feedback", h.Feedback.List)
		})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", metrics.Handler())

	return r
}
