package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notification-hub/internal/app"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/transport/http/handler"
	appmiddleware "github.com/go-notification-hub/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. When verifier is nil
// authentication and role checks are disabled.
func NewRouter(ctx context.Context, a *app.App, verifier appmiddleware.TokenVerifier) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	passThrough := func(next http.Handler) http.Handler { return next }
	authMw, adminMw := passThrough, passThrough
	if verifier != nil {
		authMw = appmiddleware.Auth(verifier)
		adminMw = appmiddleware.RequireRole(domain.RoleAdmin)
	}

	// 20 requests/second, burst of 40, on the send endpoints.
	sendRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(20), 40)

	healthH := handler.NewHealthHandler(func(ctx context.Context) error {
		_, err := a.Templates.List(ctx)
		return err
	})
	notifH := handler.NewNotificationHandler(a.Notifications, a.Engine)
	templateH := handler.NewTemplateHandler(a.Templates)
	statsH := handler.NewStatsHandler(a.Stats)
	opsH := handler.NewOperationsHandler(a.Retry, a.Archive)

	r.Handle("/metrics", a.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.With(sendRL.Limit).Post("/notifications", notifH.Send)
			r.With(sendRL.Limit).Post("/notifications/batch", notifH.BatchSend)
			r.Get("/notifications", notifH.ListUnread)
			r.Get("/notifications/{id}", notifH.Get)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
			r.Get("/notifications/{id}/deliveries", notifH.Deliveries)
			r.Get("/stats", statsH.Get)
			r.Get("/templates", templateH.List)
			r.Get("/templates/{name}", templateH.Get)
			r.Post("/templates/{name}/render", templateH.Render)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(adminMw)

				r.Put("/templates/{name}", templateH.Put)
				r.Post("/retry", opsH.Retry)
				r.Post("/deliveries/archive", opsH.Archive)
			})
		})
	})

	return r
}
