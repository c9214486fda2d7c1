package satsclub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/satsclub/docs"
	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentcreate"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentlist"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentread"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentremove"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentupdate"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/admin/contentupload"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/auth/signup"
	contentlistpub "github.com/magabrotheeeer/satsclub/internal/http/handlers/content/list"
	contentreadpub "github.com/magabrotheeeer/satsclub/internal/http/handlers/content/read"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/health"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/payment/webhook"
	settingsget "github.com/magabrotheeeer/satsclub/internal/http/handlers/settings/get"
	settingsupdate "github.com/magabrotheeeer/satsclub/internal/http/handlers/settings/update"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/subscription/checkout"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/subscription/process"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/uploads/serve"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/satsclub/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/satsclub/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/satsclub/internal/services/checkout"
	contentservice "github.com/magabrotheeeer/satsclub/internal/services/content"
	"github.com/magabrotheeeer/satsclub/internal/services/reconciler"
	settingsservice "github.com/magabrotheeeer/satsclub/internal/services/settings"
)

// Services зависимости обработчиков.
type Services struct {
	Auth     *authservice.Service
	Checkout *checkoutservice.Service
	Settings *settingsservice.Service
	Content  *contentservice.Service
	Webhooks *reconciler.Webhooks
	Health   map[string]health.CheckFunc
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	authenticate := middlewarectx.JWTMiddleware(s.Auth, logger)
	limit := middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/auth/signup", signup.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		})
		r.Get("/settings", settingsget.New(logger, s.Settings).ServeHTTP)

		// Webhook endpoint (без аутентификации, подлинность проверяется подписью)
		r.Post("/webhooks/payment", webhook.New(logger, s.Webhooks, cfg.Webhook).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(limit)
			r.Get("/me", me.New(logger).ServeHTTP)
			r.Post("/subscription/checkout", checkout.New(logger, s.Checkout).ServeHTTP)
			r.Post("/subscription/process", process.New(logger, s.Checkout).ServeHTTP)
			r.Get("/subscription/status/{checkoutId}", status.New(logger, s.Checkout).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireSubscription(logger))
				r.Get("/content", contentlistpub.New(logger, s.Content).ServeHTTP)
				r.Get("/content/{id}", contentreadpub.New(logger, s.Content).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Put("/settings", settingsupdate.New(logger, s.Settings).ServeHTTP)
				r.Post("/admin/content", contentcreate.New(logger, s.Content).ServeHTTP)
				r.Get("/admin/content", contentlist.New(logger, s.Content).ServeHTTP)
				r.Post("/admin/content/upload", contentupload.New(logger, s.Content, cfg.Uploads.MaxBytes).ServeHTTP)
				r.Get("/admin/content/{id}", contentread.New(logger, s.Content).ServeHTTP)
				r.Patch("/admin/content/{id}", contentupdate.New(logger, s.Content).ServeHTTP)
				r.Delete("/admin/content/{id}", contentremove.New(logger, s.Content).ServeHTTP)
			})
		})
	})

	r.With(authenticate, middlewarectx.RequireSubscription(logger)).Get("/uploads/*", serve.New(logger, s.Content).ServeHTTP)
	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
