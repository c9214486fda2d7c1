// Package satsclub собирает HTTP API: хранилище, кеш, брокер, клиент провайдера и сервисы.
package satsclub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/satsclub/internal/cache"
	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/http/handlers/health"
	"github.com/magabrotheeeer/satsclub/internal/lib/jwt"
	"github.com/magabrotheeeer/satsclub/internal/lib/password"
	"github.com/magabrotheeeer/satsclub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/metrics"
	"github.com/magabrotheeeer/satsclub/internal/migrations"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/satsclub/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/satsclub/internal/services/checkout"
	contentservice "github.com/magabrotheeeer/satsclub/internal/services/content"
	"github.com/magabrotheeeer/satsclub/internal/services/reconciler"
	settingsservice "github.com/magabrotheeeer/satsclub/internal/services/settings"
	"github.com/magabrotheeeer/satsclub/internal/storage"
)

// EnvProd окружение, в котором приём неподписанных вебхуков считается ошибкой конфигурации.
const EnvProd = "prod"

// App HTTP API платформы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	pub    *rabbitmq.Publisher
}

// New создаёт App. Недоступные Redis и RabbitMQ не прерывают запуск:
// сервис работает без кеша и без публикации событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.satsclub.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.CheckDatabaseReady(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db}

	var (
		checkoutCache checkoutservice.Cache
		settingsCache settingsservice.Cache
	)
	if c, err := cache.InitServer(ctx, cfg.RedisConnection); err != nil {
		logger.Warn("redis unavailable, running without cache", sl.Err(err))
	} else {
		app.cache = c
		checkoutCache, settingsCache = c, c
	}

	var publisher reconciler.Publisher
	if conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay); err != nil {
		logger.Warn("rabbitmq unavailable, events will not be published", sl.Err(err))
	} else if ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetQueues()); err != nil {
		logger.Warn("rabbitmq channel setup failed, events will not be published", sl.Err(err))
		_ = conn.Close()
	} else {
		app.conn = conn
		app.pub = rabbitmq.NewPublisher(ch)
		publisher = app.pub
	}

	provider := paymentprovider.NewClient(cfg.Bitvora)
	if !provider.Configured() {
		logger.Warn("bitvora credentials are not set, checkout endpoints will fail")
	}

	rec := reconciler.New(db, provider, publisher, logger)
	webhooks := reconciler.NewWebhooks(rec, db, cfg.Webhook.Secret, logger)
	if webhooks.Permissive() && cfg.Env == EnvProd {
		logger.Warn("webhook secret is not configured, signatures are checked only if settings provide one")
	}

	authService := authservice.NewService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL))
	if err := seedAdmin(ctx, db, cfg.Admin, logger); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := metrics.RegisterStoreGauges(prometheus.DefaultRegisterer, db); err != nil {
		logger.Warn("failed to register store gauges", sl.Err(err))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, Services{
		Auth:     authService,
		Checkout: checkoutservice.NewService(provider, rec, checkoutCache, logger),
		Settings: settingsservice.NewService(db, settingsCache, logger),
		Content:  contentservice.NewService(db, cfg.Uploads.Dir, logger),
		Webhooks: webhooks,
		Health:   app.healthChecks(),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// AdminStore создание учётной записи администратора.
type AdminStore interface {
	EnsureAdmin(ctx context.Context, email, name, passwordHash string) (string, error)
}

func seedAdmin(ctx context.Context, store AdminStore, cfg config.Admin, logger *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	hash, err := password.GetHash(cfg.Password)
	if err != nil {
		return err
	}
	id, err := store.EnsureAdmin(ctx, cfg.Email, cfg.Name, hash)
	if err != nil {
		return err
	}
	logger.Info("admin account ensured", slog.String("user_id", id))
	return nil
}

func (a *App) healthChecks() map[string]health.CheckFunc {
	checks := map[string]health.CheckFunc{
		"postgres": a.db.DB.PingContext,
	}
	if a.cache != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.cache.Db.Ping(ctx).Err()
		}
	}
	if a.conn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if a.conn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}
	}
	return checks
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
