// Package reconcileworker приложение, повторяющее сверку оплат, для которых
// не удалось записать подписку.
package reconcileworker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/satsclub/internal/config"
	"github.com/magabrotheeeer/satsclub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/satsclub/internal/lib/sl"
	"github.com/magabrotheeeer/satsclub/internal/paymentprovider"
	"github.com/magabrotheeeer/satsclub/internal/services/reconciler"
	"github.com/magabrotheeeer/satsclub/internal/storage"
)

// App потребитель очереди reconcile.retry.
type App struct {
	db      *storage.Storage
	conn    *amqp.Connection
	ch      *amqp.Channel
	pub     *rabbitmq.Publisher
	handler *reconciler.RetryHandler
	logger  *slog.Logger
}

// New создаёт App. Публикация и потребление идут через отдельные каналы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.reconcileworker.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.CheckDatabaseReady(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pubCh, err := rabbitmq.SetupChannel(conn, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pub := rabbitmq.NewPublisher(pubCh)

	provider := paymentprovider.NewClient(cfg.Bitvora)
	if !provider.Configured() {
		logger.Warn("bitvora credentials are not set, retries will be abandoned")
	}
	rec := reconciler.New(db, provider, pub, logger)
	poller := reconciler.NewPoller(rec, cfg.Polling, logger)

	return &App{
		db:      db,
		conn:    conn,
		ch:      ch,
		pub:     pub,
		handler: reconciler.NewRetryHandler(poller, pub, cfg.RabbitMQ.MaxRetries, logger),
		logger:  logger,
	}, nil
}

// Run потребляет задания до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueReconcileRetry, a.handler.Handle); err != nil {
		a.logger.Error("failed to start reconcile.retry consumer", sl.Err(err))
		a.close()
		return err
	}

	<-ctx.Done()
	a.logger.Info("reconcile worker shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.pub.Close(); err != nil {
		a.logger.Error("failed to close publisher channel", sl.Err(err))
	}
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
