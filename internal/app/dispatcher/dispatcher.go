// Package dispatcher содержит сборку приложения рассылки напоминаний:
// подключение к хранилищу, RabbitMQ и Redis, запуск цикла рассылки
// и HTTP-сервера с метриками.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/medication-reminder/internal/cache"
	"github.com/magabrotheeeer/medication-reminder/internal/config"
	"github.com/magabrotheeeer/medication-reminder/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/medication-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/medication-reminder/internal/migrations"
	dispatcherservice "github.com/magabrotheeeer/medication-reminder/internal/services/dispatcher"
	scannerservice "github.com/magabrotheeeer/medication-reminder/internal/services/scanner"
	"github.com/magabrotheeeer/medication-reminder/internal/storage/repository"
)

// App представляет приложение рассылки напоминаний.
type App struct {
	dispatcherService *dispatcherservice.Service
	httpServer        *http.Server
	conn              *amqp.Connection
	ch                *amqp.Channel
	db                *repository.Storage
	cfg               *config.Config
	logger            *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения рассылки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	// Страж от дублей необязателен: без Redis рассылка работает,
	// просто пересекающиеся запуски могут отправить уведомление дважды.
	var guard dispatcherservice.DuplicateGuard
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("duplicate guard disabled, cache not initialized", sl.Err(err))
	} else {
		guard = cacheRedis
	}

	scannerService := scannerservice.New(db, logger)
	notifier := rabbitmq.NewNotifier(ch)
	dispatcherService := dispatcherservice.New(scannerService, db, notifier, guard,
		cfg.Topic, cfg.DueWindow, logger)

	httpServer := &http.Server{
		Addr:        cfg.AddressHTTP,
		Handler:     newRouter(logger),
		ReadTimeout: cfg.TimeoutHTTP,
		IdleTimeout: cfg.IdleTimeout,
	}

	return &App{
		dispatcherService: dispatcherService,
		httpServer:        httpServer,
		conn:              conn,
		ch:                ch,
		db:                db,
		cfg:               cfg,
		logger:            logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает цикл рассылки и HTTP-сервер с метриками.
func (a *App) Run(ctx context.Context) error {
	go func() {
		a.logger.Info("metrics server listening", slog.String("address", a.cfg.AddressHTTP))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	go a.dispatcherService.Run(ctx, a.cfg.TickInterval)

	<-ctx.Done()

	a.logger.Info("shutting down dispatcher service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to shutdown metrics server", slog.Any("err", err))
	}

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}

	return nil
}
