// Package delivery содержит сборку приложения доставки: потребитель очереди
// напоминаний и клиент push-шлюза.
package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/medication-reminder/internal/config"
	"github.com/magabrotheeeer/medication-reminder/internal/lib/push"
	"github.com/magabrotheeeer/medication-reminder/internal/lib/rabbitmq"
	deliveryservice "github.com/magabrotheeeer/medication-reminder/internal/services/delivery"
)

// App представляет приложение доставки уведомлений.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	deliveryService *deliveryservice.Service
	logger          *slog.Logger
}

// New создает новый экземпляр приложения доставки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	pushClient := push.New(cfg.BaseURL, cfg.RatePerSecond, cfg.Burst, cfg.TimeoutPush)
	deliveryService := deliveryservice.New(pushClient, logger)

	return &App{
		conn:            conn,
		ch:              ch,
		deliveryService: deliveryService,
		logger:          logger,
	}, nil
}

// Run запускает потребителя очереди и ждёт отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.RemindersQueue, a.deliveryService.HandleDueReminder)
	if err != nil {
		a.logger.Error("failed to start reminders queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("delivery service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
