// Package delivery доставляет уведомления из очереди подписчикам push-топика.
// Ошибка доставки возвращается потребителю очереди, который возвращает
// сообщение в очередь (at-least-once).
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/medication-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/medication-reminder/internal/models"
)

// PushClient публикует уведомление в топик push-шлюза.
type PushClient interface {
	Publish(ctx context.Context, topic, title, body string) error
}

// Service сервис доставки уведомлений.
type Service struct {
	push PushClient
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(push PushClient, log *slog.Logger) *Service {
	return &Service{
		push: push,
		log:  log,
	}
}

// HandleDueReminder обрабатывает одно сообщение очереди напоминаний.
func (s *Service) HandleDueReminder(body []byte) error {
	var message models.ReminderNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	if err := s.push.Publish(context.Background(), message.Topic, message.Title, message.Body); err != nil {
		s.log.Error("failed to deliver push notification",
			slog.String("topic", message.Topic), sl.Err(err))
		return err
	}

	s.log.Info("push notification delivered", slog.String("topic", message.Topic))
	return nil
}
