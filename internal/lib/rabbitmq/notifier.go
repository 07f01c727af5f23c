package rabbitmq

import (
	"github.com/magabrotheeeer/medication-reminder/internal/models"
)

// Notifier отправляет уведомления в общий топик через обменник RabbitMQ.
// Успешная публикация считается успешной отправкой: именно она разрешает
// диспетчеру уменьшить счётчик оставшихся дней.
type Notifier struct {
	ch Channel
}

// NewNotifier создает новый экземпляр Notifier.
func NewNotifier(ch Channel) *Notifier {
	return &Notifier{ch: ch}
}

// SendToTopic публикует уведомление с заголовком и текстом в указанный топик.
func (n *Notifier) SendToTopic(topic, title, body string) error {
	return PublishMessage(n.ch, ExchangeName, topic, models.ReminderNotification{
		Topic: topic,
		Title: title,
		Body:  body,
	})
}
