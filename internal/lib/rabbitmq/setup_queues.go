package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для её привязки.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RemindersQueue очередь уведомлений о приёме лекарств; ключ маршрутизации
// совпадает с именем топика рассылки.
const RemindersQueue = "notifications.reminders"

// GetNotificationQueues возвращает очереди, которые должны существовать
// до запуска диспетчера и доставщика.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: RemindersQueue, RoutingKey: "reminders"},
	}
}
