// Package models содержит доменные структуры: пользователя, напоминание о приёме
// лекарства и полезную нагрузку уведомления, публикуемую в очередь.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID       string    // Уникальный идентификатор пользователя
	Username  string    // Имя пользователя (уникальное)
	Email     string    // Электронная почта
	CreatedAt time.Time // Дата регистрации
}

// Reminder представляет запись напоминания о приёме лекарства.
// Поля с указателями могут отсутствовать в хранилище (неполные записи
// создаются внешним редактором); напоминание обрабатывается только
// когда заполнены все четыре обязательных поля.
type Reminder struct {
	ID            string    // Идентификатор записи, используется в логах и при обновлении
	UserUID       string    // Владелец напоминания
	MedicineName  *string   `validate:"required"` // Название лекарства
	Dose          *string   `validate:"required"` // Дозировка в свободной форме, например "500mg"
	TimeSpec      *string   `validate:"required"` // Абсолютный момент RFC3339 или строка "HH:MM" (UTC)
	RemainingDays *int      `validate:"required"` // Счётчик оставшихся дней, неотрицательный
	CreatedAt     time.Time // Дата создания записи
}

// ReminderNotification полезная нагрузка уведомления для доставки подписчикам топика.
type ReminderNotification struct {
	Topic string `json:"topic"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
