// Package scanner перечисляет напоминания всех пользователей. Сканер только
// читает хранилище; любая ошибка чтения прерывает весь проход, так как она не
// восстанавливается на уровне отдельного напоминания.
package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/medication-reminder/internal/models"
)

// ReminderRepository описывает операции чтения хранилища, нужные сканеру.
type ReminderRepository interface {
	ListUsers(ctx context.Context) ([]string, error)
	ListReminders(ctx context.Context, userUID string) ([]models.Reminder, error)
}

// Pair пара (пользователь, напоминание), единица работы диспетчера.
type Pair struct {
	UserUID  string
	Reminder models.Reminder
}

// Service сервис перечисления напоминаний.
type Service struct {
	repo ReminderRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ReminderRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Scan возвращает все пары (пользователь, напоминание). Пользователь без
// напоминаний не даёт ни одной пары; пустой список пользователей — это не
// ошибка, а пустой результат.
func (s *Service) Scan(ctx context.Context) ([]Pair, error) {
	const op = "scanner.Scan"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(users) == 0 {
		s.log.Info("no registered users")
		return nil, nil
	}

	var pairs []Pair
	for _, userUID := range users {
		reminders, err := s.repo.ListReminders(ctx, userUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(reminders) == 0 {
			s.log.Info("no reminders for user", slog.String("user_uid", userUID))
			continue
		}
		s.log.Info("found reminders for user",
			slog.String("user_uid", userUID),
			slog.Int("count", len(reminders)))
		for _, reminder := range reminders {
			pairs = append(pairs, Pair{UserUID: userUID, Reminder: reminder})
		}
	}
	return pairs, nil
}
