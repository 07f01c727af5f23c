// Package dispatcher содержит ядро рассылки: оценку срабатывания напоминаний
// и отправку уведомлений. Для каждого напоминания проверяется полнота записи,
// поле времени приводится к абсолютному моменту, и при попадании в окно
// ±минута от момента запуска отправляется уведомление в общий топик, после
// чего атомарно уменьшается счётчик оставшихся дней. Ошибка обработки одного
// напоминания не прерывает обработку остальных.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medication-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/medication-reminder/internal/lib/timespec"
	"github.com/magabrotheeeer/medication-reminder/internal/metrics"
	"github.com/magabrotheeeer/medication-reminder/internal/services/scanner"
)

// Scanner перечисляет пары (пользователь, напоминание) для одного прохода.
type Scanner interface {
	Scan(ctx context.Context) ([]scanner.Pair, error)
}

// Notifier отправляет уведомление всем подписчикам топика.
type Notifier interface {
	SendToTopic(topic, title, body string) error
}

// ReminderStore выполняет атомарное уменьшение счётчика оставшихся дней.
type ReminderStore interface {
	DecrementRemainingDays(ctx context.Context, reminderID string) (int, error)
}

// DuplicateGuard защищает от повторной отправки в пределах одного окна.
// Реализация необязательна: при nil-страже и при его ошибках отправка
// выполняется, допустимы дубликаты (at-least-once).
type DuplicateGuard interface {
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Service сервис оценки и рассылки напоминаний.
type Service struct {
	scanner   Scanner
	store     ReminderStore
	notifier  Notifier
	guard     DuplicateGuard
	validate  *validator.Validate
	topic     string
	dueWindow time.Duration
	log       *slog.Logger
}

// New создает новый экземпляр Service. guard может быть nil.
func New(sc Scanner, store ReminderStore, notifier Notifier, guard DuplicateGuard,
	topic string, dueWindow time.Duration, log *slog.Logger) *Service {
	return &Service{
		scanner:   sc,
		store:     store,
		notifier:  notifier,
		guard:     guard,
		validate:  validator.New(),
		topic:     topic,
		dueWindow: dueWindow,
		log:       log,
	}
}

// Run запускает проход сразу и затем по тикеру, пока контекст не отменён.
func (s *Service) Run(ctx context.Context, tick time.Duration) {
	s.RunPass(ctx)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunPass(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunPass выполняет один проход рассылки. Момент now фиксируется один раз
// и используется для всех сравнений в этом проходе, чтобы окно срабатывания
// было согласованным. Результат не возвращается: исходы видны по логам и
// метрикам.
func (s *Service) RunPass(ctx context.Context) {
	start := time.Now()
	now := start.UTC()

	s.log.Info("starting dispatch pass")
	pairs, err := s.scanner.Scan(ctx)
	if err != nil {
		s.log.Error("failed to scan reminders", sl.Err(err))
		return
	}
	if len(pairs) == 0 {
		s.log.Info("no reminders to process")
		return
	}

	for _, pair := range pairs {
		s.processReminder(ctx, now, pair)
	}

	metrics.PassDuration.Observe(time.Since(start).Seconds())
	s.log.Info("dispatch pass completed", slog.Int("reminders", len(pairs)))
}

func (s *Service) processReminder(ctx context.Context, now time.Time, pair scanner.Pair) {
	metrics.RemindersScanned.Inc()
	r := pair.Reminder
	log := s.log.With(
		slog.String("reminder_id", r.ID),
		slog.String("user_uid", pair.UserUID),
	)

	if err := s.validate.Struct(r); err != nil {
		metrics.RemindersSkipped.WithLabelValues(metrics.ReasonIncomplete).Inc()
		log.Info("reminder has incomplete data, skipping")
		return
	}

	spec := timespec.Parse(*r.TimeSpec)
	reminderTime, ok := spec.Resolve(now)
	if !ok {
		metrics.RemindersSkipped.WithLabelValues(metrics.ReasonInvalidTime).Inc()
		log.Info("invalid time format, skipping", slog.String("time_spec", *r.TimeSpec))
		return
	}

	timeDifference := reminderTime.Sub(now)
	if timeDifference < -s.dueWindow || timeDifference > s.dueWindow {
		metrics.RemindersSkipped.WithLabelValues(metrics.ReasonNotDue).Inc()
		log.Debug("reminder is outside the due window",
			slog.Duration("time_difference", timeDifference))
		return
	}

	if s.guard != nil {
		key := fmt.Sprintf("dispatch:%s:%d", r.ID, reminderTime.Unix())
		acquired, err := s.guard.AcquireOnce(ctx, key, 2*s.dueWindow)
		if err != nil {
			log.Warn("duplicate guard unavailable, sending anyway", sl.Err(err))
		} else if !acquired {
			metrics.RemindersSkipped.WithLabelValues(metrics.ReasonDuplicate).Inc()
			log.Info("notification already sent in this window, skipping")
			return
		}
	}

	// В тексте уведомления остаётся значение счётчика до уменьшения.
	title := "Medication Reminder"
	body := fmt.Sprintf("Take your %s, dose: %s. %d days remaining.",
		*r.MedicineName, *r.Dose, *r.RemainingDays)

	if err := s.notifier.SendToTopic(s.topic, title, body); err != nil {
		metrics.SendFailures.Inc()
		log.Error("failed to send notification", sl.Err(err))
		return
	}
	metrics.NotificationsDispatched.Inc()
	log.Info("notification sent", slog.String("medicine_name", *r.MedicineName))

	if *r.RemainingDays > 1 {
		if _, err := s.store.DecrementRemainingDays(ctx, r.ID); err != nil {
			metrics.DecrementFailures.Inc()
			log.Error("failed to decrement remaining days", sl.Err(err))
			return
		}
		log.Info("remaining days updated", slog.Int("remaining_days", *r.RemainingDays-1))
	} else {
		log.Info("last day for medicine, counter left unchanged")
	}
}
