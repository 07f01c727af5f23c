// Package metrics содержит счётчики Prometheus для наблюдения за рассылкой:
// фоновая задача не возвращает результат вызывающей стороне, поэтому метрики
// и логи — единственный способ увидеть исход запуска.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersScanned количество просмотренных напоминаний.
	RemindersScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_scanned_total",
		Help: "Total number of reminders examined by dispatch passes.",
	})

	// NotificationsDispatched количество успешно отправленных уведомлений.
	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_dispatched_total",
		Help: "Total number of due reminder notifications sent.",
	})

	// RemindersSkipped количество пропущенных напоминаний с причиной.
	RemindersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_skipped_total",
		Help: "Total number of reminders skipped, by reason.",
	}, []string{"reason"})

	// SendFailures количество неудачных отправок уведомлений.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_send_failures_total",
		Help: "Total number of failed notification sends.",
	})

	// DecrementFailures количество неудачных обновлений счётчика дней.
	DecrementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_decrement_failures_total",
		Help: "Total number of failed remaining-days decrements.",
	})

	// PassDuration длительность одного прохода рассылки.
	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reminders_pass_duration_seconds",
		Help:    "Duration of a full scan-and-dispatch pass.",
		Buckets: prometheus.DefBuckets,
	})
)

// Причины пропуска напоминаний для RemindersSkipped.
const (
	ReasonIncomplete  = "incomplete"
	ReasonInvalidTime = "invalid_time"
	ReasonNotDue      = "not_due"
	ReasonDuplicate   = "duplicate"
)
