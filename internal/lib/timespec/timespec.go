// Package timespec разбирает поле времени напоминания. Значение в хранилище
// может быть абсолютным моментом в формате RFC3339 либо строкой "HH:MM",
// которая трактуется как время по UTC в текущую дату запуска.
package timespec

import (
	"strconv"
	"strings"
	"time"
)

// Kind тип распознанного значения времени.
type Kind int

const (
	// Invalid значение не удалось распознать, напоминание пропускается.
	Invalid Kind = iota
	// Absolute абсолютный момент времени, уже привязанный к дате.
	Absolute
	// WallClock время вида "HH:MM" без даты, дата подставляется из момента запуска.
	WallClock
)

// Spec результат разбора поля времени.
type Spec struct {
	Kind    Kind
	Instant time.Time // заполнено для Absolute
	Hour    int       // заполнено для WallClock
	Minute  int
}

// Parse разбирает сырое значение поля времени. Сначала пробует RFC3339,
// затем "HH:MM" с числовыми частями; всё остальное считается Invalid.
// Числа вне диапазона часов и минут допускаются: Resolve нормализует их
// переносом, как это делает конструктор даты.
func Parse(raw string) Spec {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Spec{Kind: Invalid}
	}
	if instant, err := time.Parse(time.RFC3339, raw); err == nil {
		return Spec{Kind: Absolute, Instant: instant}
	}
	hh, mm, found := strings.Cut(raw, ":")
	if !found {
		return Spec{Kind: Invalid}
	}
	hour, errHour := strconv.Atoi(strings.TrimSpace(hh))
	minute, errMinute := strconv.Atoi(strings.TrimSpace(mm))
	if errHour != nil || errMinute != nil {
		return Spec{Kind: Invalid}
	}
	return Spec{Kind: WallClock, Hour: hour, Minute: minute}
}

// Resolve возвращает абсолютный момент напоминания для данного запуска.
// Для WallClock подставляется год, месяц и день из now (UTC).
// Второе значение false означает, что момент вычислить нельзя.
func (s Spec) Resolve(now time.Time) (time.Time, bool) {
	switch s.Kind {
	case Absolute:
		return s.Instant, true
	case WallClock:
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}
