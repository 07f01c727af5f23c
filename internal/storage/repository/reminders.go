package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/medication-reminder/internal/models"
)

// ListReminders возвращает все напоминания пользователя, включая неполные
// записи: отсутствующие поля приходят как NULL и отображаются в nil-указатели,
// решение о пригодности записи принимает диспетчер.
func (s *Storage) ListReminders(ctx context.Context, userUID string) ([]models.Reminder, error) {
	const op = "repository.ListReminders"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, medicine_name, dose, time_spec, remaining_days, created_at
			  FROM reminders
			  WHERE user_uid = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var reminders []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var medicineName, dose, timeSpec sql.NullString
		var remainingDays sql.NullInt64
		if err := rows.Scan(&r.ID, &r.UserUID, &medicineName, &dose,
			&timeSpec, &remainingDays, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if medicineName.Valid {
			r.MedicineName = &medicineName.String
		}
		if dose.Valid {
			r.Dose = &dose.String
		}
		if timeSpec.Valid {
			r.TimeSpec = &timeSpec.String
		}
		if remainingDays.Valid {
			days := int(remainingDays.Int64)
			r.RemainingDays = &days
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reminders, nil
}

// DecrementRemainingDays атомарно уменьшает счётчик оставшихся дней на единицу.
// Обновление выполняется одним UPDATE без предварительного чтения, поэтому
// параллельные запуски не теряют изменений. Счётчик никогда не опускается
// ниже единицы: условие remaining_days > 1 оставляет последний день без
// изменений. Возвращает количество затронутых строк.
func (s *Storage) DecrementRemainingDays(ctx context.Context, reminderID string) (int, error) {
	const op = "repository.DecrementRemainingDays"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reminders
			  SET remaining_days = remaining_days - 1
			  WHERE id = $1 AND remaining_days > 1`
	result, err := s.DB.ExecContext(ctx, query, reminderID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
