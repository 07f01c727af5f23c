package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/medication-reminder/internal/migrations"
)

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет
// миграции проекта. Через TEST_POSTGRES_URL можно подключить внешнюю базу
// (например в CI) вместо контейнера.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	if testURL := os.Getenv("TEST_POSTGRES_URL"); testURL != "" {
		t.Logf("Using external PostgreSQL service: %s", testURL)
		storage, err := New(testURL)
		require.NoError(t, err)
		resetTables(t, storage.DB)
		return storage, func() { _ = storage.Close() }
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	require.NoError(t, migrations.Run(storage.DB, getMigrationsPath(t)))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../../..")
	require.NoError(t, err)
	return filepath.Join(projectRoot, "migrations")
}

func resetTables(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`TRUNCATE reminders, users CASCADE`)
	require.NoError(t, err)
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string) string {
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, username, email)
		VALUES ($1, $2, $3)`,
		uid, username, email)
	require.NoError(t, err)
	return uid
}

// CreateReminder создает тестовое напоминание. Nil-поля остаются NULL,
// что моделирует неполные записи внешнего редактора.
func (f *TestDataFactory) CreateReminder(t *testing.T, userUID string,
	medicineName, dose, timeSpec *string, remainingDays *int) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO reminders
		(id, user_uid, medicine_name, dose, time_spec, remaining_days)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userUID, medicineName, dose, timeSpec, remainingDays)
	require.NoError(t, err)
	return id
}

// RemainingDays читает текущее значение счётчика напоминания.
func (f *TestDataFactory) RemainingDays(t *testing.T, reminderID string) int {
	var days int
	err := f.storage.DB.QueryRow(`SELECT remaining_days FROM reminders WHERE id = $1`, reminderID).Scan(&days)
	require.NoError(t, err)
	return days
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
