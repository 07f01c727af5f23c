package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPushClient struct {
	mock.Mock
}

func (m *MockPushClient) Publish(ctx context.Context, topic, title, body string) error {
	args := m.Called(ctx, topic, title, body)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandleDueReminder(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		setupMocks func(*MockPushClient)
		wantErr    bool
	}{
		{
			name: "success - message delivered to topic",
			body: []byte(`{"topic":"reminders","title":"Medication Reminder","body":"Take your Ibuprofen, dose: 500mg. 5 days remaining."}`),
			setupMocks: func(m *MockPushClient) {
				m.On("Publish", mock.Anything, "reminders", "Medication Reminder",
					"Take your Ibuprofen, dose: 500mg. 5 days remaining.").Return(nil).Once()
			},
		},
		{
			name:       "invalid JSON",
			body:       []byte(`invalid json`),
			setupMocks: func(_ *MockPushClient) {},
			wantErr:    true,
		},
		{
			name: "push gateway failure is returned for requeue",
			body: []byte(`{"topic":"reminders","title":"t","body":"b"}`),
			setupMocks: func(m *MockPushClient) {
				m.On("Publish", mock.Anything, "reminders", "t", "b").
					Return(errors.New("gateway timeout")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPush := new(MockPushClient)
			tt.setupMocks(mockPush)

			svc := New(mockPush, newNoopLogger())
			err := svc.HandleDueReminder(tt.body)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockPush.AssertExpectations(t)
		})
	}
}
