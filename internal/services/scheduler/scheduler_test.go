package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SweeperMock struct{ mock.Mock }

func (m *SweeperMock) ExpireSubscriptions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSchedulerService(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "daily at 2am", spec: "0 0 2 * * *"},
		{name: "descriptor", spec: "@daily"},
		{name: "explicit timezone", spec: "CRON_TZ=Europe/Berlin 0 30 1 * * *"},
		{name: "five fields", spec: "0 2 * * *", wantErr: true},
		{name: "garbage", spec: "every day", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchedulerService(new(SweeperMock), tt.spec, time.UTC, newNoopLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchedule_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	s, err := NewSchedulerService(new(SweeperMock), "0 0 2 * * *", loc, newNoopLogger())
	require.NoError(t, err)

	from := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	next := s.schedule.Next(from).In(loc)
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 2, next.Day())
}

func TestRunOnce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sw := new(SweeperMock)
		sw.On("ExpireSubscriptions", mock.Anything).Return(3, nil).Once()

		s, err := NewSchedulerService(sw, "@daily", time.UTC, newNoopLogger())
		require.NoError(t, err)
		assert.NoError(t, s.RunOnce(context.Background()))
		sw.AssertExpectations(t)
	})

	t.Run("error is returned", func(t *testing.T) {
		sweepErr := errors.New("db down")
		sw := new(SweeperMock)
		sw.On("ExpireSubscriptions", mock.Anything).Return(0, sweepErr).Once()

		s, err := NewSchedulerService(sw, "@daily", time.UTC, newNoopLogger())
		require.NoError(t, err)
		assert.ErrorIs(t, s.RunOnce(context.Background()), sweepErr)
		sw.AssertExpectations(t)
	})
}

func TestStart_FiresAndStops(t *testing.T) {
	fired := make(chan struct{}, 10)
	sw := new(SweeperMock)
	sw.On("ExpireSubscriptions", mock.Anything).
		Run(func(mock.Arguments) { fired <- struct{}{} }).
		Return(0, nil)

	s, err := NewSchedulerService(sw, "* * * * * *", time.UTC, newNoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep was not triggered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
