package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/mocks"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
	"github.com/weiawesome/wes-io-live/support-service/internal/testutil"
)

type recordingProducer struct {
	mu     sync.Mutex
	events []*domain.ChatEvent
}

func (r *recordingProducer) ProduceEvent(_ context.Context, e *domain.ChatEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingProducer) Close() error { return nil }

var owner = domain.UserSummary{ID: "user-1", Email: "u@example.com", Kind: domain.UserKindEndUser}

func TestNewSweeper_Validation(t *testing.T) {
	_, err := NewSweeper(nil, nil, nil, config.MaintenanceConfig{Schedule: "@every 1h"})
	assert.Error(t, err)

	_, err = NewSweeper(nil, nil, nil, config.MaintenanceConfig{Schedule: "not a schedule", IdleAfter: time.Hour})
	assert.Error(t, err)

	_, err = NewSweeper(nil, nil, nil, config.MaintenanceConfig{Schedule: "*/5 * * * *", IdleAfter: time.Hour})
	assert.NoError(t, err)
}

func TestSweep_DeactivatesIdleThreads(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormThreadRepository(testutil.NewDB(t))
	events := &recordingProducer{}

	thread, err := repo.CreateThread(ctx, owner)
	require.NoError(t, err)

	s, err := NewSweeper(repo, events, nil, config.MaintenanceConfig{Schedule: "@every 1h", IdleAfter: time.Hour})
	require.NoError(t, err)

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh thread is not idle")

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, domain.ThreadStatusInactive, got.Status)

	require.Len(t, events.events, 1)
	assert.Equal(t, domain.EventThreadIdled, events.events[0].Type)
	assert.Equal(t, thread.ID, events.events[0].ThreadID)

	n, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "already inactive")

	// A new message wakes the thread up.
	_, err = repo.CreateMessage(ctx, thread.ID, owner, "still there?")
	require.NoError(t, err)
	got, err = repo.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, domain.ThreadStatusActive, got.Status)
}

func TestSweep_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockThreadRepository(ctrl)
	boom := errors.New("db down")
	repo.EXPECT().DeactivateIdle(gomock.Any(), gomock.Any()).Return(nil, boom)

	s, err := NewSweeper(repo, nil, nil, config.MaintenanceConfig{Schedule: "@every 1h", IdleAfter: time.Hour})
	require.NoError(t, err)

	_, err = s.Sweep(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_SweepsOnScheduleUntilCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockThreadRepository(ctrl)

	swept := make(chan struct{}, 8)
	repo.EXPECT().DeactivateIdle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) ([]string, error) {
			swept <- struct{}{}
			return nil, nil
		}).MinTimes(1)

	s, err := NewSweeper(repo, nil, nil, config.MaintenanceConfig{Schedule: "@every 1s", IdleAfter: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-swept:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
