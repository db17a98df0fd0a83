package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spec-kit/supportbox/internal/events"
	"github.com/spec-kit/supportbox/internal/observability"
	"github.com/spec-kit/supportbox/internal/service"
	"github.com/spec-kit/supportbox/internal/triage"
)

func TestSweepOnceRemovesIdleSessions(t *testing.T) {
	store := triage.NewStore()
	store.Create()
	store.Create()
	time.Sleep(5 * time.Millisecond)

	w := NewSessionSweeper(store, time.Millisecond, time.Hour, observability.NewMetrics(), nil)
	assert.Equal(t, 2, w.SweepOnce())
	assert.Zero(t, store.Len())
}

func TestSweepOnceKeepsFreshSessions(t *testing.T) {
	store := triage.NewStore()
	store.Create()

	w := NewSessionSweeper(store, time.Hour, time.Hour, nil, nil)
	assert.Zero(t, w.SweepOnce())
	assert.Equal(t, 1, store.Len())
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := triage.NewStore()
	store.Create()
	w := NewSessionSweeper(store, time.Nanosecond, time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestStartNotificationWorkerToleratesNil(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(nil) })
	StartNotificationWorker(service.NewNotificationService(events.NewInMemoryDispatcher(nil), nil))
}
