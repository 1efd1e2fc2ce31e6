package watch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/watch"
	"github.com/Avflux/chronos/tests/testutil"
)

func TestObserverPublishesLockChanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))

	o := watch.New(s, 10*time.Millisecond, testutil.SilentLogger())
	ch, cancel := o.Subscribe()
	defer cancel()

	o.Start(ctx)
	defer o.Stop()

	// Give the observer a tick to establish its baseline.
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID: "user-1",
		Action: model.LockActionLock,
	}))

	select {
	case change := <-ch:
		assert.Equal(t, "user-1", change.UserID)
		assert.True(t, change.Locked)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lock change")
	}

	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID: "user-1",
		Action: model.LockActionUnlock,
	}))

	select {
	case change := <-ch:
		assert.Equal(t, "user-1", change.UserID)
		assert.False(t, change.Locked)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for unlock change")
	}

	// Lock changes also leave a notification trail.
	unread, err := s.GetUnreadNotifications(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, unread, 2)
}

func TestObserverStopIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	o := watch.New(s, 10*time.Millisecond, testutil.SilentLogger())

	o.Start(context.Background())
	o.Stop()
	o.Stop() // second stop must not panic or block
}

func TestObserverRestartsAfterContextCancel(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))

	o := watch.New(s, 10*time.Millisecond, testutil.SilentLogger())
	ch, cancel := o.Subscribe()
	defer cancel()

	runCtx, cancelRun := context.WithCancel(ctx)
	o.Start(runCtx)
	cancelRun()
	time.Sleep(30 * time.Millisecond)

	// The observer must come back after its context was cancelled.
	o.Start(ctx)
	defer o.Stop()
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID: "user-1",
		Action: model.LockActionLock,
	}))

	select {
	case change := <-ch:
		assert.Equal(t, "user-1", change.UserID)
		assert.True(t, change.Locked)
	case <-time.After(2 * time.Second):
		t.Fatal("observer did not restart after context cancellation")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := testutil.NewTestStore(t)
	o := watch.New(s, time.Second, testutil.SilentLogger())

	ch, cancel := o.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}
