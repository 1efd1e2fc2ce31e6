package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/tracker"
	"github.com/Avflux/chronos/tests/testutil"
)

// fakeClock returns a controllable tracker.Clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newService(t *testing.T) (*tracker.Service, *fakeClock, string) {
	t.Helper()
	s := testutil.NewTestStore(t)

	user := model.User{ID: "user-1", Username: "alice"}
	require.NoError(t, s.CreateUser(context.Background(), user))

	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := tracker.NewService(s, testutil.SilentLogger()).WithClock(clock.Now)
	return svc, clock, user.ID
}

func TestStartPauseResumeFinish(t *testing.T) {
	svc, clock, userID := newService(t)
	ctx := context.Background()

	a, err := svc.Start(ctx, userID, "review", "code")
	require.NoError(t, err)
	assert.Equal(t, model.ActivityActive, a.State)

	clock.Advance(time.Hour)
	a, err = svc.Pause(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityPaused, a.State)
	assert.Equal(t, time.Hour, a.TotalTime)

	clock.Advance(30 * time.Minute) // paused time does not count
	a, err = svc.Resume(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityActive, a.State)
	assert.Equal(t, time.Hour, a.TotalTime)

	clock.Advance(30 * time.Minute)
	a, err = svc.Finish(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityCompleted, a.State)
	assert.Equal(t, 90*time.Minute, a.TotalTime)

	_, err = svc.Current(ctx, userID)
	assert.ErrorIs(t, err, tracker.ErrNoActivityInFlight)
}

func TestStartRejectsSecondInFlight(t *testing.T) {
	svc, _, userID := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, userID, "review", "code")
	require.NoError(t, err)

	_, err = svc.Start(ctx, userID, "deploy", "ops")
	assert.ErrorIs(t, err, tracker.ErrActivityInFlight)
}

func TestPauseWithoutActivity(t *testing.T) {
	svc, _, userID := newService(t)
	_, err := svc.Pause(context.Background(), userID)
	assert.ErrorIs(t, err, tracker.ErrNoActivityInFlight)
}

func TestInvalidTransitions(t *testing.T) {
	svc, _, userID := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, userID, "review", "code")
	require.NoError(t, err)

	// Resuming an active activity is invalid.
	_, err = svc.Resume(ctx, userID)
	assert.Error(t, err)

	_, err = svc.Pause(ctx, userID)
	require.NoError(t, err)

	// Pausing a paused activity is invalid.
	_, err = svc.Pause(ctx, userID)
	assert.Error(t, err)

	// Finishing from paused is allowed.
	_, err = svc.Finish(ctx, userID)
	require.NoError(t, err)
}

func TestLockedUserCannotTrack(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID: "user-1",
		Action: model.LockActionLock,
	}))

	svc := tracker.NewService(s, testutil.SilentLogger())
	_, err := svc.Start(ctx, "user-1", "review", "code")
	assert.ErrorIs(t, err, tracker.ErrUserLocked)
}

func TestReportExceededRequiresReason(t *testing.T) {
	svc, clock, userID := newService(t)
	ctx := context.Background()

	a, err := svc.Start(ctx, userID, "review", "code")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.Pause(ctx, userID)
	require.NoError(t, err)

	err = svc.ReportExceeded(ctx, a.ID, 20*time.Minute, "")
	assert.Error(t, err)

	require.NoError(t, svc.ReportExceeded(ctx, a.ID, 20*time.Minute, "scope grew"))
}
