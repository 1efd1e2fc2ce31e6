package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/store"
	"github.com/Avflux/chronos/tests/testutil"
)

func TestUserRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTeam(ctx, model.Team{ID: "team-1", Name: "Platform"}))

	teamID := "team-1"
	user := model.User{
		ID:        "user-1",
		Username:  "alice",
		FullName:  "Alice Souza",
		Role:      model.RoleAdmin,
		TeamID:    &teamID,
		BaseValue: 1200,
	}
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)
	require.NotNil(t, got.TeamID)
	assert.Equal(t, "team-1", *got.TeamID)
	assert.Equal(t, 1200.0, got.BaseValue)
	assert.False(t, got.Locked)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserRejectsEmptyUsername(t *testing.T) {
	s := testutil.NewTestStore(t)
	err := s.CreateUser(context.Background(), model.User{Username: "  "})
	assert.Error(t, err)
}

func TestSetBaseValue(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice")

	require.NoError(t, s.SetBaseValue(ctx, user.ID, 1500))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.BaseValue)

	assert.Error(t, s.SetBaseValue(ctx, user.ID, -1))
	assert.ErrorIs(t, s.SetBaseValue(ctx, "missing", 10), store.ErrNotFound)
}

func TestGetUsersByTeam(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTeam(ctx, model.Team{ID: "team-1", Name: "Platform"}))
	teamID := "team-1"

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "u1", Username: "alice", TeamID: &teamID}))
	require.NoError(t, s.CreateUser(ctx, model.User{ID: "u2", Username: "bob"}))

	all, err := s.GetUsers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	team, err := s.GetUsers(ctx, &teamID)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "alice", team[0].Username)
}

func TestAppendLockEventFlipsUserFlag(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice")

	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID:  user.ID,
		Action:  model.LockActionLock,
		ActorID: "admin-1",
		Reason:  "policy violation",
	}))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)

	locked, err := s.GetLockedUserIDs(ctx)
	require.NoError(t, err)
	assert.True(t, locked[user.ID])

	require.NoError(t, s.AppendLockEvent(ctx, model.LockEvent{
		UserID: user.ID,
		Action: model.LockActionUnlock,
	}))

	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Locked)

	events, err := s.GetLockEvents(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.LockActionUnlock, events[0].Action)
	assert.Equal(t, model.LockActionLock, events[1].Action)
	assert.Equal(t, "policy violation", events[1].Reason)
}

func TestAppendLockEventUnknownUser(t *testing.T) {
	s := testutil.NewTestStore(t)
	err := s.AppendLockEvent(context.Background(), model.LockEvent{
		UserID: "missing",
		Action: model.LockActionLock,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The rejected event must leave no audit trail behind.
	events, err := s.GetLockEvents(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNotificationsRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice")

	require.NoError(t, s.CreateNotification(ctx, model.Notification{
		ID:      "n1",
		UserID:  user.ID,
		Kind:    model.NotificationLockChanged,
		Message: "Your account has been locked",
	}))

	unread, err := s.GetUnreadNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, model.NotificationLockChanged, unread[0].Kind)

	require.NoError(t, s.MarkNotificationRead(ctx, "n1"))

	unread, err = s.GetUnreadNotifications(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
