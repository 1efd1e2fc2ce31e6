package store

import (
	"context"
	"errors"
	"time"

	"github.com/Avflux/chronos/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ActivityFilter controls filtering, sorting, and pagination for
// activity queries.
type ActivityFilter struct {
	UserID   *string
	State    *model.ActivityState
	Type     *string
	Query    *string    // search description + activity_type
	Day      *time.Time // activities last updated on this calendar day
	SortBy   string     // "description", "state", "created_at", "updated_at"
	SortDesc bool
	Limit    int
	Offset   int
}

// DayRecord is one raw accounting row: the stored total for a single
// activity, shaped for the duration accumulator.
type DayRecord struct {
	Description  string        `db:"description"`
	ActivityType string        `db:"activity_type"`
	TotalTime    time.Duration `db:"-"`
	StartTime    *time.Time    `db:"start_time"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// Store defines the persistence interface for users, teams, activities,
// access locks, and notifications.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user model.User) error
	UpdateUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsers(ctx context.Context, teamID *string) ([]model.User, error)
	SetBaseValue(ctx context.Context, userID string, baseValue float64) error

	// === Teams ===

	CreateTeam(ctx context.Context, team model.Team) error
	UpdateTeam(ctx context.Context, team model.Team) error
	DeleteTeam(ctx context.Context, id string) error
	GetTeams(ctx context.Context) ([]model.Team, error)

	// === Activities ===

	CreateActivity(ctx context.Context, a model.Activity) error
	UpdateActivity(ctx context.Context, a model.Activity) error
	GetActivityByID(ctx context.Context, id string) (*model.Activity, error)
	GetActivities(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)

	// GetCurrentActivity returns the user's active or paused activity,
	// or ErrNotFound when the user has nothing in flight.
	GetCurrentActivity(ctx context.Context, userID string) (*model.Activity, error)

	// GetDayRecords returns the raw accounting rows for a user and
	// calendar day, feeding the duration accumulator.
	GetDayRecords(ctx context.Context, userID string, day time.Time) ([]DayRecord, error)

	// DeleteUserActivities is the administrative bulk purge of a
	// user's activity history. Returns the number of rows removed.
	DeleteUserActivities(ctx context.Context, userID string) (int64, error)

	// === Access locks ===

	// AppendLockEvent records a lock/unlock event and flips the user's
	// locked flag in the same transaction.
	AppendLockEvent(ctx context.Context, ev model.LockEvent) error
	GetLockEvents(ctx context.Context, userID string) ([]model.LockEvent, error)

	// GetLockedUserIDs returns the set of currently locked user IDs.
	GetLockedUserIDs(ctx context.Context) (map[string]bool, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
