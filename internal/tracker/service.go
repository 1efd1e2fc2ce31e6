// Package tracker orchestrates the activity lifecycle: start, pause,
// resume, and finish, plus the access-lock checks that gate them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/store"
)

var (
	// ErrUserLocked is returned when a locked user tries to track time.
	ErrUserLocked = errors.New("user account is locked")

	// ErrActivityInFlight is returned when a user starts a new activity
	// while another one is still active or paused.
	ErrActivityInFlight = errors.New("another activity is already in flight")

	// ErrNoActivityInFlight is returned when there is nothing to pause,
	// resume, or finish.
	ErrNoActivityInFlight = errors.New("no activity in flight")
)

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

// Service coordinates activity lifecycle changes against the store.
type Service struct {
	store store.Store
	now   Clock
	log   logrus.FieldLogger
}

// NewService creates a tracker Service using the wall clock.
func NewService(s store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, now: func() time.Time { return time.Now().UTC() }, log: log}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now Clock) *Service {
	s.now = now
	return s
}

// Start creates and starts a new activity for the user. A locked user
// cannot track time; a user with an in-flight activity must pause or
// finish it first.
func (s *Service) Start(ctx context.Context, userID, description, activityType string) (*model.Activity, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, fmt.Errorf("user %s: %w", user.Username, ErrUserLocked)
	}

	if _, err := s.store.GetCurrentActivity(ctx, userID); err == nil {
		return nil, ErrActivityInFlight
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	a := model.Activity{
		ID:           uuid.New().String(),
		UserID:       userID,
		Description:  description,
		ActivityType: activityType,
		State:        model.ActivityInactive,
	}
	if err := a.Start(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Pause stops the clock on the user's active activity.
func (s *Service) Pause(ctx context.Context, userID string) (*model.Activity, error) {
	return s.transition(ctx, userID, func(a *model.Activity, now time.Time) error {
		return a.Pause(now)
	})
}

// Resume restarts the clock on the user's paused activity.
func (s *Service) Resume(ctx context.Context, userID string) (*model.Activity, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, fmt.Errorf("user %s: %w", user.Username, ErrUserLocked)
	}
	return s.transition(ctx, userID, func(a *model.Activity, now time.Time) error {
		return a.Resume(now)
	})
}

// Finish completes the user's in-flight activity and freezes its total.
func (s *Service) Finish(ctx context.Context, userID string) (*model.Activity, error) {
	return s.transition(ctx, userID, func(a *model.Activity, now time.Time) error {
		return a.Finish(now)
	})
}

// ReportExceeded records overtime and its mandatory reason against an
// activity and notifies the user's administrators via the store.
func (s *Service) ReportExceeded(ctx context.Context, activityID string, exceeded time.Duration, reason string) error {
	a, err := s.store.GetActivityByID(ctx, activityID)
	if err != nil {
		return err
	}
	if err := a.MarkExceeded(exceeded, reason); err != nil {
		return err
	}
	if err := s.store.UpdateActivity(ctx, *a); err != nil {
		return err
	}

	notification := model.Notification{
		UserID:    a.UserID,
		Kind:      model.NotificationTimeExceeded,
		Message:   fmt.Sprintf("Activity %q exceeded its allotted time: %s", a.Description, reason),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		s.log.Warnf("recording exceeded-time notification: %v", err)
	}
	return nil
}

// Current returns the user's in-flight activity.
func (s *Service) Current(ctx context.Context, userID string) (*model.Activity, error) {
	a, err := s.store.GetCurrentActivity(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActivityInFlight
		}
		return nil, err
	}
	return a, nil
}

// transition applies fn to the user's in-flight activity and persists
// the result.
func (s *Service) transition(ctx context.Context, userID string, fn func(*model.Activity, time.Time) error) (*model.Activity, error) {
	a, err := s.store.GetCurrentActivity(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActivityInFlight
		}
		return nil, err
	}

	if err := fn(a, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateActivity(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}
