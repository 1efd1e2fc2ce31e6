package model

import (
	"fmt"
	"time"
)

// ActivityState is the lifecycle state of a tracked activity.
// Exactly one state holds at a time; stores reject rows that claim
// more than one.
type ActivityState string

const (
	// ActivityInactive is a created but never started activity.
	ActivityInactive ActivityState = "inactive"

	// ActivityActive is an activity currently accumulating time.
	ActivityActive ActivityState = "active"

	// ActivityPaused is a started activity whose clock is stopped.
	ActivityPaused ActivityState = "paused"

	// ActivityCompleted is a finished activity with a frozen total.
	ActivityCompleted ActivityState = "completed"
)

// ValidActivityStates is the canonical set of accepted state strings.
var ValidActivityStates = map[ActivityState]bool{
	ActivityInactive:  true,
	ActivityActive:    true,
	ActivityPaused:    true,
	ActivityCompleted: true,
}

// Activity is one unit of tracked work for a user.
//
// TotalTime accumulates across pause/resume cycles and is monotonically
// non-decreasing until the activity is completed, at which point it is
// frozen. ResumedAt marks the start of the current running stretch and
// is only set while the activity is active.
type Activity struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id" db:"user_id"`
	Description  string        `json:"description" db:"description"`
	ActivityType string        `json:"activity_type" db:"activity_type"`
	State        ActivityState `json:"state" db:"state"`
	StartTime    *time.Time    `json:"start_time,omitempty" db:"start_time"`
	EndTime      *time.Time    `json:"end_time,omitempty" db:"end_time"`
	TotalTime    time.Duration `json:"total_time" db:"total_time"`
	ResumedAt    *time.Time    `json:"resumed_at,omitempty" db:"resumed_at"`
	TimeExceeded time.Duration `json:"time_exceeded,omitempty" db:"time_exceeded"`
	Reason       string        `json:"reason,omitempty" db:"reason"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Start transitions an inactive activity to active. The zero value of
// Activity has no state set and counts as inactive.
func (a *Activity) Start(now time.Time) error {
	if a.State != ActivityInactive && a.State != "" {
		return fmt.Errorf("cannot start activity in state %q", a.State)
	}
	a.State = ActivityActive
	a.StartTime = &now
	a.ResumedAt = &now
	a.UpdatedAt = now
	return nil
}

// Pause stops the clock on an active activity, folding the elapsed
// stretch since the last resume into TotalTime.
func (a *Activity) Pause(now time.Time) error {
	if a.State != ActivityActive {
		return fmt.Errorf("cannot pause activity in state %q", a.State)
	}
	a.accumulate(now)
	a.State = ActivityPaused
	a.ResumedAt = nil
	a.UpdatedAt = now
	return nil
}

// Resume restarts the clock on a paused activity.
func (a *Activity) Resume(now time.Time) error {
	if a.State != ActivityPaused {
		return fmt.Errorf("cannot resume activity in state %q", a.State)
	}
	a.State = ActivityActive
	a.ResumedAt = &now
	a.UpdatedAt = now
	return nil
}

// Finish completes an active or paused activity and freezes TotalTime.
func (a *Activity) Finish(now time.Time) error {
	switch a.State {
	case ActivityActive:
		a.accumulate(now)
	case ActivityPaused:
		// Clock already stopped; nothing to fold in.
	default:
		return fmt.Errorf("cannot finish activity in state %q", a.State)
	}
	a.State = ActivityCompleted
	a.ResumedAt = nil
	a.EndTime = &now
	a.UpdatedAt = now
	return nil
}

// MarkExceeded records overtime against the activity. A non-empty
// reason is mandatory once any overtime exists.
func (a *Activity) MarkExceeded(exceeded time.Duration, reason string) error {
	if exceeded <= 0 {
		return fmt.Errorf("exceeded duration must be positive")
	}
	if reason == "" {
		return fmt.Errorf("a reason is required for exceeded time")
	}
	a.TimeExceeded = exceeded
	a.Reason = reason
	return nil
}

// accumulate folds the running stretch since ResumedAt into TotalTime.
func (a *Activity) accumulate(now time.Time) {
	if a.ResumedAt == nil {
		return
	}
	if elapsed := now.Sub(*a.ResumedAt); elapsed > 0 {
		a.TotalTime += elapsed
	}
}

// Elapsed returns the total tracked time as of now, including the
// currently running stretch for an active activity.
func (a *Activity) Elapsed(now time.Time) time.Duration {
	total := a.TotalTime
	if a.State == ActivityActive && a.ResumedAt != nil {
		if running := now.Sub(*a.ResumedAt); running > 0 {
			total += running
		}
	}
	return total
}
