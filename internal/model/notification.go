package model

import "time"

// NotificationKind identifies what produced a notification.
type NotificationKind string

const (
	// NotificationLockChanged is emitted when a user's access lock flips.
	NotificationLockChanged NotificationKind = "lock_changed"

	// NotificationTimeExceeded is emitted when an activity runs past
	// its allotted time.
	NotificationTimeExceeded NotificationKind = "time_exceeded"
)

// Notification represents an alert surfaced to a user about a lock
// change or an exceeded activity.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// UserID is the account the notification is addressed to.
	UserID string `json:"user_id"`

	// Kind identifies what produced the notification.
	Kind NotificationKind `json:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
