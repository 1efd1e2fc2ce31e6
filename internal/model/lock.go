package model

import "time"

// LockAction is the kind of access-lock change applied to a user.
type LockAction string

const (
	LockActionLock   LockAction = "lock"
	LockActionUnlock LockAction = "unlock"
)

// LockEvent is one access-lock change in a user's audit trail.
// The newest event for a user decides their current lock state.
type LockEvent struct {
	// ID is the unique identifier for this event.
	ID string `json:"id" db:"id"`

	// UserID is the account the lock change applies to.
	UserID string `json:"user_id" db:"user_id"`

	// Action is the change applied (use LockAction* constants).
	Action LockAction `json:"action" db:"action"`

	// ActorID is the administrator who applied the change.
	ActorID string `json:"actor_id" db:"actor_id"`

	// Reason is the free-text justification entered by the actor.
	Reason string `json:"reason" db:"reason"`

	// CreatedAt is when the change was applied.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
