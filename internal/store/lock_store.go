package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Avflux/chronos/internal/model"
)

// AppendLockEvent records a lock/unlock event and flips the user's
// locked flag in the same transaction, so the audit trail and the
// current state can never disagree.
func (s *SQLiteStore) AppendLockEvent(ctx context.Context, ev model.LockEvent) error {
	if ev.UserID == "" {
		return fmt.Errorf("lock event user_id must not be empty")
	}
	if ev.Action != model.LockActionLock && ev.Action != model.LockActionUnlock {
		return fmt.Errorf("invalid lock action %q", ev.Action)
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Flip the flag first: an unknown user surfaces as ErrNotFound
	// here, before the event insert can trip the foreign key.
	locked := boolToInt(ev.Action == model.LockActionLock)
	result, err := tx.ExecContext(ctx,
		"UPDATE users SET locked = ?, updated_at = ? WHERE id = ?",
		locked, ev.CreatedAt, ev.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating lock flag for user %s: %w", ev.UserID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", ev.UserID, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lock_events (id, user_id, action, actor_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, string(ev.Action), ev.ActorID, ev.Reason, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting lock event: %w", err)
	}

	return tx.Commit()
}

// GetLockEvents retrieves the lock audit trail for a user, newest first.
func (s *SQLiteStore) GetLockEvents(ctx context.Context, userID string) ([]model.LockEvent, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM lock_events
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying lock events: %w", err)
	}
	defer rows.Close()

	var events []model.LockEvent
	for rows.Next() {
		var (
			ev     model.LockEvent
			action string
		)
		err := rows.Scan(&ev.ID, &ev.UserID, &action, &ev.ActorID, &ev.Reason, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning lock event row: %w", err)
		}
		ev.Action = model.LockAction(action)
		events = append(events, ev)
	}

	return events, rows.Err()
}

// GetLockedUserIDs returns the set of currently locked user IDs.
func (s *SQLiteStore) GetLockedUserIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT id FROM users WHERE locked = 1")
	if err != nil {
		return nil, fmt.Errorf("querying locked users: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning locked user id: %w", err)
		}
		locked[id] = true
	}

	return locked, rows.Err()
}
