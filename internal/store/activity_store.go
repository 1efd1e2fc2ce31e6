package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Avflux/chronos/internal/model"
)

// CreateActivity inserts a new activity. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateActivity(ctx context.Context, a model.Activity) error {
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("activity description must not be empty")
	}
	if a.UserID == "" {
		return fmt.Errorf("activity user_id must not be empty")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.State == "" {
		a.State = model.ActivityInactive
	}
	if !model.ValidActivityStates[a.State] {
		return fmt.Errorf("invalid activity state %q", a.State)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, user_id, description, activity_type, state,
			start_time, end_time, total_time_sec, resumed_at,
			time_exceeded_sec, reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Description, a.ActivityType, string(a.State),
		a.StartTime, a.EndTime, int64(a.TotalTime.Seconds()), a.ResumedAt,
		int64(a.TimeExceeded.Seconds()), a.Reason, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating activity: %w", err)
	}
	return nil
}

// UpdateActivity persists lifecycle fields of an existing activity.
// Completed activities are frozen: their total can no longer change.
func (s *SQLiteStore) UpdateActivity(ctx context.Context, a model.Activity) error {
	if !model.ValidActivityStates[a.State] {
		return fmt.Errorf("invalid activity state %q", a.State)
	}
	a.UpdatedAt = time.Now().UTC()

	// The total_time_sec guard in the WHERE clause enforces the
	// monotonic non-decreasing total invariant at the storage layer.
	result, err := s.db.ExecContext(ctx, `
		UPDATE activities SET
			description = ?, activity_type = ?, state = ?,
			start_time = ?, end_time = ?, total_time_sec = ?,
			resumed_at = ?, time_exceeded_sec = ?, reason = ?,
			updated_at = ?
		WHERE id = ?
		  AND state != 'completed'
		  AND total_time_sec <= ?`,
		a.Description, a.ActivityType, string(a.State),
		a.StartTime, a.EndTime, int64(a.TotalTime.Seconds()),
		a.ResumedAt, int64(a.TimeExceeded.Seconds()), a.Reason,
		a.UpdatedAt,
		a.ID,
		int64(a.TotalTime.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("updating activity %s: %w", a.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("activity %s not updatable (missing, completed, or total would decrease)", a.ID)
	}
	return nil
}

// GetActivityByID retrieves a single activity by ID.
func (s *SQLiteStore) GetActivityByID(ctx context.Context, id string) (*model.Activity, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM activities WHERE id = ?", id)
	a, err := scanActivityRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting activity %s: %w", id, err)
	}
	return &a, nil
}

// GetActivities retrieves activities matching the filter.
func (s *SQLiteStore) GetActivities(ctx context.Context, filter ActivityFilter) ([]model.Activity, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.State != nil {
		conditions = append(conditions, "state = ?")
		args = append(args, string(*filter.State))
	}
	if filter.Type != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *filter.Type)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(description LIKE ? OR activity_type LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}
	if filter.Day != nil {
		from, to := dayBounds(*filter.Day)
		conditions = append(conditions, "updated_at >= ? AND updated_at < ?")
		args = append(args, from, to)
	}

	query := "SELECT * FROM activities"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "updated_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"description":   true,
			"activity_type": true,
			"state":         true,
			"created_at":    true,
			"updated_at":    true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

// GetCurrentActivity returns the user's active or paused activity.
// At most one activity per user is in flight at a time.
func (s *SQLiteStore) GetCurrentActivity(ctx context.Context, userID string) (*model.Activity, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT * FROM activities
		WHERE user_id = ? AND state IN ('active', 'paused')
		ORDER BY updated_at DESC
		LIMIT 1`,
		userID,
	)
	a, err := scanActivityRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("current activity for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting current activity for user %s: %w", userID, err)
	}
	return &a, nil
}

// GetDayRecords returns the raw accounting rows for a user and calendar
// day. Rows are returned ungrouped; the duration accumulator owns the
// grouping and summing policy.
func (s *SQLiteStore) GetDayRecords(ctx context.Context, userID string, day time.Time) ([]DayRecord, error) {
	from, to := dayBounds(day)
	rows, err := s.db.QueryxContext(ctx, `
		SELECT description, activity_type, total_time_sec, start_time, updated_at
		FROM activities
		WHERE user_id = ? AND updated_at >= ? AND updated_at < ?
		ORDER BY updated_at`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying day records: %w", err)
	}
	defer rows.Close()

	var records []DayRecord
	for rows.Next() {
		var (
			rec      DayRecord
			totalSec int64
		)
		err := rows.Scan(&rec.Description, &rec.ActivityType, &totalSec, &rec.StartTime, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning day record: %w", err)
		}
		rec.TotalTime = time.Duration(totalSec) * time.Second
		records = append(records, rec)
	}

	return records, rows.Err()
}

// dayBounds returns the half-open UTC range covering day's calendar
// date. Bound time values compare reliably; SQLite's date() cannot
// parse the driver's time.Time text encoding.
func dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// DeleteUserActivities removes every activity belonging to a user.
func (s *SQLiteStore) DeleteUserActivities(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("deleting activities for user %s: %w", userID, err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// scanActivity scans an activity row from a sqlx.Rows result set.
func scanActivity(rows *sqlx.Rows) (model.Activity, error) {
	var (
		a           model.Activity
		state       string
		startTime   *time.Time
		endTime     *time.Time
		resumedAt   *time.Time
		totalSec    int64
		exceededSec int64
	)

	err := rows.Scan(
		&a.ID, &a.UserID, &a.Description, &a.ActivityType, &state,
		&startTime, &endTime, &totalSec, &resumedAt,
		&exceededSec, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return model.Activity{}, fmt.Errorf("scanning activity row: %w", err)
	}

	a.State = model.ActivityState(state)
	a.StartTime = startTime
	a.EndTime = endTime
	a.ResumedAt = resumedAt
	a.TotalTime = time.Duration(totalSec) * time.Second
	a.TimeExceeded = time.Duration(exceededSec) * time.Second

	return a, nil
}

// scanActivityRow scans a single activity row from a sqlx.Row.
func scanActivityRow(row *sqlx.Row) (model.Activity, error) {
	var (
		a           model.Activity
		state       string
		startTime   *time.Time
		endTime     *time.Time
		resumedAt   *time.Time
		totalSec    int64
		exceededSec int64
	)

	err := row.Scan(
		&a.ID, &a.UserID, &a.Description, &a.ActivityType, &state,
		&startTime, &endTime, &totalSec, &resumedAt,
		&exceededSec, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return model.Activity{}, err
	}

	a.State = model.ActivityState(state)
	a.StartTime = startTime
	a.EndTime = endTime
	a.ResumedAt = resumedAt
	a.TotalTime = time.Duration(totalSec) * time.Second
	a.TimeExceeded = time.Duration(exceededSec) * time.Second

	return a, nil
}
