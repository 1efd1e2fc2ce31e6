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

// CreateUser inserts a new user. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) error {
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, full_name, role, team_id,
			base_value, locked, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.FullName, string(user.Role), user.TeamID,
		user.BaseValue, boolToInt(user.Locked), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", user.Username, err)
	}
	return nil
}

// UpdateUser updates an existing user by ID.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user model.User) error {
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("username must not be empty")
	}
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, full_name = ?, role = ?, team_id = ?,
			base_value = ?, locked = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.FullName, string(user.Role), user.TeamID,
		user.BaseValue, boolToInt(user.Locked), user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user by ID. Cascades to activities, lock events,
// and notifications.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetUserByID retrieves a single user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM users WHERE id = ?", id)
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a single user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM users WHERE username = ?", username)
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return &user, nil
}

// GetUsers retrieves all users, optionally restricted to a team,
// ordered by username.
func (s *SQLiteStore) GetUsers(ctx context.Context, teamID *string) ([]model.User, error) {
	query := "SELECT * FROM users"
	var args []interface{}
	if teamID != nil {
		query += " WHERE team_id = ?"
		args = append(args, *teamID)
	}
	query += " ORDER BY username"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetBaseValue updates a user's monetary base rate.
func (s *SQLiteStore) SetBaseValue(ctx context.Context, userID string, baseValue float64) error {
	if baseValue < 0 {
		return fmt.Errorf("base value must not be negative")
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET base_value = ?, updated_at = ? WHERE id = ?",
		baseValue, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("setting base value for user %s: %w", userID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// scanUser scans a user row from a sqlx.Rows result set.
func scanUser(rows *sqlx.Rows) (model.User, error) {
	var (
		user      model.User
		role      string
		teamID    *string
		lockedInt int
	)

	err := rows.Scan(
		&user.ID, &user.Username, &user.FullName, &role, &teamID,
		&user.BaseValue, &lockedInt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("scanning user row: %w", err)
	}

	user.Role = model.Role(role)
	user.TeamID = teamID
	user.Locked = lockedInt != 0

	return user, nil
}

// scanUserRow scans a single user row from a sqlx.Row.
func scanUserRow(row *sqlx.Row) (model.User, error) {
	var (
		user      model.User
		role      string
		teamID    *string
		lockedInt int
	)

	err := row.Scan(
		&user.ID, &user.Username, &user.FullName, &role, &teamID,
		&user.BaseValue, &lockedInt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	user.Role = model.Role(role)
	user.TeamID = teamID
	user.Locked = lockedInt != 0

	return user, nil
}
