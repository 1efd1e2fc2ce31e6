package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Avflux/chronos/internal/model"
)

// CreateTeam inserts a new team. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTeam(ctx context.Context, team model.Team) error {
	if strings.TrimSpace(team.Name) == "" {
		return fmt.Errorf("team name must not be empty")
	}
	if team.ID == "" {
		team.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		team.ID, team.Name, team.Description, team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating team %s: %w", team.Name, err)
	}
	return nil
}

// UpdateTeam updates an existing team by ID.
func (s *SQLiteStore) UpdateTeam(ctx context.Context, team model.Team) error {
	if strings.TrimSpace(team.Name) == "" {
		return fmt.Errorf("team name must not be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE teams SET name = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		team.Name, team.Description, time.Now().UTC(), team.ID,
	)
	if err != nil {
		return fmt.Errorf("updating team %s: %w", team.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("team %s: %w", team.ID, ErrNotFound)
	}
	return nil
}

// DeleteTeam removes a team by ID. Member users keep their accounts
// with team_id reset to NULL.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting team %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTeams retrieves all teams ordered by name.
func (s *SQLiteStore) GetTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM teams ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var team model.Team
		err := rows.Scan(
			&team.ID, &team.Name, &team.Description,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
