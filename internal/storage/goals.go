package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const goalColumns = `id, user_id, title, goal_type, direction, status, deadline, progress_pct,
	update_count, last_progress_update, completed_at, abandoned_at, abandon_reason, payload,
	created_at, updated_at`

func scanGoal(row pgx.Row) (models.Goal, error) {
	var (
		g       models.Goal
		payload []byte
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Type, &g.Direction, &g.Status, &g.Deadline, &g.ProgressPct,
		&g.UpdateCount, &g.LastProgressUpdate, &g.CompletedAt, &g.AbandonedAt, &g.AbandonReason, &payload,
		&g.CreatedAt, &g.UpdatedAt); err != nil {
		return models.Goal{}, err
	}
	p, err := models.DecodeGoalPayload(g.Type, payload)
	if err != nil {
		return models.Goal{}, err
	}
	g.Payload = p
	return g, nil
}

// CreateGoal inserts a goal.
func (db *DB) CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	payload, err := json.Marshal(g.Payload)
	if err != nil {
		return models.Goal{}, fmt.Errorf("encoding goal payload: %w", err)
	}
	out, err := scanGoal(db.Pool.QueryRow(ctx,
		`INSERT INTO goals (id, user_id, title, goal_type, direction, status, deadline, progress_pct,
		 update_count, payload, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+goalColumns,
		g.ID, g.UserID, g.Title, g.Type, g.Direction, g.Status, g.Deadline, g.ProgressPct,
		g.UpdateCount, payload, g.CreatedAt, g.UpdatedAt))
	if err != nil {
		return models.Goal{}, fmt.Errorf("inserting goal: %w", err)
	}
	return out, nil
}

// GetGoal returns one of the user's goals.
func (db *DB) GetGoal(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	g, err := scanGoal(db.Pool.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`,
		goalID, userID))
	if err != nil {
		return nil, fmt.Errorf("querying goal %s: %w", goalID, notFound(err))
	}
	return &g, nil
}

// ListGoals returns the user's goals, optionally with one status, oldest first.
func (db *DB) ListGoals(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at`,
		userID, status)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var result []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// UpdateGoalStatus saves the lifecycle fields of a goal.
func (db *DB) UpdateGoalStatus(ctx context.Context, g models.Goal) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE goals SET status = $3, completed_at = $4, abandoned_at = $5, abandon_reason = $6,
		 updated_at = $7
		 WHERE id = $1 AND user_id = $2`,
		g.ID, g.UserID, g.Status, g.CompletedAt, g.AbandonedAt, g.AbandonReason, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating goal %s: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating goal %s: %w", g.ID, models.ErrNotFound)
	}
	return nil
}

// RecordGoalProgress appends a history entry and saves the goal's payload,
// cached progress and status in one transaction.
func (db *DB) RecordGoalProgress(ctx context.Context, g models.Goal, entry models.GoalProgress) (models.GoalProgress, error) {
	payload, err := json.Marshal(g.Payload)
	if err != nil {
		return models.GoalProgress{}, fmt.Errorf("encoding goal payload: %w", err)
	}
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE goals SET payload = $3, progress_pct = $4, update_count = $5,
			 last_progress_update = $6, status = $7, completed_at = $8, updated_at = $9
			 WHERE id = $1 AND user_id = $2`,
			g.ID, g.UserID, payload, g.ProgressPct, g.UpdateCount,
			g.LastProgressUpdate, g.Status, g.CompletedAt, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("updating goal %s: %w", g.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("updating goal %s: %w", g.ID, models.ErrNotFound)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO goal_progress (id, goal_id, value, note, recorded_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			entry.ID, entry.GoalID, entry.Value, entry.Note, entry.RecordedAt); err != nil {
			return fmt.Errorf("inserting goal progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.GoalProgress{}, err
	}
	return entry, nil
}

// ListGoalProgress returns a goal's history, oldest first.
func (db *DB) ListGoalProgress(ctx context.Context, goalID uuid.UUID) ([]models.GoalProgress, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, goal_id, value, note, recorded_at
		 FROM goal_progress WHERE goal_id = $1
		 ORDER BY recorded_at`, goalID)
	if err != nil {
		return nil, fmt.Errorf("querying goal progress: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.GoalProgress])
	if err != nil {
		return nil, fmt.Errorf("scanning goal progress: %w", err)
	}
	return entries, nil
}
