package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// ListMuscleRecovery returns the user's tracked muscle groups.
func (db *DB) ListMuscleRecovery(ctx context.Context, userID int) ([]models.MuscleRecovery, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, muscle_group, recovery_score, fatigue_level, last_worked_at,
		 sets_last_7_days, volume_last_7_days, estimated_full_recovery, updated_at
		 FROM muscle_recovery
		 WHERE user_id = $1
		 ORDER BY muscle_group`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying muscle recovery: %w", err)
	}
	defer rows.Close()

	var result []models.MuscleRecovery
	for rows.Next() {
		var r models.MuscleRecovery
		if err := rows.Scan(&r.UserID, &r.MuscleGroup, &r.RecoveryScore, &r.FatigueLevel, &r.LastWorkedAt,
			&r.SetsLast7Days, &r.VolumeLast7Days, &r.EstimatedFullRecovery, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning muscle recovery: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpsertMuscleRecovery writes every row in one batch keyed by (user, muscle group).
func (db *DB) UpsertMuscleRecovery(ctx context.Context, rows []models.MuscleRecovery) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO muscle_recovery (user_id, muscle_group, recovery_score, fatigue_level,
			 last_worked_at, sets_last_7_days, volume_last_7_days, estimated_full_recovery, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 ON CONFLICT (user_id, muscle_group) DO UPDATE SET
				recovery_score = EXCLUDED.recovery_score,
				fatigue_level = EXCLUDED.fatigue_level,
				last_worked_at = EXCLUDED.last_worked_at,
				sets_last_7_days = EXCLUDED.sets_last_7_days,
				volume_last_7_days = EXCLUDED.volume_last_7_days,
				estimated_full_recovery = EXCLUDED.estimated_full_recovery,
				updated_at = EXCLUDED.updated_at`,
			r.UserID, r.MuscleGroup, r.RecoveryScore, r.FatigueLevel, r.LastWorkedAt,
			r.SetsLast7Days, r.VolumeLast7Days, r.EstimatedFullRecovery, r.UpdatedAt)
	}
	if err := db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting muscle recovery: %w", err)
	}
	return nil
}
