package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const summaryColumns = `id, user_id, period_type, period_start, period_end, total_workouts, completed_workouts,
	total_duration_minutes, total_sets, total_reps, total_volume_kg, volume_by_muscle, sets_by_muscle,
	unique_exercises, favorite_exercise_id, prs_achieved, avg_workout_duration, avg_rpe,
	avg_sets_per_workout, training_days, consistency_pct, updated_at`

// UpsertTrainingSummary writes a summary, overwriting any existing row for
// the same (user, period type, period start).
func (db *DB) UpsertTrainingSummary(ctx context.Context, s models.TrainingSummary) (models.TrainingSummary, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO training_summaries (id, user_id, period_type, period_start, period_end,
		 total_workouts, completed_workouts, total_duration_minutes, total_sets, total_reps,
		 total_volume_kg, volume_by_muscle, sets_by_muscle, unique_exercises, favorite_exercise_id,
		 prs_achieved, avg_workout_duration, avg_rpe, avg_sets_per_workout, training_days,
		 consistency_pct, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,NOW())
		 ON CONFLICT (user_id, period_type, period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			total_workouts = EXCLUDED.total_workouts,
			completed_workouts = EXCLUDED.completed_workouts,
			total_duration_minutes = EXCLUDED.total_duration_minutes,
			total_sets = EXCLUDED.total_sets,
			total_reps = EXCLUDED.total_reps,
			total_volume_kg = EXCLUDED.total_volume_kg,
			volume_by_muscle = EXCLUDED.volume_by_muscle,
			sets_by_muscle = EXCLUDED.sets_by_muscle,
			unique_exercises = EXCLUDED.unique_exercises,
			favorite_exercise_id = EXCLUDED.favorite_exercise_id,
			prs_achieved = EXCLUDED.prs_achieved,
			avg_workout_duration = EXCLUDED.avg_workout_duration,
			avg_rpe = EXCLUDED.avg_rpe,
			avg_sets_per_workout = EXCLUDED.avg_sets_per_workout,
			training_days = EXCLUDED.training_days,
			consistency_pct = EXCLUDED.consistency_pct,
			updated_at = NOW()
		 RETURNING `+summaryColumns,
		uuid.New(), s.UserID, s.PeriodType, s.PeriodStart, s.PeriodEnd,
		s.TotalWorkouts, s.CompletedWorkouts, s.TotalDurationMinutes, s.TotalSets, s.TotalReps,
		s.TotalVolumeKg, s.VolumeByMuscle, s.SetsByMuscle, s.UniqueExercises, s.FavoriteExerciseID,
		s.PRsAchieved, s.AvgWorkoutDuration, s.AvgRPE, s.AvgSetsPerWorkout, s.TrainingDays,
		s.ConsistencyPct)

	out, err := scanSummary(row)
	if err != nil {
		return models.TrainingSummary{}, fmt.Errorf("upserting training summary: %w", err)
	}
	// DATE columns come back at UTC midnight; keep the caller's zone.
	out.PeriodStart, out.PeriodEnd = s.PeriodStart, s.PeriodEnd
	return out, nil
}

// ListTrainingSummaries returns stored summaries of one period type, newest first.
func (db *DB) ListTrainingSummaries(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+summaryColumns+`
		 FROM training_summaries
		 WHERE user_id = $1 AND period_type = $2
		 ORDER BY period_start DESC
		 LIMIT $3`,
		userID, pt, limit)
	if err != nil {
		return nil, fmt.Errorf("querying training summaries: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func scanSummary(row interface{ Scan(dest ...any) error }) (models.TrainingSummary, error) {
	var s models.TrainingSummary
	err := row.Scan(&s.ID, &s.UserID, &s.PeriodType, &s.PeriodStart, &s.PeriodEnd,
		&s.TotalWorkouts, &s.CompletedWorkouts, &s.TotalDurationMinutes, &s.TotalSets, &s.TotalReps,
		&s.TotalVolumeKg, &s.VolumeByMuscle, &s.SetsByMuscle, &s.UniqueExercises, &s.FavoriteExerciseID,
		&s.PRsAchieved, &s.AvgWorkoutDuration, &s.AvgRPE, &s.AvgSetsPerWorkout, &s.TrainingDays,
		&s.ConsistencyPct, &s.UpdatedAt)
	return s, err
}
