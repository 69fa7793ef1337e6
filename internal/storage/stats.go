package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored data.
type DataStats struct {
	TotalWorkouts     int64             `json:"total_workouts"`
	CompletedWorkouts int64             `json:"completed_workouts"`
	TotalSets         int64             `json:"total_sets"`
	PersonalRecords   int64             `json:"personal_records"`
	ActiveGoals       int64             `json:"active_goals"`
	CheckIns          int64             `json:"check_ins"`
	EarliestData      *time.Time        `json:"earliest_data"`
	LatestData        *time.Time        `json:"latest_data"`
	TopExercises      []ExerciseSetStat `json:"top_exercises"`
}

// ExerciseSetStat counts the working sets logged for one exercise.
type ExerciseSetStat struct {
	Name        string  `json:"name"`
	WorkingSets int64   `json:"working_sets"`
	VolumeKg    float64 `json:"volume"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(completed_at), MIN(started_at), MAX(started_at)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.CompletedWorkouts, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 JOIN workouts w ON w.id = we.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM personal_records WHERE user_id = $1),
			(SELECT COUNT(*) FROM goals WHERE user_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM daily_checkins WHERE user_id = $1)`, userID,
	).Scan(&stats.PersonalRecords, &stats.ActiveGoals, &stats.CheckIns)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, COUNT(*), COALESCE(SUM(s.weight * s.reps), 0)
		 FROM sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 JOIN workouts w ON w.id = we.workout_id
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE w.user_id = $1 AND s.set_type <> 'warmup'
		 GROUP BY e.name
		 ORDER BY COUNT(*) DESC
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by exercise: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseSetStat
		if err := rows.Scan(&s.Name, &s.WorkingSets, &s.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
