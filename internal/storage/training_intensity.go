package storage

import (
	"context"
	"fmt"
	"time"
)

// RPEBand is one bucket of the effort distribution.
type RPEBand struct {
	Band     string  `json:"band"`
	RPERange string  `json:"rpe_range"`
	Sets     int     `json:"sets"`
	Pct      float64 `json:"pct"`
}

// ExerciseIntensity summarises the working sets of one exercise.
type ExerciseIntensity struct {
	ExerciseID string   `json:"exercise_id"`
	Name       string   `json:"name"`
	TotalSets  int      `json:"total_sets"`
	TotalReps  int      `json:"total_reps"`
	Volume     float64  `json:"volume"`
	MaxWeight  float64  `json:"max_weight"`
	AvgRPE     *float64 `json:"avg_rpe"`
}

// TrainingIntensityResult is the effort breakdown for a time range.
type TrainingIntensityResult struct {
	TotalSets       int                 `json:"total_sets"`
	TrackedSets     int                 `json:"tracked_sets"`
	FailureSets     int                 `json:"failure_sets"`
	FailureRatePct  float64             `json:"failure_rate_pct"`
	RPEDistribution []RPEBand           `json:"rpe_distribution"`
	Exercises       []ExerciseIntensity `json:"exercises"`
}

// GetTrainingIntensity returns the RPE distribution and per-exercise
// summary of the user's working sets in [start, end).
func (db *DB) GetTrainingIntensity(ctx context.Context, userID int, start, end time.Time) (*TrainingIntensityResult, error) {
	result := &TrainingIntensityResult{
		RPEDistribution: []RPEBand{},
		Exercises:       []ExerciseIntensity{},
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT band, rpe_range, sets, failures FROM (
			SELECT
				CASE
					WHEN s.rpe IS NULL THEN 'untracked'
					WHEN s.rpe >= 10 THEN 'failure'
					WHEN s.rpe >= 9 THEN 'near_failure'
					WHEN s.rpe >= 8 THEN 'moderate'
					ELSE 'easy'
				END AS band,
				CASE
					WHEN s.rpe IS NULL THEN 'untracked'
					WHEN s.rpe >= 10 THEN '10'
					WHEN s.rpe >= 9 THEN '9-9.5'
					WHEN s.rpe >= 8 THEN '8-8.5'
					ELSE '6-7.5'
				END AS rpe_range,
				COUNT(*)::int AS sets,
				COUNT(*) FILTER (WHERE s.set_type = 'failure' OR s.rpe >= 10)::int AS failures
			FROM sets s
			JOIN workout_exercises we ON we.id = s.workout_exercise_id
			JOIN workouts w ON w.id = we.workout_id
			WHERE w.user_id = $1 AND w.started_at >= $2 AND w.started_at < $3
				AND s.set_type <> 'warmup'
			GROUP BY band, rpe_range
		) sub
		ORDER BY CASE band
			WHEN 'failure' THEN 1
			WHEN 'near_failure' THEN 2
			WHEN 'moderate' THEN 3
			WHEN 'easy' THEN 4
			ELSE 5
		END`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying RPE distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b        RPEBand
			failures int
		)
		if err := rows.Scan(&b.Band, &b.RPERange, &b.Sets, &failures); err != nil {
			return nil, fmt.Errorf("scanning RPE band: %w", err)
		}
		result.TotalSets += b.Sets
		result.FailureSets += failures
		if b.Band != "untracked" {
			result.TrackedSets += b.Sets
		}
		result.RPEDistribution = append(result.RPEDistribution, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	finishIntensity(result)

	exRows, err := db.Pool.Query(ctx,
		`SELECT e.id::text, e.name,
		        COUNT(*)::int,
		        COALESCE(SUM(s.reps), 0)::int,
		        COALESCE(SUM(s.weight * s.reps), 0),
		        COALESCE(MAX(s.weight), 0),
		        AVG(s.rpe)
		 FROM sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 JOIN workouts w ON w.id = we.workout_id
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE w.user_id = $1 AND w.started_at >= $2 AND w.started_at < $3
		   AND s.set_type <> 'warmup'
		 GROUP BY e.id, e.name
		 ORDER BY SUM(s.weight * s.reps) DESC NULLS LAST`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying exercise intensity: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var e ExerciseIntensity
		if err := exRows.Scan(&e.ExerciseID, &e.Name, &e.TotalSets, &e.TotalReps, &e.Volume, &e.MaxWeight, &e.AvgRPE); err != nil {
			return nil, fmt.Errorf("scanning exercise intensity: %w", err)
		}
		result.Exercises = append(result.Exercises, e)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// finishIntensity fills in the band percentages and the failure rate.
func finishIntensity(r *TrainingIntensityResult) {
	for i := range r.RPEDistribution {
		if r.TotalSets > 0 {
			r.RPEDistribution[i].Pct = float64(r.RPEDistribution[i].Sets) / float64(r.TotalSets) * 100
		}
	}
	if r.TotalSets > 0 {
		r.FailureRatePct = float64(r.FailureSets) / float64(r.TotalSets) * 100
	}
}
