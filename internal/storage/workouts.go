package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertWorkout stores a workout with its exercises and sets. Exercises must
// already exist. Returns false without writing children if a workout with
// the same ID is already stored.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (bool, error) {
	inserted := false
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO workouts (id, user_id, name, started_at, completed_at, rating, mood, notes)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT DO NOTHING`,
			w.ID, w.UserID, w.Name, w.StartedAt, w.CompletedAt, w.Rating, w.Mood, w.Notes)
		if err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true

		exRows := make([][]any, 0, len(w.Exercises))
		var setRows [][]any
		for i, we := range w.Exercises {
			exRows = append(exRows, []any{we.ID, w.ID, we.Exercise.ID, i, we.SupersetGroup})
			for j, s := range we.Sets {
				setRows = append(setRows, []any{
					s.ID, we.ID, j, s.Reps, s.Weight, s.WeightUnit, s.DurationSec,
					s.Distance, s.DistanceUnit, string(s.Type), s.RPE, s.Completed,
				})
			}
		}

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"workout_exercises"},
			[]string{"id", "workout_id", "exercise_id", "position", "superset_group"},
			pgx.CopyFromRows(exRows)); err != nil {
			return fmt.Errorf("inserting workout exercises: %w", err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sets"},
			[]string{"id", "workout_exercise_id", "position", "reps", "weight", "weight_unit",
				"duration_sec", "distance", "distance_unit", "set_type", "rpe", "completed"},
			pgx.CopyFromRows(setRows)); err != nil {
			return fmt.Errorf("inserting sets: %w", err)
		}
		return nil
	})
	return inserted, err
}

const workoutSelect = `
	SELECT w.id, w.user_id, w.name, w.started_at, w.completed_at, w.rating, w.mood, w.notes,
	       we.id, we.position, we.superset_group,
	       e.id, e.name, e.category, e.muscle_groups, e.equipment, e.exercise_type,
	       s.id, s.reps, s.weight, s.weight_unit, s.duration_sec, s.distance, s.distance_unit,
	       s.set_type, s.rpe, s.completed
	FROM workouts w
	LEFT JOIN workout_exercises we ON we.workout_id = w.id
	LEFT JOIN exercises e ON e.id = we.exercise_id
	LEFT JOIN sets s ON s.workout_exercise_id = we.id`

// ListWorkouts returns the user's workouts started in [start, end) with
// exercises and sets joined, oldest first.
func (db *DB) ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, workoutSelect+`
		WHERE w.user_id = $1 AND w.started_at >= $2 AND w.started_at < $3
		ORDER BY w.started_at, w.id, we.position, s.position`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	flat, err := scanWorkoutRows(rows)
	if err != nil {
		return nil, err
	}
	return assembleWorkouts(flat), nil
}

// GetWorkout returns one of the user's workouts with exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	rows, err := db.Pool.Query(ctx, workoutSelect+`
		WHERE w.user_id = $1 AND w.id = $2
		ORDER BY we.position, s.position`,
		userID, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	defer rows.Close()

	flat, err := scanWorkoutRows(rows)
	if err != nil {
		return nil, err
	}
	ws := assembleWorkouts(flat)
	if len(ws) == 0 {
		return nil, fmt.Errorf("workout %s: %w", workoutID, models.ErrNotFound)
	}
	return &ws[0], nil
}

// ListActiveDates returns the start times of all completed workouts.
func (db *DB) ListActiveDates(ctx context.Context, userID int) ([]time.Time, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT started_at FROM workouts
		 WHERE user_id = $1 AND completed_at IS NOT NULL
		 ORDER BY started_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying active dates: %w", err)
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[time.Time])
	if err != nil {
		return nil, fmt.Errorf("scanning active dates: %w", err)
	}
	return dates, nil
}

// CountCompletedWorkouts counts completed workouts started in [start, end).
func (db *DB) CountCompletedWorkouts(ctx context.Context, userID int, start, end time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts
		 WHERE user_id = $1 AND completed_at IS NOT NULL
		   AND started_at >= $2 AND started_at < $3`,
		userID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return n, nil
}

// workoutRow is one row of the workout/exercise/set join. Exercise and set
// columns are nil for workouts without exercises or exercises without sets.
type workoutRow struct {
	workout models.Workout

	weID          *uuid.UUID
	wePosition    *int
	supersetGroup *int

	exID        *uuid.UUID
	exName      *string
	exCategory  *string
	exMuscles   []string
	exEquipment *string
	exType      *string

	setID        *uuid.UUID
	reps         *int
	weight       *float64
	weightUnit   *string
	durationSec  *int
	distance     *float64
	distanceUnit *string
	setType      *string
	rpe          *float64
	completed    *bool
}

func scanWorkoutRows(rows pgx.Rows) ([]workoutRow, error) {
	var result []workoutRow
	for rows.Next() {
		var r workoutRow
		w := &r.workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.StartedAt, &w.CompletedAt, &w.Rating, &w.Mood, &w.Notes,
			&r.weID, &r.wePosition, &r.supersetGroup,
			&r.exID, &r.exName, &r.exCategory, &r.exMuscles, &r.exEquipment, &r.exType,
			&r.setID, &r.reps, &r.weight, &r.weightUnit, &r.durationSec, &r.distance, &r.distanceUnit,
			&r.setType, &r.rpe, &r.completed); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// assembleWorkouts folds ordered join rows back into nested workouts,
// keeping the order in which workouts, exercises and sets first appear.
func assembleWorkouts(rows []workoutRow) []models.Workout {
	var out []models.Workout
	workoutIdx := map[uuid.UUID]int{}
	exerciseIdx := map[uuid.UUID]int{}

	for _, r := range rows {
		wi, ok := workoutIdx[r.workout.ID]
		if !ok {
			w := r.workout
			w.Exercises = []models.WorkoutExercise{}
			out = append(out, w)
			wi = len(out) - 1
			workoutIdx[w.ID] = wi
		}
		if r.weID == nil {
			continue
		}
		w := &out[wi]
		ei, ok := exerciseIdx[*r.weID]
		if !ok {
			we := models.WorkoutExercise{
				ID:            *r.weID,
				SupersetGroup: r.supersetGroup,
				Sets:          []models.Set{},
			}
			if r.wePosition != nil {
				we.Order = *r.wePosition
			}
			if r.exID != nil {
				we.Exercise = models.Exercise{
					ID:           *r.exID,
					Name:         deref(r.exName),
					Category:     deref(r.exCategory),
					MuscleGroups: r.exMuscles,
					Equipment:    deref(r.exEquipment),
					Type:         models.ExerciseType(deref(r.exType)),
				}
			}
			w.Exercises = append(w.Exercises, we)
			ei = len(w.Exercises) - 1
			exerciseIdx[*r.weID] = ei
		}
		if r.setID == nil {
			continue
		}
		s := models.Set{
			ID:           *r.setID,
			Reps:         r.reps,
			Weight:       r.weight,
			WeightUnit:   deref(r.weightUnit),
			DurationSec:  r.durationSec,
			Distance:     r.distance,
			DistanceUnit: deref(r.distanceUnit),
			Type:         models.SetType(deref(r.setType)),
			RPE:          r.rpe,
			Completed:    r.completed != nil && *r.completed,
		}
		w.Exercises[ei].Sets = append(w.Exercises[ei].Sets, s)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
