package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// UpsertExercise inserts an exercise or returns the existing one with the
// same name. Muscle groups of an existing exercise are kept when the new
// definition has none.
func (db *DB) UpsertExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Type == "" {
		e.Type = models.ExerciseStrength
	}
	if e.MuscleGroups == nil {
		e.MuscleGroups = []string{}
	}
	var out models.Exercise
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (id, name, category, muscle_groups, equipment, exercise_type)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (name) DO UPDATE SET
			muscle_groups = CASE WHEN cardinality(EXCLUDED.muscle_groups) > 0
				THEN EXCLUDED.muscle_groups ELSE exercises.muscle_groups END,
			equipment = COALESCE(NULLIF(EXCLUDED.equipment, ''), exercises.equipment),
			category = COALESCE(NULLIF(EXCLUDED.category, ''), exercises.category)
		 RETURNING id, name, category, muscle_groups, equipment, exercise_type`,
		e.ID, e.Name, e.Category, e.MuscleGroups, e.Equipment, e.Type,
	).Scan(&out.ID, &out.Name, &out.Category, &out.MuscleGroups, &out.Equipment, &out.Type)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("upserting exercise %q: %w", e.Name, err)
	}
	return out, nil
}

// GetExercise returns an exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, category, muscle_groups, equipment, exercise_type
		 FROM exercises WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Category, &e.MuscleGroups, &e.Equipment, &e.Type)
	if err != nil {
		return nil, fmt.Errorf("querying exercise %s: %w", id, notFound(err))
	}
	return &e, nil
}

// ListExercises returns the exercise catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category, muscle_groups, equipment, exercise_type
		 FROM exercises ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.MuscleGroups, &e.Equipment, &e.Type); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
