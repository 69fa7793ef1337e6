package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `pr.id, pr.user_id, pr.exercise_id, e.name, pr.record_type, pr.value, pr.unit,
	pr.achieved_at, pr.set_id, pr.workout_id`

func scanRecord(row pgx.Row) (models.PersonalRecord, error) {
	var pr models.PersonalRecord
	err := row.Scan(&pr.ID, &pr.UserID, &pr.ExerciseID, &pr.ExerciseName, &pr.Type, &pr.Value, &pr.Unit,
		&pr.AchievedAt, &pr.SetID, &pr.WorkoutID)
	return pr, err
}

// GetPersonalRecord returns the current best of one type, or nil if none.
func (db *DB) GetPersonalRecord(ctx context.Context, userID int, exerciseID uuid.UUID, t models.RecordType) (*models.PersonalRecord, error) {
	pr, err := scanRecord(db.Pool.QueryRow(ctx,
		`SELECT `+recordColumns+`
		 FROM personal_records pr JOIN exercises e ON e.id = pr.exercise_id
		 WHERE pr.user_id = $1 AND pr.exercise_id = $2 AND pr.record_type = $3`,
		userID, exerciseID, t))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying personal record: %w", err)
	}
	return &pr, nil
}

// UpsertPersonalRecord stores a record, replacing the previous best for the
// same (user, exercise, type).
func (db *DB) UpsertPersonalRecord(ctx context.Context, pr models.PersonalRecord) (models.PersonalRecord, error) {
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO personal_records (id, user_id, exercise_id, record_type, value, unit, achieved_at, set_id, workout_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, exercise_id, record_type) DO UPDATE SET
			value = EXCLUDED.value,
			unit = EXCLUDED.unit,
			achieved_at = EXCLUDED.achieved_at,
			set_id = EXCLUDED.set_id,
			workout_id = EXCLUDED.workout_id
		 RETURNING id`,
		pr.ID, pr.UserID, pr.ExerciseID, pr.Type, pr.Value, pr.Unit, pr.AchievedAt, pr.SetID, pr.WorkoutID,
	).Scan(&pr.ID)
	if err != nil {
		return models.PersonalRecord{}, fmt.Errorf("upserting personal record: %w", err)
	}
	return pr, nil
}

// ListPersonalRecords returns the user's records, optionally for one exercise.
func (db *DB) ListPersonalRecords(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM personal_records pr JOIN exercises e ON e.id = pr.exercise_id
		 WHERE pr.user_id = $1 AND ($2::uuid IS NULL OR pr.exercise_id = $2)
		 ORDER BY e.name, pr.record_type`,
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecord
	for rows.Next() {
		pr, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}

// CountPersonalRecords counts records achieved in [start, end).
func (db *DB) CountPersonalRecords(ctx context.Context, userID int, start, end time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM personal_records
		 WHERE user_id = $1 AND achieved_at >= $2 AND achieved_at < $3`,
		userID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting personal records: %w", err)
	}
	return n, nil
}
