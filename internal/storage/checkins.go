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

const checkInColumns = `id, user_id, date, sleep_hours, sleep_quality, energy_level, stress_level,
	soreness_level, sore_areas, resting_heart_rate, hrv, motivation, mood, nutrition_quality,
	hydration_quality, notes`

// GetCheckIn returns the check-in for one calendar date, or nil if none.
func (db *DB) GetCheckIn(ctx context.Context, userID int, date time.Time) (*models.DailyCheckIn, error) {
	c, err := scanCheckIn(db.Pool.QueryRow(ctx,
		`SELECT `+checkInColumns+` FROM daily_checkins WHERE user_id = $1 AND date = $2`,
		userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying check-in: %w", err)
	}
	c.Date = date
	return &c, nil
}

// LatestCheckInDate returns the most recent check-in date, or nil if none.
func (db *DB) LatestCheckInDate(ctx context.Context, userID int) (*time.Time, error) {
	var d *time.Time
	err := db.Pool.QueryRow(ctx,
		`SELECT MAX(date) FROM daily_checkins WHERE user_id = $1`, userID,
	).Scan(&d)
	if err != nil {
		return nil, fmt.Errorf("querying latest check-in: %w", err)
	}
	return d, nil
}

// UpsertCheckIn stores a check-in, replacing any existing one for the same
// user and date.
func (db *DB) UpsertCheckIn(ctx context.Context, c models.DailyCheckIn) (models.DailyCheckIn, error) {
	if c.SoreAreas == nil {
		c.SoreAreas = []string{}
	}
	out, err := scanCheckIn(db.Pool.QueryRow(ctx,
		`INSERT INTO daily_checkins (id, user_id, date, sleep_hours, sleep_quality, energy_level,
		 stress_level, soreness_level, sore_areas, resting_heart_rate, hrv, motivation, mood,
		 nutrition_quality, hydration_quality, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			sleep_hours = EXCLUDED.sleep_hours,
			sleep_quality = EXCLUDED.sleep_quality,
			energy_level = EXCLUDED.energy_level,
			stress_level = EXCLUDED.stress_level,
			soreness_level = EXCLUDED.soreness_level,
			sore_areas = EXCLUDED.sore_areas,
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			hrv = EXCLUDED.hrv,
			motivation = EXCLUDED.motivation,
			mood = EXCLUDED.mood,
			nutrition_quality = EXCLUDED.nutrition_quality,
			hydration_quality = EXCLUDED.hydration_quality,
			notes = EXCLUDED.notes
		 RETURNING `+checkInColumns,
		uuid.New(), c.UserID, c.Date, c.SleepHours, c.SleepQuality, c.EnergyLevel,
		c.StressLevel, c.SorenessLevel, c.SoreAreas, c.RestingHeartRate, c.HRV, c.Motivation, c.Mood,
		c.NutritionQuality, c.HydrationQuality, c.Notes))
	if err != nil {
		return models.DailyCheckIn{}, fmt.Errorf("upserting check-in: %w", err)
	}
	out.Date = c.Date
	return out, nil
}

func scanCheckIn(row pgx.Row) (models.DailyCheckIn, error) {
	var c models.DailyCheckIn
	err := row.Scan(&c.ID, &c.UserID, &c.Date, &c.SleepHours, &c.SleepQuality, &c.EnergyLevel, &c.StressLevel,
		&c.SorenessLevel, &c.SoreAreas, &c.RestingHeartRate, &c.HRV, &c.Motivation, &c.Mood, &c.NutritionQuality,
		&c.HydrationQuality, &c.Notes)
	return c, err
}
