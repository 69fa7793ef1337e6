package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordType names a personal-record category.
type RecordType string

const (
	RecordOneRepMax       RecordType = "one_rep_max"
	RecordMaxWeight       RecordType = "max_weight"
	RecordMaxReps         RecordType = "max_reps"
	RecordMaxVolume       RecordType = "max_volume"
	RecordBestTime        RecordType = "best_time"
	RecordLongestDuration RecordType = "longest_duration"
	RecordLongestDistance RecordType = "longest_distance"
)

// IsValid reports whether t is a known record type.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordOneRepMax, RecordMaxWeight, RecordMaxReps, RecordMaxVolume,
		RecordBestTime, RecordLongestDuration, RecordLongestDistance:
		return true
	default:
		return false
	}
}

// PersonalRecord is the single best value per (user, exercise, record type).
type PersonalRecord struct {
	ID           uuid.UUID  `json:"id"`
	UserID       int        `json:"user_id"`
	ExerciseID   uuid.UUID  `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name,omitempty"`
	Type         RecordType `json:"record_type"`
	Value        float64    `json:"value"`
	Unit         string     `json:"unit"`
	AchievedAt   time.Time  `json:"achieved_at"`
	SetID        *uuid.UUID `json:"set_id,omitempty"`
	WorkoutID    *uuid.UUID `json:"workout_id,omitempty"`
}

// PeriodType is the granularity of a stored training summary.
type PeriodType string

const (
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
)

// TrainingSummary holds the aggregates for one user and period. One row per
// (user, period type, period start); regenerating overwrites it.
type TrainingSummary struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               int                `json:"user_id"`
	PeriodType           PeriodType         `json:"period_type"`
	PeriodStart          time.Time          `json:"period_start"`
	PeriodEnd            time.Time          `json:"period_end"`
	TotalWorkouts        int                `json:"total_workouts"`
	CompletedWorkouts    int                `json:"completed_workouts"`
	TotalDurationMinutes float64            `json:"total_duration_minutes"`
	TotalSets            int                `json:"total_sets"`
	TotalReps            int                `json:"total_reps"`
	TotalVolumeKg        float64            `json:"total_volume_kg"`
	VolumeByMuscle       map[string]float64 `json:"volume_by_muscle"`
	SetsByMuscle         map[string]int     `json:"sets_by_muscle"`
	UniqueExercises      int                `json:"unique_exercises"`
	FavoriteExerciseID   *uuid.UUID         `json:"favorite_exercise_id,omitempty"`
	PRsAchieved          int                `json:"prs_achieved"`
	AvgWorkoutDuration   float64            `json:"avg_workout_duration"`
	AvgRPE               *float64           `json:"avg_rpe,omitempty"`
	AvgSetsPerWorkout    float64            `json:"avg_sets_per_workout"`
	TrainingDays         int                `json:"training_days"`
	ConsistencyPct       float64            `json:"consistency_pct"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// DailyCheckIn holds the subjective inputs for one user and calendar date.
// Every scalar is optional; absent inputs are excluded from readiness.
type DailyCheckIn struct {
	ID               uuid.UUID `json:"id"`
	UserID           int       `json:"user_id"`
	Date             time.Time `json:"date"`
	SleepHours       *float64  `json:"sleep_hours,omitempty"`
	SleepQuality     *float64  `json:"sleep_quality,omitempty"`
	EnergyLevel      *float64  `json:"energy_level,omitempty"`
	StressLevel      *float64  `json:"stress_level,omitempty"`
	SorenessLevel    *float64  `json:"soreness_level,omitempty"`
	SoreAreas        []string  `json:"sore_areas,omitempty"`
	RestingHeartRate *float64  `json:"resting_heart_rate,omitempty"`
	HRV              *float64  `json:"hrv,omitempty"`
	Motivation       *float64  `json:"motivation,omitempty"`
	Mood             *float64  `json:"mood,omitempty"`
	NutritionQuality *float64  `json:"nutrition_quality,omitempty"`
	HydrationQuality *float64  `json:"hydration_quality,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// Validate rejects inputs outside their scales instead of clamping them.
func (c DailyCheckIn) Validate() error {
	checks := []struct {
		field  string
		v      *float64
		lo, hi float64
	}{
		{"sleep_hours", c.SleepHours, 0, 24},
		{"sleep_quality", c.SleepQuality, 1, 5},
		{"energy_level", c.EnergyLevel, 1, 10},
		{"stress_level", c.StressLevel, 1, 10},
		{"soreness_level", c.SorenessLevel, 1, 10},
		{"resting_heart_rate", c.RestingHeartRate, 20, 250},
		{"hrv", c.HRV, 0, 500},
		{"motivation", c.Motivation, 1, 10},
		{"mood", c.Mood, 1, 10},
		{"nutrition_quality", c.NutritionQuality, 1, 5},
		{"hydration_quality", c.HydrationQuality, 1, 5},
	}
	for _, ch := range checks {
		if err := checkRange(ch.field, ch.v, ch.lo, ch.hi); err != nil {
			return err
		}
	}
	return nil
}

// MuscleRecovery tracks fatigue for one user and muscle group.
type MuscleRecovery struct {
	UserID                int        `json:"user_id"`
	MuscleGroup           string     `json:"muscle_group"`
	RecoveryScore         float64    `json:"recovery_score"`
	FatigueLevel          float64    `json:"fatigue_level"`
	LastWorkedAt          *time.Time `json:"last_worked_at,omitempty"`
	SetsLast7Days         int        `json:"sets_last_7_days"`
	VolumeLast7Days       float64    `json:"volume_last_7_days"`
	EstimatedFullRecovery *time.Time `json:"estimated_full_recovery,omitempty"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// DefaultRecovery is the state of a muscle group with no tracked training.
func DefaultRecovery(userID int, muscle string) MuscleRecovery {
	return MuscleRecovery{
		UserID:        userID,
		MuscleGroup:   muscle,
		RecoveryScore: 100,
		FatigueLevel:  0,
	}
}
