package storage

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func fp(f float64) *float64 { return &f }
func boolp(b bool) *bool    { return &b }

// TestAssembleWorkouts verifies that flat join rows fold back into nested
// workouts with exercise and set order preserved.
func TestAssembleWorkouts(t *testing.T) {
	w1 := models.Workout{ID: uuid.New(), UserID: 1, Name: "Push", StartedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)}
	w2 := models.Workout{ID: uuid.New(), UserID: 1, Name: "Rest walk", StartedAt: time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)}
	we1, we2 := uuid.New(), uuid.New()
	bench, ohp := uuid.New(), uuid.New()
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()

	rows := []workoutRow{
		{workout: w1, weID: &we1, wePosition: intp(0), exID: &bench, exName: strp("Bench Press"),
			exMuscles: []string{"chest", "triceps"}, exType: strp("strength"),
			setID: &s1, reps: intp(8), weight: fp(80), weightUnit: strp("kg"), setType: strp("warmup"), completed: boolp(true)},
		{workout: w1, weID: &we1, wePosition: intp(0), exID: &bench, exName: strp("Bench Press"),
			exMuscles: []string{"chest", "triceps"}, exType: strp("strength"),
			setID: &s2, reps: intp(5), weight: fp(100), weightUnit: strp("kg"), setType: strp("normal"), rpe: fp(8.5), completed: boolp(true)},
		{workout: w1, weID: &we2, wePosition: intp(1), exID: &ohp, exName: strp("Overhead Press"),
			exMuscles: []string{"shoulders"}, exType: strp("strength"),
			setID: &s3, reps: intp(6), weight: fp(50), weightUnit: strp("kg"), setType: strp("failure"), completed: boolp(false)},
		{workout: w2},
	}

	got := assembleWorkouts(rows)
	require.Len(t, got, 2)

	assert.Equal(t, w1.ID, got[0].ID)
	require.Len(t, got[0].Exercises, 2)
	assert.Equal(t, "Bench Press", got[0].Exercises[0].Exercise.Name)
	assert.Equal(t, models.ExerciseStrength, got[0].Exercises[0].Exercise.Type)
	assert.Equal(t, []string{"chest", "triceps"}, got[0].Exercises[0].Exercise.MuscleGroups)
	require.Len(t, got[0].Exercises[0].Sets, 2)
	assert.Equal(t, s1, got[0].Exercises[0].Sets[0].ID)
	assert.True(t, got[0].Exercises[0].Sets[0].IsWarmup())
	assert.Equal(t, 8.5, *got[0].Exercises[0].Sets[1].RPE)

	assert.Equal(t, 1, got[0].Exercises[1].Order)
	require.Len(t, got[0].Exercises[1].Sets, 1)
	assert.Equal(t, models.SetFailure, got[0].Exercises[1].Sets[0].Type)
	assert.False(t, got[0].Exercises[1].Sets[0].Completed)

	assert.Equal(t, w2.ID, got[1].ID)
	assert.NotNil(t, got[1].Exercises)
	assert.Empty(t, got[1].Exercises)
}

// TestAssembleWorkoutsExerciseWithoutSets verifies that an exercise row with
// a nil set is kept with an empty set list.
func TestAssembleWorkoutsExerciseWithoutSets(t *testing.T) {
	w := models.Workout{ID: uuid.New()}
	we := uuid.New()
	ex := uuid.New()

	got := assembleWorkouts([]workoutRow{{workout: w, weID: &we, wePosition: intp(0), exID: &ex, exName: strp("Plank")}})
	require.Len(t, got, 1)
	require.Len(t, got[0].Exercises, 1)
	assert.Empty(t, got[0].Exercises[0].Sets)
	assert.Equal(t, "", got[0].Exercises[0].Exercise.Category)
}

// TestAssembleWorkoutsEmpty verifies that no rows produce no workouts.
func TestAssembleWorkoutsEmpty(t *testing.T) {
	assert.Empty(t, assembleWorkouts(nil))
}

// TestNotFound verifies that only pgx.ErrNoRows maps to models.ErrNotFound.
func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), models.ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("wrapped: %w", pgx.ErrNoRows)), models.ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other))
	assert.NoError(t, notFound(nil))
}

// TestFinishIntensity verifies band percentages and the failure rate.
func TestFinishIntensity(t *testing.T) {
	r := &TrainingIntensityResult{
		TotalSets:   8,
		FailureSets: 2,
		RPEDistribution: []RPEBand{
			{Band: "failure", Sets: 2},
			{Band: "moderate", Sets: 4},
			{Band: "untracked", Sets: 2},
		},
	}
	finishIntensity(r)

	assert.Equal(t, 25.0, r.RPEDistribution[0].Pct)
	assert.Equal(t, 50.0, r.RPEDistribution[1].Pct)
	assert.Equal(t, 25.0, r.FailureRatePct)

	empty := &TrainingIntensityResult{}
	finishIntensity(empty)
	assert.False(t, math.IsNaN(empty.FailureRatePct))
	assert.Zero(t, empty.FailureRatePct)
}
