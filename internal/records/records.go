// Package records decides when a performance supersedes a personal record.
package records

import (
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Units reported for records that are not measured in the set's weight or distance unit.
const (
	UnitReps    = "reps"
	UnitSeconds = "s"
)

// LowerIsBetter reports whether a smaller value beats a larger one for t.
func LowerIsBetter(t models.RecordType) bool {
	return t == models.RecordBestTime
}

// IsBetter reports whether candidate strictly beats current for record type t.
func IsBetter(t models.RecordType, candidate, current float64) bool {
	if LowerIsBetter(t) {
		return candidate < current
	}
	return candidate > current
}

// Candidate is a performance that may set a new record.
type Candidate struct {
	ExerciseID   uuid.UUID         `json:"exercise_id"`
	ExerciseName string            `json:"exercise_name,omitempty"`
	Type         models.RecordType `json:"record_type"`
	Value        float64           `json:"value"`
	Unit         string            `json:"unit"`
	AchievedAt   time.Time         `json:"achieved_at"`
	SetID        *uuid.UUID        `json:"set_id,omitempty"`
	WorkoutID    *uuid.UUID        `json:"workout_id,omitempty"`
}

// Validate rejects unknown record types and non-finite or negative values.
func (c Candidate) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("record type %q: %w", c.Type, models.ErrDomainRange)
	}
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) || c.Value < 0 {
		return fmt.Errorf("record value %v: %w", c.Value, models.ErrDomainRange)
	}
	if c.ExerciseID == uuid.Nil {
		return fmt.Errorf("record without exercise: %w", models.ErrDomainRange)
	}
	return nil
}

// Evaluate compares a candidate with the user's current best. With no current
// best the candidate always wins. On a win the returned record replaces the
// current one in place (same ID) with the candidate's value, unit, date and
// source; otherwise current is returned unchanged.
func Evaluate(userID int, c Candidate, current *models.PersonalRecord) (models.PersonalRecord, bool) {
	if current != nil && !IsBetter(c.Type, c.Value, current.Value) {
		return *current, false
	}
	pr := models.PersonalRecord{
		UserID:       userID,
		ExerciseID:   c.ExerciseID,
		ExerciseName: c.ExerciseName,
		Type:         c.Type,
		Value:        c.Value,
		Unit:         c.Unit,
		AchievedAt:   c.AchievedAt,
		SetID:        c.SetID,
		WorkoutID:    c.WorkoutID,
	}
	if current != nil {
		pr.ID = current.ID
		if pr.ExerciseName == "" {
			pr.ExerciseName = current.ExerciseName
		}
	}
	return pr, true
}

// Candidates scans the non-warmup sets of a workout and returns the best
// candidate per (exercise, record type) touched. Ties keep the earliest set.
func Candidates(w models.Workout) []Candidate {
	achievedAt := w.StartedAt
	if w.CompletedAt != nil {
		achievedAt = *w.CompletedAt
	}
	workoutID := w.ID

	type key struct {
		exercise uuid.UUID
		typ      models.RecordType
	}
	best := make(map[key]int)
	var out []Candidate

	offer := func(c Candidate) {
		k := key{c.ExerciseID, c.Type}
		if i, ok := best[k]; ok {
			if IsBetter(c.Type, c.Value, out[i].Value) {
				out[i] = c
			}
			return
		}
		best[k] = len(out)
		out = append(out, c)
	}

	for _, we := range w.Exercises {
		for _, s := range we.Sets {
			if !s.Counted() {
				continue
			}
			setID := s.ID
			base := Candidate{
				ExerciseID:   we.Exercise.ID,
				ExerciseName: we.Exercise.Name,
				AchievedAt:   achievedAt,
				SetID:        &setID,
				WorkoutID:    &workoutID,
			}
			weightUnit := s.WeightUnit
			if weightUnit == "" {
				weightUnit = models.UnitKg
			}

			if s.Weight != nil && *s.Weight > 0 {
				c := base
				c.Type, c.Value, c.Unit = models.RecordMaxWeight, *s.Weight, weightUnit
				offer(c)
				if s.Reps != nil && *s.Reps > 0 {
					c.Type = models.RecordOneRepMax
					c.Value = formula.Round(formula.EstimateOneRepMax(*s.Weight, *s.Reps, formula.Epley), 2)
					offer(c)
					c.Type, c.Value = models.RecordMaxVolume, formula.Round(s.Volume(), 2)
					offer(c)
				}
			}
			if s.Reps != nil && *s.Reps > 0 {
				c := base
				c.Type, c.Value, c.Unit = models.RecordMaxReps, float64(*s.Reps), UnitReps
				offer(c)
			}
			if s.DurationSec != nil && *s.DurationSec > 0 {
				c := base
				c.Type, c.Value, c.Unit = models.RecordLongestDuration, float64(*s.DurationSec), UnitSeconds
				offer(c)
			}
			if s.Distance != nil && *s.Distance > 0 {
				c := base
				c.Type, c.Value, c.Unit = models.RecordLongestDistance, *s.Distance, s.DistanceUnit
				offer(c)
			}
		}
	}
	return out
}
