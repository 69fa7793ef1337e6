package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SetType classifies a logged set. Warmup sets never count toward volume or records.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetFailure SetType = "failure"
	SetDrop    SetType = "drop"
)

// ExerciseType is the broad modality of an exercise.
type ExerciseType string

const (
	ExerciseStrength    ExerciseType = "strength"
	ExerciseCardio      ExerciseType = "cardio"
	ExerciseFlexibility ExerciseType = "flexibility"
)

// Weight and distance units are stored as logged and never converted.
const (
	UnitKg = "kg"
	UnitLb = "lb"
)

// Set is one logged performance unit.
type Set struct {
	ID           uuid.UUID `json:"id"`
	Reps         *int      `json:"reps,omitempty"`
	Weight       *float64  `json:"weight,omitempty"`
	WeightUnit   string    `json:"weight_unit,omitempty"`
	DurationSec  *int      `json:"duration_sec,omitempty"`
	Distance     *float64  `json:"distance,omitempty"`
	DistanceUnit string    `json:"distance_unit,omitempty"`
	Type         SetType   `json:"set_type"`
	RPE          *float64  `json:"rpe,omitempty"`
	Completed    bool      `json:"completed"`
}

// IsWarmup reports whether the set is excluded from volume and record math.
func (s Set) IsWarmup() bool {
	return s.Type == SetWarmup
}

// Counted reports whether the set contributes to volume, totals and records:
// a completed set that is not a warmup.
func (s Set) Counted() bool {
	return s.Completed && !s.IsWarmup()
}

// UnmarshalJSON treats a set without a "completed" field as completed, the
// same default the sets table applies.
func (s *Set) UnmarshalJSON(data []byte) error {
	type plain Set
	p := plain{Completed: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Set(p)
	return nil
}

// Volume returns weight × reps, or 0 when either is absent.
func (s Set) Volume() float64 {
	if s.Weight == nil || s.Reps == nil {
		return 0
	}
	return *s.Weight * float64(*s.Reps)
}

// Validate rejects values outside their documented domains.
func (s Set) Validate() error {
	if s.Reps != nil && *s.Reps < 0 {
		return fmt.Errorf("set %s: reps %d negative: %w", s.ID, *s.Reps, ErrDomainRange)
	}
	if s.Weight != nil && *s.Weight < 0 {
		return fmt.Errorf("set %s: weight %v negative: %w", s.ID, *s.Weight, ErrDomainRange)
	}
	if s.DurationSec != nil && *s.DurationSec < 0 {
		return fmt.Errorf("set %s: duration %d negative: %w", s.ID, *s.DurationSec, ErrDomainRange)
	}
	if s.Distance != nil && *s.Distance < 0 {
		return fmt.Errorf("set %s: distance %v negative: %w", s.ID, *s.Distance, ErrDomainRange)
	}
	if err := checkRange("rpe", s.RPE, 6, 10); err != nil {
		return fmt.Errorf("set %s: %w", s.ID, err)
	}
	switch s.Type {
	case SetNormal, SetWarmup, SetFailure, SetDrop:
	default:
		return fmt.Errorf("set %s: unknown set type %q: %w", s.ID, s.Type, ErrDomainRange)
	}
	return nil
}

// Exercise is reference data joined onto logged sets.
type Exercise struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	MuscleGroups []string     `json:"muscle_groups"`
	Equipment    string       `json:"equipment,omitempty"`
	Type         ExerciseType `json:"type"`
}

// WorkoutExercise groups ordered sets under one exercise within a workout.
type WorkoutExercise struct {
	ID            uuid.UUID `json:"id"`
	Exercise      Exercise  `json:"exercise"`
	Order         int       `json:"order"`
	SupersetGroup *int      `json:"superset_group,omitempty"`
	Sets          []Set     `json:"sets"`
}

// Workout is a training session.
type Workout struct {
	ID          uuid.UUID         `json:"id"`
	UserID      int               `json:"user_id"`
	Name        string            `json:"name"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Rating      *int              `json:"rating,omitempty"`
	Mood        *string           `json:"mood,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// IsCompleted reports whether the workout has a completion time.
func (w Workout) IsCompleted() bool {
	return w.CompletedAt != nil
}

// Duration returns completedAt − startedAt, or 0 for an unfinished workout.
func (w Workout) Duration() time.Duration {
	if w.CompletedAt == nil {
		return 0
	}
	d := w.CompletedAt.Sub(w.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Validate checks the workout and every set it contains.
func (w Workout) Validate() error {
	if err := checkIntRange("rating", w.Rating, 1, 5); err != nil {
		return fmt.Errorf("workout %s: %w", w.ID, err)
	}
	for _, we := range w.Exercises {
		for _, s := range we.Sets {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("workout %s: %w", w.ID, err)
			}
		}
	}
	return nil
}
