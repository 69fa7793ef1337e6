package records

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the evaluator needs. GetPersonalRecord returns
// (nil, nil) when the user has no record of that type yet.
type Store interface {
	GetWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error)
	GetPersonalRecord(ctx context.Context, userID int, exerciseID uuid.UUID, t models.RecordType) (*models.PersonalRecord, error)
	UpsertPersonalRecord(ctx context.Context, pr models.PersonalRecord) (models.PersonalRecord, error)
	ListPersonalRecords(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error)
}

// NewRecord is a record set or improved by an evaluation.
type NewRecord struct {
	models.PersonalRecord
	PreviousValue  *float64 `json:"previous_value,omitempty"`
	ImprovementPct *float64 `json:"improvement_pct,omitempty"`
}

// Result lists the records an evaluation set and how many candidates it checked.
type Result struct {
	NewRecords []NewRecord `json:"new_records"`
	Checked    int         `json:"checked"`
}

// Evaluator checks performances against stored personal records.
type Evaluator struct {
	store Store
	log   *slog.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(store Store, log *slog.Logger) *Evaluator {
	return &Evaluator{store: store, log: log}
}

// EvaluateWorkout loads a workout and checks every (exercise, record type)
// it touches.
func (e *Evaluator) EvaluateWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*Result, error) {
	w, err := e.store.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", workoutID, err)
	}
	return e.CheckWorkout(ctx, userID, *w)
}

// CheckWorkout evaluates an already loaded workout.
func (e *Evaluator) CheckWorkout(ctx context.Context, userID int, w models.Workout) (*Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return e.check(ctx, userID, Candidates(w))
}

// Submit evaluates a single candidate, e.g. a manually entered best time.
func (e *Evaluator) Submit(ctx context.Context, userID int, c Candidate) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return e.check(ctx, userID, []Candidate{c})
}

// List returns the user's records, optionally for one exercise.
func (e *Evaluator) List(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error) {
	prs, err := e.store.ListPersonalRecords(ctx, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("listing personal records: %w", err)
	}
	if prs == nil {
		prs = []models.PersonalRecord{}
	}
	return prs, nil
}

func (e *Evaluator) check(ctx context.Context, userID int, candidates []Candidate) (*Result, error) {
	result := &Result{NewRecords: []NewRecord{}}
	for _, c := range candidates {
		result.Checked++
		current, err := e.store.GetPersonalRecord(ctx, userID, c.ExerciseID, c.Type)
		if err != nil {
			return nil, fmt.Errorf("loading %s record for exercise %s: %w", c.Type, c.ExerciseID, err)
		}
		pr, improved := Evaluate(userID, c, current)
		if !improved {
			continue
		}
		saved, err := e.store.UpsertPersonalRecord(ctx, pr)
		if err != nil {
			return nil, fmt.Errorf("saving %s record for exercise %s: %w", c.Type, c.ExerciseID, err)
		}
		nr := NewRecord{PersonalRecord: saved}
		if current != nil {
			prev := current.Value
			nr.PreviousValue = &prev
			nr.ImprovementPct = formula.Ptr(formula.PercentChange(prev, saved.Value))
		}
		e.log.Info("personal record set",
			"user_id", userID,
			"exercise_id", c.ExerciseID,
			"record_type", c.Type,
			"value", saved.Value,
			"unit", saved.Unit,
		)
		result.NewRecords = append(result.NewRecords, nr)
	}
	return result, nil
}
