// Package ingest stores logged workouts and runs the analytics that follow
// a new workout: personal record evaluation and muscle recovery refresh.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/google/uuid"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	WorkoutsReceived int   `json:"workouts_received"`
	WorkoutsInserted int   `json:"workouts_inserted"`
	WorkoutsSkipped  int   `json:"workouts_skipped"`
	SetsReceived     int   `json:"sets_received"`
	SetsInserted     int64 `json:"sets_inserted"`

	WorkoutIDs []uuid.UUID          `json:"workout_ids"`
	NewRecords []records.NewRecord `json:"new_records"`

	MusclesRefreshed int    `json:"muscles_refreshed,omitempty"`
	Message          string `json:"message,omitempty"`
}

// Store is the persistence the pipeline writes to. InsertWorkout returns
// false when a workout with the same ID already exists.
type Store interface {
	UpsertExercise(ctx context.Context, e models.Exercise) (models.Exercise, error)
	InsertWorkout(ctx context.Context, w models.Workout) (bool, error)
}

// RecordChecker evaluates a stored workout for personal records.
type RecordChecker interface {
	CheckWorkout(ctx context.Context, userID int, w models.Workout) (*records.Result, error)
}

// RecoveryRefresher rebuilds the user's muscle recovery rows.
type RecoveryRefresher interface {
	RefreshRecovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error)
}

// Pipeline stores workouts and triggers the follow-up analytics.
type Pipeline struct {
	store    Store
	records  RecordChecker
	recovery RecoveryRefresher
	log      *slog.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(store Store, rc RecordChecker, rr RecoveryRefresher, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, records: rc, recovery: rr, log: log, now: time.Now}
}

// Log validates and stores workouts for a user. Workouts are handled oldest
// first so records improve in the order they were achieved. Completed,
// newly inserted workouts are evaluated for personal records, and muscle
// recovery is refreshed once if any were stored. Workouts whose ID is
// already stored are skipped, which makes re-imports idempotent.
func (p *Pipeline) Log(ctx context.Context, userID int, workouts []models.Workout) (*Result, error) {
	result := &Result{
		WorkoutsReceived: len(workouts),
		WorkoutIDs:       []uuid.UUID{},
		NewRecords:       []records.NewRecord{},
	}

	prepared := make([]models.Workout, len(workouts))
	for i, w := range workouts {
		w = assignIDs(w)
		w.UserID = userID
		if err := w.Validate(); err != nil {
			return nil, err
		}
		for _, we := range w.Exercises {
			result.SetsReceived += len(we.Sets)
		}
		prepared[i] = w
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].StartedAt.Before(prepared[j].StartedAt)
	})

	exercises := map[string]models.Exercise{}
	completedInserted := false
	for _, w := range prepared {
		for i := range w.Exercises {
			ex, err := p.resolveExercise(ctx, exercises, w.Exercises[i].Exercise)
			if err != nil {
				return result, err
			}
			w.Exercises[i].Exercise = ex
		}

		inserted, err := p.store.InsertWorkout(ctx, w)
		if err != nil {
			return result, fmt.Errorf("storing workout %s: %w", w.ID, err)
		}
		result.WorkoutIDs = append(result.WorkoutIDs, w.ID)
		if !inserted {
			result.WorkoutsSkipped++
			continue
		}
		result.WorkoutsInserted++
		for _, we := range w.Exercises {
			result.SetsInserted += int64(len(we.Sets))
		}

		if !w.IsCompleted() {
			continue
		}
		completedInserted = true
		prs, err := p.records.CheckWorkout(ctx, userID, w)
		if err != nil {
			return result, fmt.Errorf("evaluating records for workout %s: %w", w.ID, err)
		}
		result.NewRecords = append(result.NewRecords, prs.NewRecords...)
	}

	if completedInserted {
		muscles, err := p.recovery.RefreshRecovery(ctx, userID, p.now())
		if err != nil {
			return result, fmt.Errorf("refreshing muscle recovery: %w", err)
		}
		result.MusclesRefreshed = len(muscles)
	}

	p.log.Info("workouts logged",
		"user_id", userID,
		"received", result.WorkoutsReceived,
		"inserted", result.WorkoutsInserted,
		"skipped", result.WorkoutsSkipped,
		"records", len(result.NewRecords),
	)
	return result, nil
}

// resolveExercise maps an exercise reference to the stored catalog entry,
// creating it by name when needed. Lookups are cached per call.
func (p *Pipeline) resolveExercise(ctx context.Context, cache map[string]models.Exercise, ex models.Exercise) (models.Exercise, error) {
	if ex.Name == "" {
		return models.Exercise{}, fmt.Errorf("exercise %s has no name: %w", ex.ID, models.ErrDomainRange)
	}
	if cached, ok := cache[ex.Name]; ok {
		return cached, nil
	}
	stored, err := p.store.UpsertExercise(ctx, ex)
	if err != nil {
		return models.Exercise{}, err
	}
	cache[ex.Name] = stored
	return stored, nil
}

// assignIDs fills in missing workout, exercise entry and set IDs.
func assignIDs(w models.Workout) models.Workout {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	exercises := make([]models.WorkoutExercise, len(w.Exercises))
	for i, we := range w.Exercises {
		if we.ID == uuid.Nil {
			we.ID = uuid.New()
		}
		we.Order = i
		sets := make([]models.Set, len(we.Sets))
		for j, s := range we.Sets {
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			if s.Type == "" {
				s.Type = models.SetNormal
			}
			sets[j] = s
		}
		we.Sets = sets
		exercises[i] = we
	}
	w.Exercises = exercises
	return w
}
