package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the generator needs. Workout and record ranges
// are half-open: [start, end).
type Store interface {
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error)
	CountPersonalRecords(ctx context.Context, userID int, start, end time.Time) (int, error)
	ListActiveDates(ctx context.Context, userID int) ([]time.Time, error)
	UpsertTrainingSummary(ctx context.Context, s models.TrainingSummary) (models.TrainingSummary, error)
	ListTrainingSummaries(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error)
}

// StreakReport combines the daily and weekly streaks with recent consistency.
type StreakReport struct {
	Daily          Streak  `json:"daily"`
	Weekly         Streak  `json:"weekly"`
	Weeks          int     `json:"consistency_weeks"`
	ConsistencyPct float64 `json:"consistency_pct"`
}

// Generator computes summaries from stored workouts.
type Generator struct {
	store   Store
	log     *slog.Logger
	loc     *time.Location
	formula formula.OneRepMaxFormula
}

// NewGenerator creates a Generator that evaluates dates in loc and estimates
// progression with f.
func NewGenerator(store Store, log *slog.Logger, loc *time.Location, f formula.OneRepMaxFormula) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{store: store, log: log, loc: loc, formula: f}
}

// Location returns the time zone periods are evaluated in.
func (g *Generator) Location() *time.Location {
	return g.loc
}

// Generate recomputes the summary of the period containing ref and upserts
// it on (user, period type, period start).
func (g *Generator) Generate(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error) {
	p, err := Bounds(pt, ref, g.loc)
	if err != nil {
		return nil, err
	}
	s, err := g.aggregate(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	saved, err := g.store.UpsertTrainingSummary(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("saving %s summary for %s: %w", pt, p.Start.Format(time.DateOnly), err)
	}
	g.log.Info("training summary generated",
		"user_id", userID,
		"period_type", pt,
		"period_start", p.Start.Format(time.DateOnly),
		"workouts", saved.TotalWorkouts,
		"volume", saved.TotalVolumeKg,
	)
	return &saved, nil
}

// History returns the most recent stored summaries of one period type.
func (g *Generator) History(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error) {
	if _, err := ParsePeriodType(string(pt)); err != nil {
		return nil, err
	}
	out, err := g.store.ListTrainingSummaries(ctx, userID, pt, limit)
	if err != nil {
		return nil, fmt.Errorf("listing %s summaries: %w", pt, err)
	}
	if out == nil {
		out = []models.TrainingSummary{}
	}
	return out, nil
}

// Compare summarizes two arbitrary periods independently and reports the
// change from baseline to current. Nothing is persisted.
func (g *Generator) Compare(ctx context.Context, userID int, baseline, current Period) (*Comparison, error) {
	a, err := g.aggregate(ctx, userID, baseline)
	if err != nil {
		return nil, err
	}
	b, err := g.aggregate(ctx, userID, current)
	if err != nil {
		return nil, err
	}
	c := Compare(orNil(a), orNil(b))
	return &c, nil
}

// ComparePrevious compares the period of type pt containing ref with the
// period before it.
func (g *Generator) ComparePrevious(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*Comparison, error) {
	current, err := Bounds(pt, ref, g.loc)
	if err != nil {
		return nil, err
	}
	baseline, err := Previous(current, g.loc)
	if err != nil {
		return nil, err
	}
	return g.Compare(ctx, userID, baseline, current)
}

// Streaks reports daily and weekly streaks as of now and the share of the
// last weeks weeks that saw training.
func (g *Generator) Streaks(ctx context.Context, userID int, now time.Time, weeks int) (*StreakReport, error) {
	dates, err := g.store.ListActiveDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing active dates: %w", err)
	}
	daily, err := Streaks(dates, StreakDay, now, g.loc)
	if err != nil {
		return nil, err
	}
	weekly, err := Streaks(dates, StreakWeek, now, g.loc)
	if err != nil {
		return nil, err
	}
	return &StreakReport{
		Daily:          daily,
		Weekly:         weekly,
		Weeks:          weeks,
		ConsistencyPct: Consistency(dates, weeks, now, g.loc),
	}, nil
}

// MuscleVolume groups per-muscle work by calendar week over [start, end].
func (g *Generator) MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]WeekMuscleVolume, error) {
	p, err := CustomPeriod(start, end, g.loc)
	if err != nil {
		return nil, err
	}
	ws, err := g.store.ListWorkouts(ctx, userID, p.Start, p.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	return MuscleVolumeByWeek(ws, g.loc), nil
}

// Progression returns the estimated 1RM trend of one exercise over [start, end].
func (g *Generator) Progression(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) (*Progression, error) {
	p, err := CustomPeriod(start, end, g.loc)
	if err != nil {
		return nil, err
	}
	ws, err := g.store.ListWorkouts(ctx, userID, p.Start, p.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	prog := ExerciseProgression(ws, exerciseID, g.formula)
	return &prog, nil
}

func (g *Generator) aggregate(ctx context.Context, userID int, p Period) (models.TrainingSummary, error) {
	ws, err := g.store.ListWorkouts(ctx, userID, p.Start, p.EndExclusive())
	if err != nil {
		return models.TrainingSummary{}, fmt.Errorf("listing workouts: %w", err)
	}
	prs, err := g.store.CountPersonalRecords(ctx, userID, p.Start, p.EndExclusive())
	if err != nil {
		return models.TrainingSummary{}, fmt.Errorf("counting personal records: %w", err)
	}
	return Aggregate(userID, p, ws, prs), nil
}
