package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/readiness"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/google/uuid"
)

// DataSource abstracts the analytics layer for MCP tools. Both Local
// (in-process services) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	PersonalRecords(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error)
	TrainingSummary(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error)
	SummaryHistory(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error)
	ComparePrevious(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*summary.Comparison, error)
	CompareRanges(ctx context.Context, userID int, baselineStart, baselineEnd, currentStart, currentEnd time.Time) (*summary.Comparison, error)
	Streaks(ctx context.Context, userID int, weeks int) (*summary.StreakReport, error)
	MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]summary.WeekMuscleVolume, error)
	Progression(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) (*summary.Progression, error)
	Readiness(ctx context.Context, userID int) (*readiness.Result, error)
	MuscleRecovery(ctx context.Context, userID int) ([]models.MuscleRecovery, error)
	Goals(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error)
	GoalHistory(ctx context.Context, userID int, goalID uuid.UUID) ([]models.GoalProgress, error)
	RecordGoalProgress(ctx context.Context, userID int, goalID uuid.UUID, u goals.Update) (*goals.ProgressResult, error)
	Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error)
	TrainingIntensity(ctx context.Context, userID int, start, end time.Time) (*storage.TrainingIntensityResult, error)
	Exercises(ctx context.Context) ([]models.Exercise, error)
}

// Local serves a DataSource from the in-process engines.
type Local struct {
	Records   *records.Evaluator
	Summaries *summary.Generator
	Scorer    *readiness.Scorer
	Engine    *goals.Engine
	DB        *storage.DB

	now func() time.Time
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

func (l *Local) PersonalRecords(ctx context.Context, userID int, exerciseID *uuid.UUID) ([]models.PersonalRecord, error) {
	return l.Records.List(ctx, userID, exerciseID)
}

func (l *Local) TrainingSummary(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*models.TrainingSummary, error) {
	return l.Summaries.Generate(ctx, userID, pt, ref)
}

func (l *Local) SummaryHistory(ctx context.Context, userID int, pt models.PeriodType, limit int) ([]models.TrainingSummary, error) {
	return l.Summaries.History(ctx, userID, pt, limit)
}

func (l *Local) ComparePrevious(ctx context.Context, userID int, pt models.PeriodType, ref time.Time) (*summary.Comparison, error) {
	return l.Summaries.ComparePrevious(ctx, userID, pt, ref)
}

func (l *Local) CompareRanges(ctx context.Context, userID int, baselineStart, baselineEnd, currentStart, currentEnd time.Time) (*summary.Comparison, error) {
	loc := l.Summaries.Location()
	baseline, err := summary.CustomPeriod(baselineStart, baselineEnd, loc)
	if err != nil {
		return nil, err
	}
	current, err := summary.CustomPeriod(currentStart, currentEnd, loc)
	if err != nil {
		return nil, err
	}
	return l.Summaries.Compare(ctx, userID, baseline, current)
}

func (l *Local) Streaks(ctx context.Context, userID int, weeks int) (*summary.StreakReport, error) {
	return l.Summaries.Streaks(ctx, userID, l.clock(), weeks)
}

func (l *Local) MuscleVolume(ctx context.Context, userID int, start, end time.Time) ([]summary.WeekMuscleVolume, error) {
	return l.Summaries.MuscleVolume(ctx, userID, start, end)
}

func (l *Local) Progression(ctx context.Context, userID int, exerciseID uuid.UUID, start, end time.Time) (*summary.Progression, error) {
	return l.Summaries.Progression(ctx, userID, exerciseID, start, end)
}

func (l *Local) Readiness(ctx context.Context, userID int) (*readiness.Result, error) {
	return l.Scorer.Readiness(ctx, userID, l.clock())
}

func (l *Local) MuscleRecovery(ctx context.Context, userID int) ([]models.MuscleRecovery, error) {
	return l.Scorer.Recovery(ctx, userID, l.clock())
}

func (l *Local) Goals(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error) {
	return l.Engine.List(ctx, userID, status)
}

func (l *Local) GoalHistory(ctx context.Context, userID int, goalID uuid.UUID) ([]models.GoalProgress, error) {
	return l.Engine.History(ctx, userID, goalID)
}

func (l *Local) RecordGoalProgress(ctx context.Context, userID int, goalID uuid.UUID, u goals.Update) (*goals.ProgressResult, error) {
	return l.Engine.RecordProgress(ctx, userID, goalID, u)
}

func (l *Local) Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error) {
	return l.DB.ListWorkouts(ctx, userID, start, end)
}

func (l *Local) TrainingIntensity(ctx context.Context, userID int, start, end time.Time) (*storage.TrainingIntensityResult, error) {
	return l.DB.GetTrainingIntensity(ctx, userID, start, end)
}

func (l *Local) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return l.DB.ListExercises(ctx)
}
