package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Store is the persistence the scorer needs. GetCheckIn and
// LatestCheckInDate return nil without error when there is no check-in.
type Store interface {
	GetCheckIn(ctx context.Context, userID int, date time.Time) (*models.DailyCheckIn, error)
	LatestCheckInDate(ctx context.Context, userID int) (*time.Time, error)
	UpsertCheckIn(ctx context.Context, c models.DailyCheckIn) (models.DailyCheckIn, error)
	ListMuscleRecovery(ctx context.Context, userID int) ([]models.MuscleRecovery, error)
	UpsertMuscleRecovery(ctx context.Context, rows []models.MuscleRecovery) error
	ListWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error)
}

// Scorer computes readiness and maintains muscle recovery rows.
type Scorer struct {
	store Store
	log   *slog.Logger
	loc   *time.Location
}

// NewScorer creates a Scorer whose calendar days are evaluated in loc.
func NewScorer(store Store, log *slog.Logger, loc *time.Location) *Scorer {
	if loc == nil {
		loc = time.UTC
	}
	return &Scorer{store: store, log: log, loc: loc}
}

func (s *Scorer) today(now time.Time) time.Time {
	t := now.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// Readiness scores the user's day containing now.
func (s *Scorer) Readiness(ctx context.Context, userID int, now time.Time) (*Result, error) {
	today := s.today(now)
	checkIn, err := s.store.GetCheckIn(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("loading check-in: %w", err)
	}
	recovery, err := s.Recovery(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LatestCheckInDate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading latest check-in date: %w", err)
	}

	factors := FactorScores(checkIn, recovery)
	score := Score(factors)
	return &Result{
		Date:            today,
		Score:           score,
		Recommendation:  Recommend(score),
		Factors:         factors,
		HasCheckInToday: checkIn != nil,
		LastCheckInDate: last,
	}, nil
}

// CheckIn validates and stores a check-in, replacing any existing one for
// the same user and day. A zero date means today.
func (s *Scorer) CheckIn(ctx context.Context, c models.DailyCheckIn, now time.Time) (*models.DailyCheckIn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Date.IsZero() {
		c.Date = now
	}
	c.Date = s.today(c.Date)
	saved, err := s.store.UpsertCheckIn(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("saving check-in for %s: %w", c.Date.Format(time.DateOnly), err)
	}
	s.log.Info("check-in saved", "user_id", c.UserID, "date", c.Date.Format(time.DateOnly))
	return &saved, nil
}

// RefreshRecovery recomputes recovery from the trailing window of workouts.
// Muscles no longer loaded in the window are reset to fully recovered.
func (s *Scorer) RefreshRecovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error) {
	workouts, err := s.store.ListWorkouts(ctx, userID, now.Add(-RecoveryWindow-24*time.Hour), now.Add(time.Second))
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	rows := ComputeRecovery(userID, workouts, now)

	existing, err := s.store.ListMuscleRecovery(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing muscle recovery: %w", err)
	}
	fresh := make(map[string]bool, len(rows))
	for _, r := range rows {
		fresh[r.MuscleGroup] = true
	}
	for _, old := range existing {
		if fresh[old.MuscleGroup] {
			continue
		}
		r := models.DefaultRecovery(userID, old.MuscleGroup)
		r.LastWorkedAt = old.LastWorkedAt
		r.UpdatedAt = now
		rows = append(rows, r)
	}

	if err := s.store.UpsertMuscleRecovery(ctx, rows); err != nil {
		return nil, fmt.Errorf("saving muscle recovery: %w", err)
	}
	s.log.Debug("muscle recovery refreshed", "user_id", userID, "muscles", len(rows))
	return rows, nil
}

// Recovery returns stored recovery rows projected to now.
func (s *Scorer) Recovery(ctx context.Context, userID int, now time.Time) ([]models.MuscleRecovery, error) {
	rows, err := s.store.ListMuscleRecovery(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing muscle recovery: %w", err)
	}
	out := make([]models.MuscleRecovery, 0, len(rows))
	for _, r := range rows {
		out = append(out, Decay(r, now))
	}
	return out, nil
}
