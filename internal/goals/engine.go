package goals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/summary"
	"github.com/google/uuid"
)

// Store is the persistence the engine needs. GetGoal returns ErrNotFound for
// goals that do not exist or belong to another user. RecordGoalProgress must
// append the history row and save the goal's cached fields atomically.
type Store interface {
	CreateGoal(ctx context.Context, g models.Goal) (models.Goal, error)
	GetGoal(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error)
	ListGoals(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error)
	UpdateGoalStatus(ctx context.Context, g models.Goal) error
	RecordGoalProgress(ctx context.Context, g models.Goal, entry models.GoalProgress) (models.GoalProgress, error)
	ListGoalProgress(ctx context.Context, goalID uuid.UUID) ([]models.GoalProgress, error)
	CountCompletedWorkouts(ctx context.Context, userID int, start, end time.Time) (int, error)
}

// ProgressResult is the outcome of a progress write.
type ProgressResult struct {
	Goal          models.Goal         `json:"goal"`
	Entry         models.GoalProgress `json:"entry"`
	AutoCompleted bool                `json:"auto_completed"`
}

// Engine runs goal operations for one store.
type Engine struct {
	store Store
	log   *slog.Logger
	loc   *time.Location
	now   func() time.Time
}

// NewEngine creates an Engine. Weeks for frequency goals are evaluated in loc.
func NewEngine(store Store, log *slog.Logger, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: store, log: log, loc: loc, now: time.Now}
}

// Create validates and stores a new active goal. An empty type is taken from
// the payload and an empty direction is inferred from start and target.
func (e *Engine) Create(ctx context.Context, g models.Goal) (*models.Goal, error) {
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		return nil, fmt.Errorf("goal needs a title: %w", models.ErrDomainRange)
	}
	if g.Payload == nil {
		return nil, fmt.Errorf("goal needs a payload: %w", models.ErrDomainRange)
	}
	if g.Type == "" {
		g.Type = g.Payload.GoalType()
	}
	if g.Type != g.Payload.GoalType() {
		return nil, fmt.Errorf("goal type %q does not match %s payload: %w", g.Type, g.Payload.GoalType(), models.ErrDomainRange)
	}
	if err := g.Payload.Validate(); err != nil {
		return nil, err
	}
	if g.Direction == "" {
		g.Direction = InferDirection(g.Payload)
	}
	pct, err := PayloadProgress(g.Direction, g.Payload)
	if err != nil {
		return nil, err
	}

	now := e.now()
	g.ID = uuid.New()
	g.Status = models.GoalActive
	g.ProgressPct = pct
	g.UpdateCount = 0
	g.LastProgressUpdate = nil
	g.CompletedAt, g.AbandonedAt, g.AbandonReason = nil, nil, nil
	g.CreatedAt, g.UpdatedAt = now, now

	saved, err := e.store.CreateGoal(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}
	e.log.Info("goal created", "user_id", g.UserID, "goal_id", saved.ID, "goal_type", saved.Type, "direction", saved.Direction)
	return &saved, nil
}

// Get returns one of the user's goals.
func (e *Engine) Get(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	g, err := e.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("loading goal %s: %w", goalID, err)
	}
	return g, nil
}

// List returns the user's goals, optionally filtered by status.
func (e *Engine) List(ctx context.Context, userID int, status *models.GoalStatus) ([]models.Goal, error) {
	gs, err := e.store.ListGoals(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	if gs == nil {
		gs = []models.Goal{}
	}
	return gs, nil
}

// RecordProgress sets a goal's current value, appends it to the history and
// refreshes the cached percentage. Only active goals accept progress. An
// increase or decrease goal reaching 100% is completed in the same write.
func (e *Engine) RecordProgress(ctx context.Context, userID int, goalID uuid.UUID, u Update) (*ProgressResult, error) {
	g, err := e.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.GoalActive {
		return nil, fmt.Errorf("recording progress on a %s goal: %w", g.Status, models.ErrInvalidTransition)
	}

	payload, value, err := Apply(g.Payload, u)
	if err != nil {
		return nil, err
	}
	pct, err := PayloadProgress(g.Direction, payload)
	if err != nil {
		return nil, err
	}

	now := e.now()
	g.Payload = payload
	g.ProgressPct = pct
	g.UpdateCount++
	g.LastProgressUpdate = &now
	g.UpdatedAt = now

	auto := false
	if pct >= 100 && g.Direction != models.DirectionMaintain {
		g.Status = models.GoalCompleted
		g.CompletedAt = &now
		auto = true
	}

	entry, err := e.store.RecordGoalProgress(ctx, *g, models.GoalProgress{
		ID:         uuid.New(),
		GoalID:     g.ID,
		Value:      value,
		Note:       HistoryNote(payload, u),
		RecordedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("recording progress for goal %s: %w", goalID, err)
	}
	e.log.Info("goal progress recorded",
		"user_id", userID,
		"goal_id", goalID,
		"progress_pct", pct,
		"auto_completed", auto,
	)
	return &ProgressResult{Goal: *g, Entry: entry, AutoCompleted: auto}, nil
}

// Complete marks an active goal completed.
func (e *Engine) Complete(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return e.transition(ctx, userID, goalID, ActionComplete, "")
}

// Abandon marks an active or paused goal abandoned with an optional reason.
func (e *Engine) Abandon(ctx context.Context, userID int, goalID uuid.UUID, reason string) (*models.Goal, error) {
	return e.transition(ctx, userID, goalID, ActionAbandon, reason)
}

// Pause suspends an active goal.
func (e *Engine) Pause(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return e.transition(ctx, userID, goalID, ActionPause, "")
}

// Resume reactivates a paused goal.
func (e *Engine) Resume(ctx context.Context, userID int, goalID uuid.UUID) (*models.Goal, error) {
	return e.transition(ctx, userID, goalID, ActionResume, "")
}

func (e *Engine) transition(ctx context.Context, userID int, goalID uuid.UUID, a Action, reason string) (*models.Goal, error) {
	g, err := e.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	to, changed, err := Transition(g.Status, a)
	if err != nil {
		return nil, err
	}
	if !changed {
		return g, nil
	}

	now := e.now()
	from := g.Status
	g.Status = to
	g.UpdatedAt = now
	switch to {
	case models.GoalCompleted:
		g.CompletedAt = &now
	case models.GoalAbandoned:
		g.AbandonedAt = &now
		if r := strings.TrimSpace(reason); r != "" {
			g.AbandonReason = &r
		}
	}
	if err := e.store.UpdateGoalStatus(ctx, *g); err != nil {
		return nil, fmt.Errorf("saving goal %s status: %w", goalID, err)
	}
	e.log.Info("goal status changed", "user_id", userID, "goal_id", goalID, "from", from, "to", to)
	return g, nil
}

// History returns a goal's progress entries, oldest first.
func (e *Engine) History(ctx context.Context, userID int, goalID uuid.UUID) ([]models.GoalProgress, error) {
	if _, err := e.Get(ctx, userID, goalID); err != nil {
		return nil, err
	}
	entries, err := e.store.ListGoalProgress(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("listing progress for goal %s: %w", goalID, err)
	}
	if entries == nil {
		entries = []models.GoalProgress{}
	}
	return entries, nil
}

// SyncFrequency records this week's completed workout count on every active
// workout frequency goal whose current value differs.
func (e *Engine) SyncFrequency(ctx context.Context, userID int, now time.Time) ([]ProgressResult, error) {
	week, err := summary.Bounds(models.PeriodWeek, now, e.loc)
	if err != nil {
		return nil, err
	}
	count, err := e.store.CountCompletedWorkouts(ctx, userID, week.Start, week.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	active := models.GoalActive
	gs, err := e.List(ctx, userID, &active)
	if err != nil {
		return nil, err
	}
	out := []ProgressResult{}
	for _, g := range gs {
		fg, ok := g.Payload.(models.FrequencyGoal)
		if !ok || fg.CurrentPerWeek == count {
			continue
		}
		v := float64(count)
		res, err := e.RecordProgress(ctx, userID, g.ID, Update{Value: &v, Note: "synced from logged workouts"})
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}
