// Package goals computes goal progress and drives the goal lifecycle.
package goals

import (
	"fmt"
	"math"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
)

// maintainTolerance is the share of the target a maintain goal may drift
// while still counting as fully on track. Outside it, progress falls
// linearly and reaches zero maintainFalloff tolerances further out.
const (
	maintainTolerance = 0.05
	maintainFalloff   = 4.0
)

// RawProgress returns the unclamped progress percentage of moving from start
// toward target, currently at current. Decrease and increase results may
// leave [0, 100] when the value overshoots or moves the wrong way.
func RawProgress(dir models.GoalDirection, start, current, target float64) float64 {
	switch dir {
	case models.DirectionDecrease:
		if start == target {
			return met(current <= target)
		}
		return (start - current) / (start - target) * 100
	case models.DirectionIncrease:
		if start == target {
			return met(current >= target)
		}
		return (current - start) / (target - start) * 100
	case models.DirectionMaintain:
		tol := maintainTolerance * math.Abs(target)
		d := math.Abs(current - target)
		if tol == 0 {
			return met(d == 0)
		}
		if d <= tol {
			return 100
		}
		return 100 * (1 - (d-tol)/(maintainFalloff*tol))
	default:
		return 0
	}
}

func met(ok bool) float64 {
	if ok {
		return 100
	}
	return 0
}

// Progress clamps RawProgress to [0, 100] and rounds to two decimals.
func Progress(dir models.GoalDirection, start, current, target float64) float64 {
	return formula.Round(formula.Clamp(RawProgress(dir, start, current, target), 0, 100), 2)
}

// PayloadProgress dispatches on the payload type. A strength goal with both
// weight and rep targets averages the two components equally.
func PayloadProgress(dir models.GoalDirection, p models.GoalPayload) (float64, error) {
	if !dir.IsValid() {
		return 0, fmt.Errorf("goal direction %q: %w", dir, models.ErrDomainRange)
	}
	switch g := p.(type) {
	case models.WeightGoal:
		return Progress(dir, g.Start, g.Current, g.Target), nil
	case models.MeasurementGoal:
		return Progress(dir, g.Start, g.Current, g.Target), nil
	case models.CustomGoal:
		return Progress(dir, g.Start, g.Current, g.Target), nil
	case models.FrequencyGoal:
		return Progress(dir, float64(g.StartPerWeek), float64(g.CurrentPerWeek), float64(g.TargetPerWeek)), nil
	case models.StrengthGoal:
		parts := map[string]formula.Weighted{}
		if g.HasWeight() {
			parts["weight"] = formula.Weighted{
				Value:  formula.Ptr(Progress(dir, *g.StartWeight, *g.CurrentWeight, *g.TargetWeight)),
				Weight: 1,
			}
		}
		if g.HasReps() {
			parts["reps"] = formula.Weighted{
				Value:  formula.Ptr(Progress(dir, float64(*g.StartReps), float64(*g.CurrentReps), float64(*g.TargetReps))),
				Weight: 1,
			}
		}
		v, ok := formula.WeightedComposite(parts)
		if !ok {
			return 0, fmt.Errorf("strength goal without targets: %w", models.ErrDomainRange)
		}
		return formula.Round(v, 2), nil
	default:
		return 0, fmt.Errorf("unsupported goal payload %T: %w", p, models.ErrDomainRange)
	}
}

// endpoints returns the start and target that decide a goal's natural
// direction. Strength goals use weight when present, otherwise reps.
func endpoints(p models.GoalPayload) (start, target float64) {
	switch g := p.(type) {
	case models.WeightGoal:
		return g.Start, g.Target
	case models.MeasurementGoal:
		return g.Start, g.Target
	case models.CustomGoal:
		return g.Start, g.Target
	case models.FrequencyGoal:
		return float64(g.StartPerWeek), float64(g.TargetPerWeek)
	case models.StrengthGoal:
		if g.HasWeight() {
			return *g.StartWeight, *g.TargetWeight
		}
		if g.HasReps() {
			return float64(*g.StartReps), float64(*g.TargetReps)
		}
	}
	return 0, 0
}

// InferDirection picks decrease, increase or maintain from the payload's
// start and target.
func InferDirection(p models.GoalPayload) models.GoalDirection {
	s, t := endpoints(p)
	switch {
	case t < s:
		return models.DirectionDecrease
	case t > s:
		return models.DirectionIncrease
	default:
		return models.DirectionMaintain
	}
}

// Update is a new current value for a goal. Value is the tracked quantity;
// strength goals take the lifted weight in Value and the rep count in Reps.
type Update struct {
	Value *float64 `json:"value,omitempty"`
	Reps  *int     `json:"reps,omitempty"`
	Note  string   `json:"note,omitempty"`
}

// Apply returns a copy of p with its current value replaced by u, and the
// value recorded in the history row. A strength update carrying both weight
// and reps records the weight; HistoryNote carries the reps.
func Apply(p models.GoalPayload, u Update) (models.GoalPayload, float64, error) {
	needValue := func() (float64, error) {
		if u.Value == nil {
			return 0, fmt.Errorf("%s goal update needs a value: %w", p.GoalType(), models.ErrDomainRange)
		}
		if math.IsNaN(*u.Value) || math.IsInf(*u.Value, 0) {
			return 0, fmt.Errorf("goal value %v: %w", *u.Value, models.ErrDomainRange)
		}
		return *u.Value, nil
	}

	switch g := p.(type) {
	case models.WeightGoal:
		v, err := needValue()
		if err != nil {
			return nil, 0, err
		}
		g.Current = v
		return g, v, g.Validate()
	case models.MeasurementGoal:
		v, err := needValue()
		if err != nil {
			return nil, 0, err
		}
		g.Current = v
		return g, v, g.Validate()
	case models.CustomGoal:
		v, err := needValue()
		if err != nil {
			return nil, 0, err
		}
		g.Current = v
		return g, v, g.Validate()
	case models.FrequencyGoal:
		v, err := needValue()
		if err != nil {
			return nil, 0, err
		}
		if v != math.Trunc(v) {
			return nil, 0, fmt.Errorf("sessions per week %v not whole: %w", v, models.ErrDomainRange)
		}
		g.CurrentPerWeek = int(v)
		return g, v, g.Validate()
	case models.StrengthGoal:
		if u.Value == nil && u.Reps == nil {
			return nil, 0, fmt.Errorf("strength goal update needs weight or reps: %w", models.ErrDomainRange)
		}
		var recorded float64
		if u.Reps != nil {
			g.CurrentReps = formula.Ptr(*u.Reps)
			recorded = float64(*u.Reps)
		}
		if u.Value != nil {
			v, err := needValue()
			if err != nil {
				return nil, 0, err
			}
			g.CurrentWeight = formula.Ptr(v)
			recorded = v
		}
		return g, recorded, g.Validate()
	default:
		return nil, 0, fmt.Errorf("unsupported goal payload %T: %w", p, models.ErrDomainRange)
	}
}

// HistoryNote returns the note stored with a progress entry. When a strength
// update carries both weight and reps only the weight fits the entry's value,
// so the reps are appended to the note.
func HistoryNote(p models.GoalPayload, u Update) string {
	if _, ok := p.(models.StrengthGoal); !ok || u.Value == nil || u.Reps == nil {
		return u.Note
	}
	reps := fmt.Sprintf("%d reps", *u.Reps)
	if u.Note == "" {
		return reps
	}
	return u.Note + "; " + reps
}
