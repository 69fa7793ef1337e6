package summary

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ProgressionPoint is the best estimated 1RM for one session.
type ProgressionPoint struct {
	Date         time.Time `json:"date"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	EstimatedMax float64   `json:"estimated_1rm"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Unit         string    `json:"unit"`
}

// Progression is an exercise's estimated strength over time.
type Progression struct {
	ExerciseID uuid.UUID                `json:"exercise_id"`
	Formula    formula.OneRepMaxFormula `json:"formula"`
	Points     []ProgressionPoint       `json:"points"`
	ChangePct  float64                  `json:"change_pct"`
}

// ExerciseProgression returns, per completed workout, the heaviest estimated
// 1RM among the exercise's working sets, plus the percentage change from the
// first point to the last. Fewer than two points give a change of 0.
func ExerciseProgression(workouts []models.Workout, exerciseID uuid.UUID, f formula.OneRepMaxFormula) Progression {
	p := Progression{ExerciseID: exerciseID, Formula: f, Points: []ProgressionPoint{}}

	for _, w := range workouts {
		if !w.IsCompleted() {
			continue
		}
		var best *ProgressionPoint
		for _, we := range w.Exercises {
			if we.Exercise.ID != exerciseID {
				continue
			}
			for _, s := range we.Sets {
				if !s.Counted() || s.Weight == nil || s.Reps == nil {
					continue
				}
				est := formula.EstimateOneRepMax(*s.Weight, *s.Reps, f)
				if est <= 0 || (best != nil && est <= best.EstimatedMax) {
					continue
				}
				unit := s.WeightUnit
				if unit == "" {
					unit = models.UnitKg
				}
				best = &ProgressionPoint{
					Date:         w.StartedAt,
					WorkoutID:    w.ID,
					EstimatedMax: est,
					Weight:       *s.Weight,
					Reps:         *s.Reps,
					Unit:         unit,
				}
			}
		}
		if best != nil {
			best.EstimatedMax = formula.Round(best.EstimatedMax, 2)
			p.Points = append(p.Points, *best)
		}
	}

	sort.SliceStable(p.Points, func(i, j int) bool { return p.Points[i].Date.Before(p.Points[j].Date) })
	if n := len(p.Points); n > 1 {
		p.ChangePct = formula.PercentChange(p.Points[0].EstimatedMax, p.Points[n-1].EstimatedMax)
	}
	return p
}
