// Package readiness turns a daily check-in and muscle recovery state into a
// 0–100 training readiness score and a recommendation.
package readiness

import (
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
)

// NeutralScore is reported when there is nothing to score.
const NeutralScore = 50

// Factor weights. WeightedComposite renormalizes over the present factors.
const (
	weightSleep          = 0.25
	weightEnergy         = 0.20
	weightSoreness       = 0.20
	weightStress         = 0.15
	weightMuscleRecovery = 0.20
)

// Recommendations by score band. Each band includes its lower bound.
const (
	RecommendHard  = "ready to train hard"
	RecommendLight = "light training recommended"
	RecommendRest  = "rest day suggested"
)

// Factors are the per-input scores on a 0–100 scale. Nil means the input was
// absent and is left out of the composite.
type Factors struct {
	Sleep          *float64 `json:"sleep"`
	Energy         *float64 `json:"energy"`
	Soreness       *float64 `json:"soreness"`
	Stress         *float64 `json:"stress"`
	MuscleRecovery *float64 `json:"muscle_recovery"`
}

// Result is the readiness report for one user and day.
type Result struct {
	Date            time.Time  `json:"date"`
	Score           int        `json:"score"`
	Recommendation  string     `json:"recommendation"`
	Factors         Factors    `json:"factors"`
	HasCheckInToday bool       `json:"has_check_in_today"`
	LastCheckInDate *time.Time `json:"last_check_in_date,omitempty"`
}

// FactorScores scores the check-in inputs and the mean muscle recovery.
// Either argument may be empty.
func FactorScores(c *models.DailyCheckIn, recovery []models.MuscleRecovery) Factors {
	var f Factors
	if c != nil {
		f.Sleep = scale(c.SleepQuality, func(v float64) float64 { return (v - 1) / 4 * 100 })
		f.Energy = scale(c.EnergyLevel, func(v float64) float64 { return (v - 1) / 9 * 100 })
		f.Soreness = scale(c.SorenessLevel, func(v float64) float64 { return (10 - v) / 9 * 100 })
		f.Stress = scale(c.StressLevel, func(v float64) float64 { return (10 - v) / 9 * 100 })
	}
	scores := make([]float64, 0, len(recovery))
	for _, r := range recovery {
		scores = append(scores, r.RecoveryScore)
	}
	if m, ok := formula.Mean(scores); ok {
		f.MuscleRecovery = formula.Ptr(formula.Round(m, 2))
	}
	return f
}

func scale(v *float64, fn func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	return formula.Ptr(formula.Round(fn(*v), 2))
}

// Score combines the present factors into a whole-number score, or
// NeutralScore when none is present. The composite is rounded half away from
// zero and Recommend bands the rounded score, so score and band always agree.
func Score(f Factors) int {
	composite, ok := formula.WeightedComposite(map[string]formula.Weighted{
		"sleep":           {Value: f.Sleep, Weight: weightSleep},
		"energy":          {Value: f.Energy, Weight: weightEnergy},
		"soreness":        {Value: f.Soreness, Weight: weightSoreness},
		"stress":          {Value: f.Stress, Weight: weightStress},
		"muscle_recovery": {Value: f.MuscleRecovery, Weight: weightMuscleRecovery},
	})
	if !ok {
		return NeutralScore
	}
	return int(formula.Round(formula.Clamp(composite, 0, 100), 0))
}

// Recommend maps a score to its band.
func Recommend(score int) string {
	switch {
	case score >= 70:
		return RecommendHard
	case score >= 40:
		return RecommendLight
	default:
		return RecommendRest
	}
}
