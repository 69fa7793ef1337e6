package summary

import (
	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
)

// Comparison holds two period summaries and the change from the baseline to
// the current one. A nil summary means the period had no workouts.
type Comparison struct {
	Baseline          *models.TrainingSummary `json:"baseline"`
	Current           *models.TrainingSummary `json:"current"`
	VolumeChange      float64                 `json:"volume_change"`
	WorkoutsChange    float64                 `json:"workouts_change"`
	AvgDurationChange float64                 `json:"avg_duration_change"`
}

// Compare computes percentage changes from baseline to current. Every change
// is 0 when the baseline is missing.
func Compare(baseline, current *models.TrainingSummary) Comparison {
	c := Comparison{Baseline: baseline, Current: current}
	if baseline == nil {
		return c
	}
	var cur models.TrainingSummary
	if current != nil {
		cur = *current
	}
	c.VolumeChange = formula.PercentChange(baseline.TotalVolumeKg, cur.TotalVolumeKg)
	c.WorkoutsChange = formula.PercentChange(float64(baseline.TotalWorkouts), float64(cur.TotalWorkouts))
	c.AvgDurationChange = formula.PercentChange(baseline.AvgWorkoutDuration, cur.AvgWorkoutDuration)
	return c
}

// orNil drops summaries of periods without any workout.
func orNil(s models.TrainingSummary) *models.TrainingSummary {
	if s.TotalWorkouts == 0 {
		return nil
	}
	return &s
}
