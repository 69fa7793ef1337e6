package readiness

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
)

// Recovery model. A session loads a muscle with fatigue proportional to its
// working sets and the load decays linearly to zero over a horizon that also
// grows with the set count.
const (
	fatiguePerSet   = 8.0
	maxFatigue      = 100.0
	baseHorizon     = 24 * time.Hour
	horizonPerSet   = 4 * time.Hour
	maxHorizon      = 96 * time.Hour
	RecoveryWindow  = 7 * 24 * time.Hour
	fullRecoveryPct = 100.0
)

type session struct {
	at     time.Time
	sets   int
	volume float64
}

func horizon(sets int) time.Duration {
	h := baseHorizon + time.Duration(sets)*horizonPerSet
	if h > maxHorizon {
		return maxHorizon
	}
	return h
}

// residual returns the fatigue a session still contributes at now.
func (s session) residual(now time.Time) float64 {
	elapsed := now.Sub(s.at)
	if elapsed < 0 {
		return 0
	}
	h := horizon(s.sets)
	if elapsed >= h {
		return 0
	}
	load := formula.Clamp(float64(s.sets)*fatiguePerSet, 0, maxFatigue)
	return load * (1 - elapsed.Seconds()/h.Seconds())
}

// ComputeRecovery rebuilds the recovery state of every muscle group trained
// by a completed workout in the RecoveryWindow before now. Muscles are
// returned in alphabetical order.
func ComputeRecovery(userID int, workouts []models.Workout, now time.Time) []models.MuscleRecovery {
	since := now.Add(-RecoveryWindow)
	byMuscle := map[string][]session{}

	for _, w := range workouts {
		if !w.IsCompleted() {
			continue
		}
		at := *w.CompletedAt
		if at.After(now) || !at.After(since) {
			continue
		}
		perMuscle := map[string]*session{}
		for _, we := range w.Exercises {
			for _, s := range we.Sets {
				if s.IsWarmup() {
					continue
				}
				for _, m := range we.Exercise.MuscleGroups {
					ss := perMuscle[m]
					if ss == nil {
						ss = &session{at: at}
						perMuscle[m] = ss
					}
					ss.sets++
					ss.volume += s.Volume()
				}
			}
		}
		for m, ss := range perMuscle {
			byMuscle[m] = append(byMuscle[m], *ss)
		}
	}

	out := make([]models.MuscleRecovery, 0, len(byMuscle))
	for m, sessions := range byMuscle {
		r := models.DefaultRecovery(userID, m)
		r.UpdatedAt = now
		var fatigue float64
		for _, s := range sessions {
			r.SetsLast7Days += s.sets
			r.VolumeLast7Days += s.volume
			if r.LastWorkedAt == nil || s.at.After(*r.LastWorkedAt) {
				at := s.at
				r.LastWorkedAt = &at
			}
			if f := s.residual(now); f > 0 {
				fatigue += f
				full := s.at.Add(horizon(s.sets))
				if r.EstimatedFullRecovery == nil || full.After(*r.EstimatedFullRecovery) {
					r.EstimatedFullRecovery = &full
				}
			}
		}
		r.VolumeLast7Days = formula.Round(r.VolumeLast7Days, 2)
		r.FatigueLevel = formula.Round(formula.Clamp(fatigue, 0, maxFatigue), 2)
		r.RecoveryScore = formula.Round(fullRecoveryPct-r.FatigueLevel, 2)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MuscleGroup < out[j].MuscleGroup })
	return out
}

// Decay projects a stored row forward to now, reducing its fatigue linearly
// between the time it was computed and its estimated full recovery.
func Decay(r models.MuscleRecovery, now time.Time) models.MuscleRecovery {
	full := r.EstimatedFullRecovery
	if full == nil || !now.Before(*full) {
		r.FatigueLevel = 0
		r.RecoveryScore = fullRecoveryPct
		r.EstimatedFullRecovery = nil
		return r
	}
	if !now.After(r.UpdatedAt) || !full.After(r.UpdatedAt) {
		return r
	}
	remaining := full.Sub(now).Seconds() / full.Sub(r.UpdatedAt).Seconds()
	r.FatigueLevel = formula.Round(r.FatigueLevel*remaining, 2)
	r.RecoveryScore = formula.Round(fullRecoveryPct-r.FatigueLevel, 2)
	return r
}
