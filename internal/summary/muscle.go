package summary

import (
	"sort"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// MuscleVolume is the raw work one muscle group received in a week.
type MuscleVolume struct {
	Muscle    string  `json:"muscle_group"`
	Volume    float64 `json:"volume"`
	Sets      int     `json:"sets"`
	Exercises int     `json:"exercises"`
}

// WeekMuscleVolume groups muscle volumes by the Monday starting the week.
type WeekMuscleVolume struct {
	WeekStart time.Time      `json:"week_start"`
	Muscles   []MuscleVolume `json:"muscles"`
}

// MuscleVolumeByWeek groups the non-warmup sets of completed workouts by
// calendar week and muscle group. Weeks are ascending, muscles alphabetical.
func MuscleVolumeByWeek(workouts []models.Workout, loc *time.Location) []WeekMuscleVolume {
	type acc struct {
		volume    float64
		sets      int
		exercises map[uuid.UUID]bool
	}
	weeks := map[int]map[string]*acc{}
	starts := map[int]time.Time{}

	for _, w := range workouts {
		if !w.IsCompleted() {
			continue
		}
		ws := startOfWeek(startOfDay(w.StartedAt, loc))
		k := dayIndex(ws)
		if weeks[k] == nil {
			weeks[k] = map[string]*acc{}
			starts[k] = ws
		}
		for _, we := range w.Exercises {
			for _, set := range we.Sets {
				if !set.Counted() {
					continue
				}
				for _, m := range we.Exercise.MuscleGroups {
					a := weeks[k][m]
					if a == nil {
						a = &acc{exercises: map[uuid.UUID]bool{}}
						weeks[k][m] = a
					}
					a.volume += set.Volume()
					a.sets++
					a.exercises[we.Exercise.ID] = true
				}
			}
		}
	}

	keys := make([]int, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]WeekMuscleVolume, 0, len(keys))
	for _, k := range keys {
		wv := WeekMuscleVolume{WeekStart: starts[k], Muscles: []MuscleVolume{}}
		for m, a := range weeks[k] {
			wv.Muscles = append(wv.Muscles, MuscleVolume{
				Muscle:    m,
				Volume:    formula.Round(a.volume, 2),
				Sets:      a.sets,
				Exercises: len(a.exercises),
			})
		}
		sort.Slice(wv.Muscles, func(i, j int) bool { return wv.Muscles[i].Muscle < wv.Muscles[j].Muscle })
		out = append(out, wv)
	}
	return out
}
