package summary

import (
	"sort"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Aggregate computes the summary of p from the user's workouts. Workouts
// starting outside p are ignored. Set, duration and muscle totals come from
// completed workouts only and never include warmup sets. prsAchieved is the
// number of records whose achieved date falls in p.
func Aggregate(userID int, p Period, workouts []models.Workout, prsAchieved int) models.TrainingSummary {
	s := models.TrainingSummary{
		UserID:         userID,
		PeriodType:     p.Type,
		PeriodStart:    p.Start,
		PeriodEnd:      p.End,
		VolumeByMuscle: map[string]float64{},
		SetsByMuscle:   map[string]int{},
		PRsAchieved:    prsAchieved,
	}

	inRange := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if p.Contains(w.StartedAt) {
			inRange = append(inRange, w)
		}
	}
	sort.SliceStable(inRange, func(i, j int) bool {
		return inRange[i].StartedAt.Before(inRange[j].StartedAt)
	})

	var (
		minutes  float64
		volume   float64
		rpes     []float64
		days     = map[int]bool{}
		exercise = map[uuid.UUID]int{}
		order    []uuid.UUID
	)
	loc := p.Start.Location()

	for _, w := range inRange {
		s.TotalWorkouts++
		if !w.IsCompleted() {
			continue
		}
		s.CompletedWorkouts++
		minutes += w.Duration().Minutes()
		days[dayIndex(w.StartedAt.In(loc))] = true

		for _, we := range w.Exercises {
			id := we.Exercise.ID
			if _, seen := exercise[id]; !seen {
				exercise[id] = 0
				order = append(order, id)
			}
			for _, set := range we.Sets {
				if !set.Counted() {
					continue
				}
				v := set.Volume()
				s.TotalSets++
				if set.Reps != nil {
					s.TotalReps += *set.Reps
				}
				volume += v
				exercise[id]++
				if set.RPE != nil {
					rpes = append(rpes, *set.RPE)
				}
				for _, m := range we.Exercise.MuscleGroups {
					s.VolumeByMuscle[m] += v
					s.SetsByMuscle[m]++
				}
			}
		}
	}

	for m, v := range s.VolumeByMuscle {
		s.VolumeByMuscle[m] = formula.Round(v, 2)
	}
	s.TotalVolumeKg = formula.Round(volume, 2)
	s.TotalDurationMinutes = formula.Round(minutes, 2)
	s.UniqueExercises = len(order)
	s.TrainingDays = len(days)

	best := 0
	for _, id := range order {
		if n := exercise[id]; n > best {
			best = n
			fav := id
			s.FavoriteExerciseID = &fav
		}
	}

	if s.CompletedWorkouts > 0 {
		n := float64(s.CompletedWorkouts)
		s.AvgWorkoutDuration = formula.Round(minutes/n, 2)
		s.AvgSetsPerWorkout = formula.Round(float64(s.TotalSets)/n, 2)
	}
	if m, ok := formula.Mean(rpes); ok {
		s.AvgRPE = formula.Ptr(formula.Round(m, 2))
	}
	if d := p.Days(); d > 0 {
		s.ConsistencyPct = formula.Round(float64(s.TrainingDays)/float64(d)*100, 2)
	}
	return s
}
