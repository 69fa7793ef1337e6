package alpha

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// importNamespace seeds the deterministic IDs of imported rows so that
// re-importing an export maps to the same workouts.
var importNamespace = uuid.MustParse("5b0c7a8e-3f1d-4c52-9e61-8a4f2d7b9c10")

// RPE values outside this range are not recorded.
const (
	minRPE = 6.0
	maxRPE = 10.0
)

// muscleKeywords maps exercise name fragments to muscle groups. The first
// matching fragment wins, so more specific fragments come first.
var muscleKeywords = []struct {
	fragment string
	muscles  []string
}{
	{"calf", []string{"calves"}},
	{"leg raise", []string{"abs"}},
	{"crunch", []string{"abs"}},
	{"plank", []string{"abs"}},
	{"hyperextension", []string{"lower_back", "glutes"}},
	{"romanian", []string{"hamstrings", "glutes"}},
	{"deadlift", []string{"hamstrings", "glutes", "back"}},
	{"leg curl", []string{"hamstrings"}},
	{"leg extension", []string{"quadriceps"}},
	{"leg press", []string{"quadriceps", "glutes"}},
	{"squat", []string{"quadriceps", "glutes"}},
	{"lunge", []string{"quadriceps", "glutes"}},
	{"hip thrust", []string{"glutes"}},
	{"bench", []string{"chest", "triceps", "shoulders"}},
	{"chest", []string{"chest", "triceps"}},
	{"fly", []string{"chest"}},
	{"dip", []string{"chest", "triceps"}},
	{"lateral raise", []string{"shoulders"}},
	{"overhead press", []string{"shoulders", "triceps"}},
	{"shoulder press", []string{"shoulders", "triceps"}},
	{"face pull", []string{"shoulders", "back"}},
	{"pull", []string{"back", "biceps"}},
	{"chin", []string{"back", "biceps"}},
	{"row", []string{"back", "biceps"}},
	{"pulldown", []string{"back", "biceps"}},
	{"curl", []string{"biceps"}},
	{"pushdown", []string{"triceps"}},
	{"triceps", []string{"triceps"}},
	{"skull", []string{"triceps"}},
}

// MuscleGroups guesses the muscle groups an exercise trains from its name.
// Unknown exercises train no tracked muscle group.
func MuscleGroups(name string) []string {
	lower := strings.ToLower(name)
	for _, k := range muscleKeywords {
		if strings.Contains(lower, k.fragment) {
			return append([]string(nil), k.muscles...)
		}
	}
	return []string{}
}

// Workout converts a parsed session to a completed workout. IDs are derived
// from the user, start time and session name.
func (s Session) Workout(userID int) models.Workout {
	id := uuid.NewSHA1(importNamespace,
		[]byte(fmt.Sprintf("%d|%s|%s", userID, s.StartedAt.UTC().Format(time.RFC3339), s.Name)))
	completed := s.StartedAt.Add(s.Duration)

	w := models.Workout{
		ID:          id,
		UserID:      userID,
		Name:        s.Name,
		StartedAt:   s.StartedAt,
		CompletedAt: &completed,
		Exercises:   make([]models.WorkoutExercise, 0, len(s.Exercises)),
	}
	for i, ex := range s.Exercises {
		we := models.WorkoutExercise{
			ID:    uuid.NewSHA1(id, []byte(fmt.Sprintf("exercise|%d|%d", i, ex.Number))),
			Order: i,
			Exercise: models.Exercise{
				Name:         ex.Name,
				Category:     "strength",
				MuscleGroups: MuscleGroups(ex.Name),
				Equipment:    ex.Equipment,
				Type:         models.ExerciseStrength,
			},
			Sets: make([]models.Set, 0, len(ex.Sets)),
		}
		for j, set := range ex.Sets {
			we.Sets = append(we.Sets, set.toModel(uuid.NewSHA1(we.ID, []byte(fmt.Sprintf("set|%d", j)))))
		}
		w.Exercises = append(w.Exercises, we)
	}
	return w
}

func (s Set) toModel(id uuid.UUID) models.Set {
	out := models.Set{
		ID:         id,
		Reps:       formula.Ptr(s.Reps),
		Weight:     formula.Ptr(s.Weight),
		WeightUnit: models.UnitKg,
		Type:       models.SetNormal,
		Completed:  true,
	}
	switch {
	case s.Warmup:
		out.Type = models.SetWarmup
	case s.RIR != nil && *s.RIR <= 0:
		out.Type = models.SetFailure
	}
	if !s.Warmup {
		out.RPE = rpeFromRIR(s.RIR)
	}
	return out
}

// rpeFromRIR maps reps in reserve to RPE (10 − RIR). Values that fall
// below the RPE scale are dropped.
func rpeFromRIR(rir *float64) *float64 {
	if rir == nil {
		return nil
	}
	rpe := maxRPE - *rir
	if rpe > maxRPE {
		rpe = maxRPE
	}
	if rpe < minRPE {
		return nil
	}
	return &rpe
}
