package summary

import (
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/formula"
	"github.com/claude/liftlog/internal/models"
)

// StreakUnit is the granularity a streak is counted in.
type StreakUnit string

const (
	StreakDay  StreakUnit = "day"
	StreakWeek StreakUnit = "week"
)

// Streak reports consecutive active periods. Current is the run ending at
// the most recent active period. Active is set while that run can still be
// extended: the latest active period is the present one or the one before.
// Longest is the longest run in the whole history.
type Streak struct {
	Unit       StreakUnit `json:"unit"`
	Current    int        `json:"current"`
	Longest    int        `json:"longest"`
	Active     bool       `json:"active"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// Streaks counts streaks over the start times of completed workouts.
func Streaks(active []time.Time, unit StreakUnit, now time.Time, loc *time.Location) (Streak, error) {
	step, key, err := streakKeyFunc(unit, loc)
	if err != nil {
		return Streak{}, err
	}
	st := Streak{Unit: unit}
	if len(active) == 0 {
		return st, nil
	}

	seen := make(map[int]bool, len(active))
	var keys []int
	var last time.Time
	for _, t := range active {
		if t.After(last) {
			last = t
		}
		k := key(t)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	lastLocal := last.In(loc)
	st.LastActive = &lastLocal

	run := 0
	for i, k := range keys {
		if i > 0 && k-keys[i-1] == step {
			run++
		} else {
			run = 1
		}
		if run > st.Longest {
			st.Longest = run
		}
	}

	latest := keys[len(keys)-1]
	for cur := latest; seen[cur]; cur -= step {
		st.Current++
	}
	st.Active = latest >= key(now)-step
	return st, nil
}

// Consistency returns the percentage of the last weeks calendar weeks,
// including the current one, that contain at least one completed workout.
func Consistency(active []time.Time, weeks int, now time.Time, loc *time.Location) float64 {
	if weeks <= 0 {
		return 0
	}
	_, key, _ := streakKeyFunc(StreakWeek, loc)
	seen := make(map[int]bool)
	for _, t := range active {
		seen[key(t)] = true
	}
	cur := key(now)
	hit := 0
	for i := 0; i < weeks; i++ {
		if seen[cur-7*i] {
			hit++
		}
	}
	return formula.Round(float64(hit)/float64(weeks)*100, 2)
}

func streakKeyFunc(unit StreakUnit, loc *time.Location) (int, func(time.Time) int, error) {
	switch unit {
	case StreakDay:
		return 1, func(t time.Time) int { return dayIndex(startOfDay(t, loc)) }, nil
	case StreakWeek:
		return 7, func(t time.Time) int { return dayIndex(startOfWeek(startOfDay(t, loc))) }, nil
	default:
		return 0, nil, fmt.Errorf("streak unit %q: %w", unit, models.ErrDomainRange)
	}
}
