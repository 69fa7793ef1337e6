// Package summary rolls logged workouts up into weekly and monthly training
// summaries, streaks, period comparisons and per-exercise progression.
package summary

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Period is an inclusive date range. Start and End are local midnights of
// the first and last day.
type Period struct {
	Type  models.PeriodType `json:"period_type"`
	Start time.Time         `json:"start"`
	End   time.Time         `json:"end"`
}

// EndExclusive returns midnight after the last day, for half-open queries.
func (p Period) EndExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return dayIndex(p.End) - dayIndex(p.Start) + 1
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.EndExclusive())
}

// ParsePeriodType accepts "week" or "month".
func ParsePeriodType(s string) (models.PeriodType, error) {
	switch models.PeriodType(s) {
	case models.PeriodWeek, models.PeriodMonth:
		return models.PeriodType(s), nil
	default:
		return "", fmt.Errorf("period type %q: %w", s, models.ErrDomainRange)
	}
}

// Bounds returns the week (Monday to Sunday) or calendar month containing ref,
// evaluated in loc.
func Bounds(pt models.PeriodType, ref time.Time, loc *time.Location) (Period, error) {
	day := startOfDay(ref, loc)
	switch pt {
	case models.PeriodWeek:
		start := startOfWeek(day)
		return Period{Type: pt, Start: start, End: start.AddDate(0, 0, 6)}, nil
	case models.PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
		return Period{Type: pt, Start: start, End: start.AddDate(0, 1, -1)}, nil
	default:
		return Period{}, fmt.Errorf("period type %q: %w", pt, models.ErrDomainRange)
	}
}

// Previous returns the period of the same type immediately before p.
func Previous(p Period, loc *time.Location) (Period, error) {
	return Bounds(p.Type, p.Start.AddDate(0, 0, -1), loc)
}

// CustomPeriod spans the days from start to end inclusive.
func CustomPeriod(start, end time.Time, loc *time.Location) (Period, error) {
	s, e := startOfDay(start, loc), startOfDay(end, loc)
	if e.Before(s) {
		return Period{}, fmt.Errorf("period end %s before start %s: %w",
			e.Format(time.DateOnly), s.Format(time.DateOnly), models.ErrDomainRange)
	}
	return Period{Start: s, End: e}, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// startOfWeek returns the Monday on or before day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// dayIndex numbers calendar days so that consecutive dates differ by one
// regardless of DST transitions in the date's location.
func dayIndex(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
