package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.*)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// 1:02 hr, 45 min
	hoursRe   = regexp.MustCompile(`^(\d+):(\d{2})\s*hr?$`)
	minutesRe = regexp.MustCompile(`^(\d+)\s*min$`)
)

const columnHeader = "#;KG;REPS;RIR"

// parser accumulates sessions line by line.
type parser struct {
	loc      *time.Location
	sessions []Session
	session  *Session
	exercise *Exercise
}

// Parse reads an Alpha Progression CSV export. Session times carry no zone
// and are interpreted in loc. Unrecognised lines are ignored.
func Parse(r io.Reader, loc *time.Location) ([]Session, error) {
	if loc == nil {
		loc = time.UTC
	}
	p := &parser{loc: loc}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.closeSession()
		return nil
	case line == columnHeader:
		return nil
	}

	if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
		p.closeSession()
		started, err := parseSessionTime(m[2], p.loc)
		if err != nil {
			return err
		}
		p.session = &Session{
			Name:         m[1],
			StartedAt:    started,
			Duration:     parseDuration(m[3]),
			DurationText: m[3],
		}
		return nil
	}

	if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
		if p.session == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		p.closeExercise()
		num, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[4])
		p.exercise = &Exercise{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Modifiers:  strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[5]), "·")),
		}
		if m[6] != "" {
			p.exercise.Sets = append(p.exercise.Sets, parseWarmups(m[6])...)
		}
		return nil
	}

	if m := setRowRe.FindStringSubmatch(line); m != nil {
		if p.exercise == nil {
			return fmt.Errorf("set data without exercise: %q", line)
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		p.exercise.Sets = append(p.exercise.Sets, Set{
			Number:         num,
			Weight:         weight,
			BodyweightPlus: bw,
			Reps:           reps,
			RIR:            parseRIR(m[4]),
		})
	}
	return nil
}

func (p *parser) closeExercise() {
	if p.exercise != nil && p.session != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) closeSession() {
	p.closeExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// parseSessionTime accepts both "2026-02-19 4:54" and "2026-02-19 16:54".
func parseSessionTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse session time %q", s)
}

// parseDuration converts "1:02 hr" or "45 min" to a duration, 0 if unknown.
func parseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return time.Duration(mins) * time.Minute
	}
	return 0
}

// parseWarmups extracts warmup sets from the header's second field.
// Example: "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
func parseWarmups(s string) []Set {
	var sets []Set
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{
			Number:         num,
			Weight:         weight,
			BodyweightPlus: bw,
			Reps:           reps,
			Warmup:         true,
		})
	}
	return sets
}

// parseWeight handles European decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseDecimal(rest), true
	}
	return parseDecimal(s), false
}

// parseRIR returns nil for an empty or untracked cell.
func parseRIR(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	v := parseDecimal(s)
	return &v
}

// parseDecimal converts a comma-decimal string: "102,5" -> 102.5.
func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
