package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GoalType tags which payload a goal carries.
type GoalType string

const (
	GoalWeight          GoalType = "weight"
	GoalStrength        GoalType = "strength"
	GoalBodyMeasurement GoalType = "body_measurement"
	GoalFrequency       GoalType = "workout_frequency"
	GoalCustom          GoalType = "custom"
)

// GoalDirection says which way the tracked value should move.
type GoalDirection string

const (
	DirectionIncrease GoalDirection = "increase"
	DirectionDecrease GoalDirection = "decrease"
	DirectionMaintain GoalDirection = "maintain"
)

// IsValid reports whether d is a known direction.
func (d GoalDirection) IsValid() bool {
	return d == DirectionIncrease || d == DirectionDecrease || d == DirectionMaintain
}

// GoalStatus is a lifecycle state. Completed and abandoned are terminal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
	GoalPaused    GoalStatus = "paused"
)

// IsTerminal reports whether no further transitions leave this state.
func (s GoalStatus) IsTerminal() bool {
	return s == GoalCompleted || s == GoalAbandoned
}

// Valid reports whether s is a known status.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalAbandoned, GoalPaused:
		return true
	}
	return false
}

// MeasurementSite is one of the fixed body measurement locations.
type MeasurementSite string

const (
	SiteNeck         MeasurementSite = "neck"
	SiteShoulders    MeasurementSite = "shoulders"
	SiteChest        MeasurementSite = "chest"
	SiteWaist        MeasurementSite = "waist"
	SiteHips         MeasurementSite = "hips"
	SiteLeftBicep    MeasurementSite = "left_bicep"
	SiteRightBicep   MeasurementSite = "right_bicep"
	SiteLeftForearm  MeasurementSite = "left_forearm"
	SiteRightForearm MeasurementSite = "right_forearm"
	SiteLeftThigh    MeasurementSite = "left_thigh"
	SiteRightThigh   MeasurementSite = "right_thigh"
	SiteCalves       MeasurementSite = "calves"
)

var measurementSites = map[MeasurementSite]bool{
	SiteNeck: true, SiteShoulders: true, SiteChest: true, SiteWaist: true,
	SiteHips: true, SiteLeftBicep: true, SiteRightBicep: true, SiteLeftForearm: true,
	SiteRightForearm: true, SiteLeftThigh: true, SiteRightThigh: true, SiteCalves: true,
}

// GoalPayload is the archetype-specific part of a goal.
type GoalPayload interface {
	GoalType() GoalType
	Validate() error
}

// WeightGoal tracks body weight.
type WeightGoal struct {
	Start   float64 `json:"start"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Unit    string  `json:"unit"`
}

func (WeightGoal) GoalType() GoalType { return GoalWeight }

func (g WeightGoal) Validate() error {
	if g.Start <= 0 || g.Target <= 0 || g.Current < 0 {
		return fmt.Errorf("weight goal values must be positive: %w", ErrDomainRange)
	}
	if g.Unit != UnitKg && g.Unit != UnitLb {
		return fmt.Errorf("weight goal unit %q: %w", g.Unit, ErrDomainRange)
	}
	return nil
}

// StrengthGoal tracks a lift by weight, by reps, or by both.
type StrengthGoal struct {
	ExerciseID    *uuid.UUID `json:"exercise_id,omitempty"`
	StartWeight   *float64   `json:"start_weight,omitempty"`
	CurrentWeight *float64   `json:"current_weight,omitempty"`
	TargetWeight  *float64   `json:"target_weight,omitempty"`
	StartReps     *int       `json:"start_reps,omitempty"`
	CurrentReps   *int       `json:"current_reps,omitempty"`
	TargetReps    *int       `json:"target_reps,omitempty"`
	Unit          string     `json:"unit,omitempty"`
}

func (StrengthGoal) GoalType() GoalType { return GoalStrength }

// HasWeight reports whether the weight component is fully specified.
func (g StrengthGoal) HasWeight() bool {
	return g.StartWeight != nil && g.CurrentWeight != nil && g.TargetWeight != nil
}

// HasReps reports whether the rep component is fully specified.
func (g StrengthGoal) HasReps() bool {
	return g.StartReps != nil && g.CurrentReps != nil && g.TargetReps != nil
}

func (g StrengthGoal) Validate() error {
	if !g.HasWeight() && !g.HasReps() {
		return fmt.Errorf("strength goal needs a weight or rep target: %w", ErrDomainRange)
	}
	for _, v := range []*float64{g.StartWeight, g.CurrentWeight, g.TargetWeight} {
		if v != nil && *v < 0 {
			return fmt.Errorf("strength goal weight %v negative: %w", *v, ErrDomainRange)
		}
	}
	for _, v := range []*int{g.StartReps, g.CurrentReps, g.TargetReps} {
		if v != nil && *v < 0 {
			return fmt.Errorf("strength goal reps %d negative: %w", *v, ErrDomainRange)
		}
	}
	return nil
}

// MeasurementGoal tracks a body circumference.
type MeasurementGoal struct {
	Site    MeasurementSite `json:"site"`
	Start   float64         `json:"start"`
	Current float64         `json:"current"`
	Target  float64         `json:"target"`
	Unit    string          `json:"unit"`
}

func (MeasurementGoal) GoalType() GoalType { return GoalBodyMeasurement }

func (g MeasurementGoal) Validate() error {
	if !measurementSites[g.Site] {
		return fmt.Errorf("measurement site %q: %w", g.Site, ErrDomainRange)
	}
	if g.Unit != "cm" && g.Unit != "in" {
		return fmt.Errorf("measurement unit %q: %w", g.Unit, ErrDomainRange)
	}
	if g.Start <= 0 || g.Target <= 0 || g.Current < 0 {
		return fmt.Errorf("measurement values must be positive: %w", ErrDomainRange)
	}
	return nil
}

// FrequencyGoal tracks completed sessions per week.
type FrequencyGoal struct {
	StartPerWeek   int `json:"start_per_week"`
	CurrentPerWeek int `json:"current_per_week"`
	TargetPerWeek  int `json:"target_per_week"`
}

func (FrequencyGoal) GoalType() GoalType { return GoalFrequency }

func (g FrequencyGoal) Validate() error {
	t := g.TargetPerWeek
	if err := checkIntRange("target_per_week", &t, 1, 14); err != nil {
		return err
	}
	if g.StartPerWeek < 0 || g.CurrentPerWeek < 0 {
		return fmt.Errorf("sessions per week negative: %w", ErrDomainRange)
	}
	return nil
}

// CustomGoal tracks any user-named metric.
type CustomGoal struct {
	MetricName string  `json:"metric_name"`
	Unit       string  `json:"unit,omitempty"`
	Start      float64 `json:"start"`
	Current    float64 `json:"current"`
	Target     float64 `json:"target"`
}

func (CustomGoal) GoalType() GoalType { return GoalCustom }

func (g CustomGoal) Validate() error {
	if g.MetricName == "" {
		return fmt.Errorf("custom goal needs a metric name: %w", ErrDomainRange)
	}
	return nil
}

// Goal is the shared envelope; Payload carries the archetype fields.
type Goal struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             int           `json:"user_id"`
	Title              string        `json:"title"`
	Type               GoalType      `json:"goal_type"`
	Direction          GoalDirection `json:"direction"`
	Status             GoalStatus    `json:"status"`
	Deadline           *time.Time    `json:"deadline,omitempty"`
	ProgressPct        float64       `json:"progress_pct"`
	UpdateCount        int           `json:"update_count"`
	LastProgressUpdate *time.Time    `json:"last_progress_update,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	AbandonedAt        *time.Time    `json:"abandoned_at,omitempty"`
	AbandonReason      *string       `json:"abandon_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Payload            GoalPayload   `json:"-"`
}

type goalJSON struct {
	goalAlias
	Payload json.RawMessage `json:"payload"`
}

type goalAlias Goal

// MarshalJSON emits the payload under "payload" next to the envelope.
func (g Goal) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(g.Payload)
	if err != nil {
		return nil, fmt.Errorf("encoding goal payload: %w", err)
	}
	return json.Marshal(goalJSON{goalAlias: goalAlias(g), Payload: raw})
}

// UnmarshalJSON decodes the payload according to goal_type.
func (g *Goal) UnmarshalJSON(data []byte) error {
	var gj goalJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return err
	}
	*g = Goal(gj.goalAlias)
	if len(gj.Payload) == 0 || string(gj.Payload) == "null" {
		return nil
	}
	p, err := DecodeGoalPayload(g.Type, gj.Payload)
	if err != nil {
		return err
	}
	g.Payload = p
	return nil
}

// DecodeGoalPayload decodes raw JSON into the payload type named by t.
func DecodeGoalPayload(t GoalType, raw []byte) (GoalPayload, error) {
	var (
		p   GoalPayload
		err error
	)
	switch t {
	case GoalWeight:
		var v WeightGoal
		err = json.Unmarshal(raw, &v)
		p = v
	case GoalStrength:
		var v StrengthGoal
		err = json.Unmarshal(raw, &v)
		p = v
	case GoalBodyMeasurement:
		var v MeasurementGoal
		err = json.Unmarshal(raw, &v)
		p = v
	case GoalFrequency:
		var v FrequencyGoal
		err = json.Unmarshal(raw, &v)
		p = v
	case GoalCustom:
		var v CustomGoal
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown goal type %q: %w", t, ErrDomainRange)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", t, err)
	}
	return p, nil
}

// GoalProgress is one append-only history entry.
type GoalProgress struct {
	ID         uuid.UUID `json:"id"`
	GoalID     uuid.UUID `json:"goal_id"`
	Value      float64   `json:"value"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
