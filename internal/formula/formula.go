// Package formula holds the stateless numeric functions shared by every
// analytics module. All math is float64; Round is the only rounding rule.
package formula

import "math"

// OneRepMaxFormula selects a 1RM estimator.
type OneRepMaxFormula string

const (
	// Epley: weight × (1 + reps/30). Used for personal record detection.
	Epley OneRepMaxFormula = "epley"
	// Brzycki: weight × 36 / (37 − reps). Used for exercise progression.
	Brzycki OneRepMaxFormula = "brzycki"
)

// brzyckiMaxReps keeps the Brzycki denominator positive.
const brzyckiMaxReps = 36

// ParseOneRepMaxFormula maps a config or query string to a formula,
// defaulting to Epley.
func ParseOneRepMaxFormula(s string) OneRepMaxFormula {
	if OneRepMaxFormula(s) == Brzycki {
		return Brzycki
	}
	return Epley
}

// EstimateOneRepMax estimates the one-repetition maximum for weight lifted
// for reps. A single rep returns the weight unchanged under either formula;
// non-positive inputs return 0.
func EstimateOneRepMax(weight float64, reps int, f OneRepMaxFormula) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	switch f {
	case Brzycki:
		if reps > brzyckiMaxReps {
			reps = brzyckiMaxReps
		}
		return weight * (36 / float64(37-reps))
	default:
		return weight * (1 + float64(reps)/30)
	}
}

// Volume returns weight × reps, or 0 when either operand is absent.
func Volume(weight *float64, reps *int) float64 {
	if weight == nil || reps == nil {
		return 0
	}
	return *weight * float64(*reps)
}

// PercentChange returns ((last − first) / first) × 100 rounded to two
// decimals. A zero baseline yields 0.
func PercentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return Round((last-first)/first*100, 2)
}

// Weighted is one input to WeightedComposite. A nil Value is absent.
type Weighted struct {
	Value  *float64
	Weight float64
}

// WeightedComposite returns Σ(value × weight) / Σ(weight) over the present
// inputs. The second result is false when no input is present, in which
// case there is no composite.
func WeightedComposite(scores map[string]Weighted) (float64, bool) {
	var sum, weights float64
	for _, s := range scores {
		if s.Value == nil {
			continue
		}
		sum += *s.Value * s.Weight
		weights += s.Weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Mean returns the arithmetic mean of values, or false when empty.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
