package alpha

import "time"

// Session is one workout from an Alpha Progression CSV export.
type Session struct {
	Name         string
	StartedAt    time.Time
	Duration     time.Duration
	DurationText string
	Exercises    []Exercise
}

// Exercise is one numbered exercise block within a session.
type Exercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Modifiers  string
	Sets       []Set
}

// Set is a warmup or working set. Weight is the added load for
// bodyweight-plus exercises.
type Set struct {
	Number         int
	Weight         float64
	BodyweightPlus bool
	Reps           int
	RIR            *float64
	Warmup         bool
}
