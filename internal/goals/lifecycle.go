package goals

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// Action is an explicit goal status change.
type Action string

const (
	ActionComplete Action = "complete"
	ActionAbandon  Action = "abandon"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
)

type edge struct {
	from   models.GoalStatus
	action Action
}

var transitions = map[edge]models.GoalStatus{
	{models.GoalActive, ActionComplete}: models.GoalCompleted,
	{models.GoalActive, ActionAbandon}:  models.GoalAbandoned,
	{models.GoalPaused, ActionAbandon}:  models.GoalAbandoned,
	{models.GoalActive, ActionPause}:    models.GoalPaused,
	{models.GoalPaused, ActionResume}:   models.GoalActive,
}

// Repeating a terminal action on its own terminal state changes nothing.
var noops = map[edge]bool{
	{models.GoalCompleted, ActionComplete}: true,
	{models.GoalAbandoned, ActionAbandon}:  true,
}

// Transition returns the status reached by applying a to from. changed is
// false for an idempotent repeat. Any other move fails with
// ErrInvalidTransition.
func Transition(from models.GoalStatus, a Action) (to models.GoalStatus, changed bool, err error) {
	if next, ok := transitions[edge{from, a}]; ok {
		return next, true, nil
	}
	if noops[edge{from, a}] {
		return from, false, nil
	}
	return from, false, fmt.Errorf("cannot %s a %s goal: %w", a, from, models.ErrInvalidTransition)
}
