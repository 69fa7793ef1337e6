package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/summary"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	return timeRangeDays(startStr, endStr, 7)
}

// timeRangeDays parses start/end. A missing end is now and a missing start is
// days before end.
func timeRangeDays(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func toolJSON(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

// --- Tool definitions ---

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("List the user's current personal records (estimated 1RM, max weight, max reps, max set volume, best time, longest duration/distance). One record per exercise and record type."),
	mcp.WithString("exercise", mcp.Description("Exercise name or ID. Omit for all exercises.")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Compute the weekly or monthly training summary containing a date: workout counts, duration, sets, reps, volume, volume and sets by muscle group, PRs achieved, average RPE and consistency."),
	mcp.WithString("period", mcp.Description("Period type. Defaults to 'week'."), mcp.Enum("week", "month")),
	mcp.WithString("date", mcp.Description("Any date inside the period (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
)

var toolGetSummaryHistory = mcp.NewTool("get_summary_history",
	mcp.WithDescription("Previously generated training summaries, newest first."),
	mcp.WithString("period", mcp.Description("Period type. Defaults to 'week'."), mcp.Enum("week", "month")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of summaries. Defaults to 12.")),
)

var toolComparePeriods = mcp.NewTool("compare_periods",
	mcp.WithDescription("Compare training between two periods and report percentage changes in volume, workout count and average duration. Either give a period type (compares the period containing 'date' with the one before it) or four explicit dates."),
	mcp.WithString("period", mcp.Description("Period type for a this-vs-previous comparison."), mcp.Enum("week", "month")),
	mcp.WithString("date", mcp.Description("Any date inside the current period. Defaults to today.")),
	mcp.WithString("baseline_start", mcp.Description("Baseline period start date")),
	mcp.WithString("baseline_end", mcp.Description("Baseline period end date (inclusive)")),
	mcp.WithString("current_start", mcp.Description("Current period start date")),
	mcp.WithString("current_end", mcp.Description("Current period end date (inclusive)")),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Daily and weekly training streaks: the run ending at the most recent active period, whether it is still open, the longest run ever, plus the share of recent weeks with at least one completed workout."),
	mcp.WithNumber("weeks", mcp.Description("Weeks for the consistency percentage. Defaults to 4.")),
)

var toolGetMuscleVolume = mcp.NewTool("get_muscle_volume",
	mcp.WithDescription("Per-muscle-group volume, set count and exercise count, grouped by calendar week."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 28 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetProgression = mcp.NewTool("get_exercise_progression",
	mcp.WithDescription("Session-by-session best estimated 1RM for one exercise and the percentage change over the range."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or ID")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetReadiness = mcp.NewTool("get_readiness",
	mcp.WithDescription("Today's 0-100 training readiness score from the latest check-in and muscle recovery, with per-factor scores and a recommendation."),
)

var toolGetMuscleRecovery = mcp.NewTool("get_muscle_recovery",
	mcp.WithDescription("Recovery score, fatigue, sets and volume in the last 7 days and estimated full recovery time per muscle group."),
)

var toolListGoals = mcp.NewTool("list_goals",
	mcp.WithDescription("List goals with their type, direction, status, cached progress percentage and payload."),
	mcp.WithString("status", mcp.Description("Filter by status"), mcp.Enum("active", "completed", "abandoned", "paused")),
)

var toolGetGoalHistory = mcp.NewTool("get_goal_history",
	mcp.WithDescription("Append-only progress history of one goal, oldest first."),
	mcp.WithString("goal_id", mcp.Required(), mcp.Description("Goal ID")),
)

var toolRecordGoalProgress = mcp.NewTool("record_goal_progress",
	mcp.WithDescription("Record a new current value for an active goal. Returns the updated goal, the history entry, and whether the goal auto-completed."),
	mcp.WithString("goal_id", mcp.Required(), mcp.Description("Goal ID")),
	mcp.WithNumber("value", mcp.Description("New current value (weight, measurement, custom metric or sessions per week)")),
	mcp.WithNumber("reps", mcp.Description("New current reps for rep-based strength goals")),
	mcp.WithString("note", mcp.Description("Optional note stored with the entry")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Logged workouts with exercises and sets (weight, reps, RPE, set type)."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetTrainingIntensity = mcp.NewTool("get_training_intensity",
	mcp.WithDescription("RPE distribution, failure rate and per-exercise working-set stats."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

// resolveExercise accepts an exercise ID or a name. Names match case
// insensitively, first exactly and then as a unique substring.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	id, err := h.matchExercise(ctx, ref)
	if errors.Is(err, errNoExercise) {
		// The exercise may have been logged since the catalog was cached.
		h.catalog.invalidate()
		id, err = h.matchExercise(ctx, ref)
	}
	if errors.Is(err, errNoExercise) {
		return uuid.Nil, fmt.Errorf("no exercise matches %q", ref)
	}
	return id, err
}

var errNoExercise = errors.New("no matching exercise")

func (h *handlers) matchExercise(ctx context.Context, ref string) (uuid.UUID, error) {
	exercises, err := h.catalog.exercises(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	var partial []models.Exercise
	for _, e := range exercises {
		if strings.EqualFold(e.Name, ref) {
			return e.ID, nil
		}
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(ref)) {
			partial = append(partial, e)
		}
	}
	switch len(partial) {
	case 1:
		return partial[0].ID, nil
	case 0:
		return uuid.Nil, errNoExercise
	default:
		names := make([]string, len(partial))
		for i, e := range partial {
			names[i] = e.Name
		}
		return uuid.Nil, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(names, ", "))
	}
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var exerciseID *uuid.UUID
	if ref := req.GetString("exercise", ""); ref != "" {
		id, err := h.resolveExercise(ctx, ref)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		exerciseID = &id
	}

	recs, err := h.ds.PersonalRecords(ctx, UserIDFromContext(ctx), exerciseID)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(recs), nil
}

func (h *handlers) periodAndDate(req mcp.CallToolRequest) (models.PeriodType, time.Time, error) {
	pt, err := summary.ParsePeriodType(req.GetString("period", string(models.PeriodWeek)))
	if err != nil {
		return "", time.Time{}, err
	}
	ref := h.now()
	if s := req.GetString("date", ""); s != "" {
		ref, err = parseFlexTime(s)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("invalid date format: %w", err)
		}
	}
	return pt, ref, nil
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pt, ref, err := h.periodAndDate(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s, err := h.ds.TrainingSummary(ctx, UserIDFromContext(ctx), pt, ref)
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(s), nil
}

func (h *handlers) getSummaryHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pt, err := summary.ParsePeriodType(req.GetString("period", string(models.PeriodWeek)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 12)
	if limit <= 0 {
		limit = 12
	}

	history, err := h.ds.SummaryHistory(ctx, UserIDFromContext(ctx), pt, limit)
	if err != nil {
		h.log.Error("mcp get_summary_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(history), nil
}

func (h *handlers) comparePeriods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	explicit := []string{
		req.GetString("baseline_start", ""),
		req.GetString("baseline_end", ""),
		req.GetString("current_start", ""),
		req.GetString("current_end", ""),
	}
	given := 0
	for _, s := range explicit {
		if s != "" {
			given++
		}
	}

	switch given {
	case 0:
		pt, ref, err := h.periodAndDate(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := h.ds.ComparePrevious(ctx, uid, pt, ref)
		if err != nil {
			h.log.Error("mcp compare_periods", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return toolJSON(c), nil
	case len(explicit):
		var ts [4]time.Time
		for i, s := range explicit {
			t, err := parseFlexTime(s)
			if err != nil {
				return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
			}
			ts[i] = t
		}
		c, err := h.ds.CompareRanges(ctx, uid, ts[0], ts[1], ts[2], ts[3])
		if err != nil {
			h.log.Error("mcp compare_periods", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return toolJSON(c), nil
	default:
		return mcp.NewToolResultError("baseline_start, baseline_end, current_start and current_end must be given together"), nil
	}
}

func (h *handlers) getStreaks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := req.GetInt("weeks", 4)
	if weeks <= 0 {
		weeks = 4
	}

	report, err := h.ds.Streaks(ctx, UserIDFromContext(ctx), weeks)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(report), nil
}

func (h *handlers) getMuscleVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRangeDays(req.GetString("start", ""), req.GetString("end", ""), 28)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	weeks, err := h.ds.MuscleVolume(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_muscle_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(weeks), nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	exerciseID, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start, end, err := timeRangeDays(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	prog, err := h.ds.Progression(ctx, UserIDFromContext(ctx), exerciseID, start, end)
	if err != nil {
		h.log.Error("mcp get_exercise_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(prog), nil
}

func (h *handlers) getReadiness(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.ds.Readiness(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_readiness", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(result), nil
}

func (h *handlers) getMuscleRecovery(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.MuscleRecovery(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_muscle_recovery", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(rows), nil
}

func (h *handlers) listGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status *models.GoalStatus
	if s := req.GetString("status", ""); s != "" {
		st := models.GoalStatus(s)
		status = &st
	}

	list, err := h.ds.Goals(ctx, UserIDFromContext(ctx), status)
	if err != nil {
		h.log.Error("mcp list_goals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(list), nil
}

func (h *handlers) getGoalHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("goal_id")
	if err != nil {
		return mcp.NewToolResultError("goal_id parameter is required"), nil
	}
	goalID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid goal_id"), nil
	}

	history, err := h.ds.GoalHistory(ctx, UserIDFromContext(ctx), goalID)
	if err != nil {
		h.log.Error("mcp get_goal_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(history), nil
}

func (h *handlers) recordGoalProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("goal_id")
	if err != nil {
		return mcp.NewToolResultError("goal_id parameter is required"), nil
	}
	goalID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid goal_id"), nil
	}

	args := req.GetArguments()
	u := goals.Update{Note: req.GetString("note", "")}
	if _, ok := args["value"]; ok {
		v := req.GetFloat("value", 0)
		u.Value = &v
	}
	if _, ok := args["reps"]; ok {
		r := req.GetInt("reps", 0)
		u.Reps = &r
	}
	if u.Value == nil && u.Reps == nil {
		return mcp.NewToolResultError("value or reps is required"), nil
	}

	result, err := h.ds.RecordGoalProgress(ctx, UserIDFromContext(ctx), goalID, u)
	if err != nil {
		h.log.Error("mcp record_goal_progress", "error", err)
		return mcp.NewToolResultError("update failed: " + err.Error()), nil
	}
	return toolJSON(result), nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.Workouts(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(workouts), nil
}

func (h *handlers) getTrainingIntensity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := timeRangeDays(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	intensity, err := h.ds.TrainingIntensity(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_training_intensity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(intensity), nil
}
