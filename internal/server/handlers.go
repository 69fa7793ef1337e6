package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.parseTimeRange(r, 7)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.svc.Store.ListWorkouts(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		s.writeError(w, "list workouts", err)
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

// handleLogWorkouts accepts one workout or an array of workouts.
func (s *Server) handleLogWorkouts(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var workouts []models.Workout
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &workouts); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	} else {
		var one models.Workout
		if err := json.Unmarshal(raw, &one); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		workouts = []models.Workout{one}
	}

	result, err := s.svc.Workouts.Log(r.Context(), userIDFromContext(r), workouts)
	if err != nil {
		s.writeError(w, "log workouts", err)
		return
	}
	s.observeIngest(result)
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	workout, err := s.svc.Store.GetWorkout(r.Context(), userIDFromContext(r), workoutID)
	if err != nil {
		s.writeError(w, "get workout", err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleEvaluateWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.svc.Records.EvaluateWorkout(r.Context(), userIDFromContext(r), workoutID)
	if err != nil {
		s.writeError(w, "evaluate workout", err)
		return
	}
	s.observeRecords(result.NewRecords)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.svc.Store.ListExercises(r.Context())
	if err != nil {
		s.writeError(w, "list exercises", err)
		return
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	e, err := s.svc.Store.GetExercise(r.Context(), exerciseID)
	if err != nil {
		s.writeError(w, "get exercise", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var exerciseID *uuid.UUID
	if v := r.URL.Query().Get("exercise_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise_id"})
			return
		}
		exerciseID = &id
	}

	recs, err := s.svc.Records.List(r.Context(), userIDFromContext(r), exerciseID)
	if err != nil {
		s.writeError(w, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleSubmitRecord evaluates a manually entered performance such as a
// best time.
func (s *Server) handleSubmitRecord(w http.ResponseWriter, r *http.Request) {
	var c records.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if c.AchievedAt.IsZero() {
		c.AchievedAt = s.now()
	}

	result, err := s.svc.Records.Submit(r.Context(), userIDFromContext(r), c)
	if err != nil {
		s.writeError(w, "submit record", err)
		return
	}
	s.observeRecords(result.NewRecords)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) observeIngest(result *ingest.Result) {
	if s.metrics != nil {
		s.metrics.CounterImportedWorkouts.Add(float64(result.WorkoutsInserted))
	}
	s.observeRecords(result.NewRecords)
}

func (s *Server) observeRecords(recs []records.NewRecord) {
	if s.metrics == nil {
		return
	}
	for _, nr := range recs {
		s.metrics.CounterRecordsSet.WithLabelValues(string(nr.Type)).Inc()
	}
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrDomainRange):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.log.Error(op+" failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// parseFlexTime accepts RFC3339 or a bare date in loc. dateOnly reports
// which form matched.
func parseFlexTime(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// parseTimeRange reads start/end as a half-open range. A date-only end
// covers the whole day. Without start the range is the last days days.
func (s *Server) parseTimeRange(r *http.Request, days int) (start, end time.Time, err error) {
	loc := s.svc.Summaries.Location()
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if endStr == "" {
		end = s.now()
	} else {
		var dateOnly bool
		end, dateOnly, err = parseFlexTime(endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dateOnly {
			// End of day for date-only
			end = end.AddDate(0, 0, 1)
		}
	}

	if startStr == "" {
		start = end.AddDate(0, 0, -days)
		return start, end, nil
	}
	start, _, err = parseFlexTime(startStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseDayRange reads start/end as inclusive days for the engines that work
// on calendar periods.
func (s *Server) parseDayRange(r *http.Request, days int) (start, last time.Time, err error) {
	start, end, err := s.parseTimeRange(r, days)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end.Add(-time.Nanosecond), nil
}
