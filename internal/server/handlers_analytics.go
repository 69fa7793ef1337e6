package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/summary"
	"github.com/go-chi/chi/v5"
)

// periodAndRef reads the {period} path value and the optional date query.
func (s *Server) periodAndRef(w http.ResponseWriter, r *http.Request) (models.PeriodType, time.Time, bool) {
	pt, err := summary.ParsePeriodType(chi.URLParam(r, "period"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", time.Time{}, false
	}
	ref := s.now()
	if v := r.URL.Query().Get("date"); v != "" {
		ref, _, err = parseFlexTime(v, s.svc.Summaries.Location())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
			return "", time.Time{}, false
		}
	}
	return pt, ref, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	pt, ref, ok := s.periodAndRef(w, r)
	if !ok {
		return
	}

	sum, err := s.svc.Summaries.Generate(r.Context(), userIDFromContext(r), pt, ref)
	if err != nil {
		s.writeError(w, "generate summary", err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterSummariesGenerated.WithLabelValues(string(pt)).Inc()
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSummaryHistory(w http.ResponseWriter, r *http.Request) {
	pt, err := summary.ParsePeriodType(chi.URLParam(r, "period"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	history, err := s.svc.Summaries.History(r.Context(), userIDFromContext(r), pt, queryInt(r, "limit", 12))
	if err != nil {
		s.writeError(w, "summary history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleComparePrevious(w http.ResponseWriter, r *http.Request) {
	pt, ref, ok := s.periodAndRef(w, r)
	if !ok {
		return
	}

	c, err := s.svc.Summaries.ComparePrevious(r.Context(), userIDFromContext(r), pt, ref)
	if err != nil {
		s.writeError(w, "compare periods", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCompareRanges(w http.ResponseWriter, r *http.Request) {
	loc := s.svc.Summaries.Location()
	var ts [4]time.Time
	for i, key := range []string{"baseline_start", "baseline_end", "current_start", "current_end"} {
		v := r.URL.Query().Get(key)
		if v == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": key + " parameter required"})
			return
		}
		t, _, err := parseFlexTime(v, loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + key + ": " + err.Error()})
			return
		}
		ts[i] = t
	}

	baseline, err := summary.CustomPeriod(ts[0], ts[1], loc)
	if err != nil {
		s.writeError(w, "compare periods", err)
		return
	}
	current, err := summary.CustomPeriod(ts[2], ts[3], loc)
	if err != nil {
		s.writeError(w, "compare periods", err)
		return
	}

	c, err := s.svc.Summaries.Compare(r.Context(), userIDFromContext(r), baseline, current)
	if err != nil {
		s.writeError(w, "compare periods", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Summaries.Streaks(r.Context(), userIDFromContext(r), s.now(), queryInt(r, "weeks", 4))
	if err != nil {
		s.writeError(w, "streaks", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMuscleVolume(w http.ResponseWriter, r *http.Request) {
	start, last, err := s.parseDayRange(r, 28)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	weeks, err := s.svc.Summaries.MuscleVolume(r.Context(), userIDFromContext(r), start, last)
	if err != nil {
		s.writeError(w, "muscle volume", err)
		return
	}
	if weeks == nil {
		weeks = []summary.WeekMuscleVolume{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	start, last, err := s.parseDayRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	prog, err := s.svc.Summaries.Progression(r.Context(), userIDFromContext(r), exerciseID, start, last)
	if err != nil {
		s.writeError(w, "progression", err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleTrainingIntensity(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.parseTimeRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.svc.Store.GetTrainingIntensity(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		s.writeError(w, "training intensity", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Readiness.Readiness(r.Context(), userIDFromContext(r), s.now())
	if err != nil {
		s.writeError(w, "readiness", err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterReadiness.Inc()
		s.metrics.HistReadinessScore.Observe(float64(result.Score))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var c models.DailyCheckIn
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	c.UserID = userIDFromContext(r)

	saved, err := s.svc.Readiness.CheckIn(r.Context(), c, s.now())
	if err != nil {
		s.writeError(w, "check-in", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleRecovery(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Readiness.Recovery(r.Context(), userIDFromContext(r), s.now())
	if err != nil {
		s.writeError(w, "recovery", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRefreshRecovery(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Readiness.RefreshRecovery(r.Context(), userIDFromContext(r), s.now())
	if err != nil {
		s.writeError(w, "refresh recovery", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
