package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/claude/liftlog/internal/goals"
	"github.com/claude/liftlog/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	var status *models.GoalStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.GoalStatus(v)
		if !st.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status: " + v})
			return
		}
		status = &st
	}

	list, err := s.svc.Goals.List(r.Context(), userIDFromContext(r), status)
	if err != nil {
		s.writeError(w, "list goals", err)
		return
	}
	if list == nil {
		list = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g models.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	g.UserID = userIDFromContext(r)

	created, err := s.svc.Goals.Create(r.Context(), g)
	if err != nil {
		s.writeError(w, "create goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	g, err := s.svc.Goals.Get(r.Context(), userIDFromContext(r), goalID)
	if err != nil {
		s.writeError(w, "get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalHistory(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	history, err := s.svc.Goals.History(r.Context(), userIDFromContext(r), goalID)
	if err != nil {
		s.writeError(w, "goal history", err)
		return
	}
	if history == nil {
		history = []models.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var u goals.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.svc.Goals.RecordProgress(r.Context(), userIDFromContext(r), goalID, u)
	if err != nil {
		s.writeError(w, "record goal progress", err)
		return
	}
	s.observeAutoComplete(*result)
	writeJSON(w, http.StatusOK, result)
}

// handleGoalAction applies complete, abandon, pause or resume. Abandon takes
// an optional {"reason": "..."} body.
func (s *Server) handleGoalAction(w http.ResponseWriter, r *http.Request) {
	goalID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	uid := userIDFromContext(r)

	var (
		g   *models.Goal
		err error
	)
	switch goals.Action(chi.URLParam(r, "action")) {
	case goals.ActionComplete:
		g, err = s.svc.Goals.Complete(r.Context(), uid, goalID)
	case goals.ActionAbandon:
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		g, err = s.svc.Goals.Abandon(r.Context(), uid, goalID, body.Reason)
	case goals.ActionPause:
		g, err = s.svc.Goals.Pause(r.Context(), uid, goalID)
	case goals.ActionResume:
		g, err = s.svc.Goals.Resume(r.Context(), uid, goalID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown goal action: " + chi.URLParam(r, "action")})
		return
	}
	if err != nil {
		s.writeError(w, "goal "+chi.URLParam(r, "action"), err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterGoalTransitions.WithLabelValues(string(g.Status)).Inc()
	}
	writeJSON(w, http.StatusOK, g)
}

// handleSyncGoals recomputes frequency goals from logged workouts.
func (s *Server) handleSyncGoals(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Goals.SyncFrequency(r.Context(), userIDFromContext(r), s.now())
	if err != nil {
		s.writeError(w, "sync goals", err)
		return
	}
	if results == nil {
		results = []goals.ProgressResult{}
	}
	for _, res := range results {
		s.observeAutoComplete(res)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) observeAutoComplete(res goals.ProgressResult) {
	if s.metrics != nil && res.AutoCompleted {
		s.metrics.CounterGoalTransitions.WithLabelValues(string(models.GoalCompleted)).Inc()
	}
}
