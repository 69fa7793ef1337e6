package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store != nil {
		if err := s.svc.Store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Store.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, "data stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Store.QueryImportLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		s.writeError(w, "import logs", err)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleAlphaImport ingests an Alpha Progression CSV export sent as the
// request body.
func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Alpha.Ingest(r.Context(), r.Body, userIDFromContext(r))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.observeIngest(result)
	writeJSON(w, http.StatusOK, result)
}
