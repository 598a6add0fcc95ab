package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type askRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("ask request", zap.String("query", req.Query))
	answer, err := s.assistant.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("answer failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

// handleRebuild kicks off a background rebuild. A rebuild already in
// flight is reported with 202 and not restarted.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if _, _, rebuilding := s.assistant.RebuildProgress(); rebuilding {
		s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "already_running"})
		return
	}
	go func() {
		// Detached from the request context so the rebuild survives the
		// response.
		started, err := s.assistant.RebuildIndex(context.Background(), nil)
		if err != nil {
			s.logger.Error("rebuild failed", zap.Error(err))
			return
		}
		if started {
			s.logger.Info("rebuild finished")
		}
	}()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.assistant.IndexingStatus(r.Context())
	if err != nil {
		s.logger.Error("indexing status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleIndexProgress(w http.ResponseWriter, r *http.Request) {
	current, total, rebuilding := s.assistant.RebuildProgress()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"current":    current,
		"total":      total,
		"rebuilding": rebuilding,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
