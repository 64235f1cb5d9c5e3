package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	enricher := s.orchestrator.Enricher()
	if enricher == nil {
		jsonError(w, "enrichment disabled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": enricher.Model(),
		"stats": enricher.Stats().Snapshot(),
	})
}
