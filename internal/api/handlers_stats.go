package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleFetchStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "fetch stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content_root": s.cfg.ContentRoot,
		"stats":        s.stats.Snapshot(),
	})
}
