package api

import (
	"encoding/json"
	"net/http"
)

// handleLLMStats reports extraction latency percentiles alongside current
// pipeline load, so a slow uncached page read can be attributed to the
// model or to queue pressure.
func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.claude == nil || s.claude.Stats == nil {
		jsonError(w, "extraction stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.claude.Model(),
		"extraction":  s.claude.Stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"documents":   len(s.registry.List()),
	})
}
