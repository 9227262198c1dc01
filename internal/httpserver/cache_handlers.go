package httpserver

import (
	"net/http"
)

// handleClear handles cache invalidation requests
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req ClearCacheRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Pattern == nil {
		s.writeErrorResponse(w, "Missing required field: pattern", http.StatusBadRequest)
		return
	}

	removed := s.cacheService.ClearCache(*req.Pattern)

	s.writeResponse(w, &ClearCacheResponse{
		Success: true,
		Pattern: *req.Pattern,
		Removed: removed,
	})
}

// handleStats reports cache size, in-flight computations and mounts
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cacheService.Stats()

	resp := &StatsResponse{
		Entries: stats.Entries,
		Mounts:  []MountInfo{},
	}
	if s.dedup != nil {
		resp.Pending = s.dedup.Pending()
	}
	if s.classifier != nil {
		for _, m := range s.classifier.Mounts() {
			resp.Mounts = append(resp.Mounts, MountInfo{
				Prefix:          m.Prefix,
				FreshnessWindow: m.FreshnessWindow.String(),
				Bypass:          m.Bypass,
			})
		}
	}

	s.writeResponse(w, resp)
}
