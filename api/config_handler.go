package api

import (
	"net/http"

	"github.com/lightscameradata/boxoffice/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config  *config.Config        `json:"config"`
	Sources []config.SourceStatus `json:"sources"`
}

// handleGetConfig returns the running configuration and where each chart
// reads its data from. URL credentials are masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:  s.cfg.Redacted(),
			Sources: config.CheckSources(s.cfg),
		},
	})
}
