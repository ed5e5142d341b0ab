package api

import (
	"net/http"

	"github.com/mmynk/hisaab/internal/middleware"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Dashboard(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGroupOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.reports.GroupOverview(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
