package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/hisaab/internal/middleware"
	"github.com/mmynk/hisaab/internal/models"
	"github.com/mmynk/hisaab/internal/service"
)

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var in service.CreateGroupInput
	if !decodeBody(w, r, &in) {
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.GetIdentity(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateGroupInput
	if !decodeBody(w, r, &in) {
		return
	}

	group, err := s.groups.UpdateGroup(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group, err := s.groups.AddMember(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type addExpenseResponse struct {
	Group   *models.Group   `json:"group"`
	Expense *models.Expense `json:"expense"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in service.AddExpenseInput
	if !decodeBody(w, r, &in) {
		return
	}

	group, expense, err := s.groups.AddExpense(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addExpenseResponse{Group: group, Expense: expense})
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group.Members)
}

func (s *Server) handleAuditBalances(w http.ResponseWriter, r *http.Request) {
	audit, err := s.groups.AuditBalances(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}
