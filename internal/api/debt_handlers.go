package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/hisaab/internal/middleware"
	"github.com/mmynk/hisaab/internal/service"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.debts.ListDebts(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var in service.CreateDebtInput
	if !decodeBody(w, r, &in) {
		return
	}

	debt, err := s.debts.CreateDebt(r.Context(), middleware.GetIdentity(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (s *Server) handleGetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := s.debts.GetDebt(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateDebtInput
	if !decodeBody(w, r, &in) {
		return
	}

	debt, err := s.debts.UpdateDebt(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.debts.DeleteDebt(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentInput
	if !decodeBody(w, r, &in) {
		return
	}

	debt, err := s.debts.RecordPayment(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}
