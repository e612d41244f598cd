package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/pocketledger/internal/service"
)

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.TransactionInput
	if !decode(w, r, &req) {
		return
	}
	txn, err := s.svc.Transactions.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.svc.Transactions.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.TransactionInput
	if !decode(w, r, &req) {
		return
	}
	txn, err := s.svc.Transactions.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
