package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/pocketledger/internal/service"
)

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	var req service.WalletInput
	if !decode(w, r, &req) {
		return
	}
	wallet, err := s.svc.Wallets.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wallet)
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.svc.Wallets.List(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(wallets))
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := s.svc.Wallets.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) updateWallet(w http.ResponseWriter, r *http.Request) {
	var req service.WalletUpdate
	if !decode(w, r, &req) {
		return
	}
	wallet, err := s.svc.Wallets.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) deleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Wallets.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listWalletTransactions lists a wallet's transactions, optionally bounded
// by start and end (RFC3339, both inclusive). Either bound alone is an error.
func (s *Server) listWalletTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		txns, err := s.svc.Transactions.ListByWallet(r.Context(), actorFrom(r), id)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list(txns))
		return
	}

	start, ok := queryTime(w, r, "start")
	if !ok {
		return
	}
	end, ok := queryTime(w, r, "end")
	if !ok {
		return
	}
	txns, err := s.svc.Transactions.ListByWalletAndDateRange(r.Context(), actorFrom(r), id, start, end)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(txns))
}
