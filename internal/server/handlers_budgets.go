package server

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
)

func statuses(budgets []ledger.Budget) []ledger.BudgetStatus {
	out := make([]ledger.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, b.Status())
	}
	return out
}

func (s *Server) writeBudgets(w http.ResponseWriter, r *http.Request, budgets []ledger.Budget, err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses(budgets))
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req service.BudgetInput
	if !decode(w, r, &req) {
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.Status())
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.List(r.Context(), actorFrom(r))
	s.writeBudgets(w, r, budgets, err)
}

// listActiveBudgets takes an optional date (YYYY-MM-DD, default today UTC).
func (s *Server) listActiveBudgets(w http.ResponseWriter, r *http.Request) {
	at := civil.DateOf(time.Now().UTC())
	if r.URL.Query().Get("date") != "" {
		var ok bool
		if at, ok = queryDate(w, r, "date"); !ok {
			return
		}
	}
	budgets, err := s.svc.Budgets.ListActive(r.Context(), actorFrom(r), at)
	s.writeBudgets(w, r, budgets, err)
}

func (s *Server) listBudgetsByCategory(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.ListByCategory(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	s.writeBudgets(w, r, budgets, err)
}

func (s *Server) listBudgetsByDateRange(w http.ResponseWriter, r *http.Request) {
	start, ok := queryDate(w, r, "start")
	if !ok {
		return
	}
	end, ok := queryDate(w, r, "end")
	if !ok {
		return
	}
	budgets, err := s.svc.Budgets.ListByDateRange(r.Context(), actorFrom(r), start, end)
	s.writeBudgets(w, r, budgets, err)
}

func (s *Server) reconcileBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.Reconcile(r.Context(), actorFrom(r))
	s.writeBudgets(w, r, budgets, err)
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Budgets.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Status())
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	var req service.BudgetInput
	if !decode(w, r, &req) {
		return
	}
	b, err := s.svc.Budgets.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Status())
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Budgets.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// alerts streams the actor's budget signals over a websocket.
func (s *Server) alerts(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if _, err := s.svc.Users.Get(r.Context(), actor); err != nil {
		fail(w, r, err)
		return
	}
	s.hub.ServeWS(w, r, actor)
}
