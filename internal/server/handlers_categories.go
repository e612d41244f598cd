package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/pocketledger/internal/service"
)

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if !decode(w, r, &req) {
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(cats))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Categories.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if !decode(w, r, &req) {
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
