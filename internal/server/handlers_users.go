package server

import (
	"net/http"
)

type createUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.svc.Users.Create(r.Context(), req.Username)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
