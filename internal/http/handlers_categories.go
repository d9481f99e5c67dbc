package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bilancio/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	s.respond(w, s.categories.List(r.Context(), userID, r.URL.Query().Get("type")))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	var in core.CategoryInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	s.respond(w, s.categories.Create(r.Context(), userID, in))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	s.respond(w, s.categories.Delete(r.Context(), userID, mux.Vars(r)["id"]))
}
