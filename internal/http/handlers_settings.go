package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	s.respond(w, s.settings.Get(r.Context(), userID))
}

func (s *Server) handleUpdateCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	var in core.CurrencyInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	s.respond(w, s.settings.UpdateCurrency(r.Context(), userID, in))
}
