package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bilancio/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	in, err := parseDateRange(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.respond(w, s.reports.TransactionHistory(r.Context(), userID, in))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	var in core.TransactionInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	s.respond(w, s.transactions.Create(r.Context(), userID, in))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	s.respond(w, s.transactions.Delete(r.Context(), userID, mux.Vars(r)["id"]))
}
