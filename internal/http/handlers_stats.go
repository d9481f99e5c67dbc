package http

import (
	"net/http"
)

func (s *Server) handleBalanceStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	in, err := parseDateRange(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.respond(w, s.reports.BalanceStats(r.Context(), userID, in))
}

func (s *Server) handleCategoriesStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	in, err := parseDateRange(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.respond(w, s.reports.CategoriesStats(r.Context(), userID, in))
}

func (s *Server) handleHistoryData(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	in, err := parseHistoryInput(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.respond(w, s.reports.HistoryData(r.Context(), userID, in))
}

func (s *Server) handleHistoryPeriods(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDOrRedirect(w, r)
	if !ok {
		return
	}
	s.respond(w, s.reports.HistoryPeriods(r.Context(), userID))
}
