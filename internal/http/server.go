// Package http exposes the budget-tracking API over JSON. All domain
// routes live under /api behind JWT bearer authentication; outcomes travel
// in a {success, data|message} envelope.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"bilancio/internal/log"
	"bilancio/internal/services"
)

type Server struct {
	http.Server

	settings     *services.SettingsService
	categories   *services.CategoryService
	transactions *services.TransactionService
	reports      *services.ReportService

	jwtSecret []byte
	logger    *log.Logger
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(
	addr string,
	jwtSecret []byte,
	settings *services.SettingsService,
	categories *services.CategoryService,
	transactions *services.TransactionService,
	reports *services.ReportService,
	logger *log.Logger,
) *Server {
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		settings:     settings,
		categories:   categories,
		transactions: transactions,
		reports:      reports,
		jwtSecret:    jwtSecret,
		logger:       logger.WithComponent(log.ComponentHTTP),
	}

	router := mux.NewRouter()
	router.Use(s.withRequestLogging)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc(SignInPath, s.handleSignIn).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.withAuth)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings/currency", s.handleUpdateCurrency).Methods(http.MethodPut)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.handleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/stats/balance", s.handleBalanceStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/categories", s.handleCategoriesStats).Methods(http.MethodGet)

	api.HandleFunc("/history", s.handleHistoryData).Methods(http.MethodGet)
	api.HandleFunc("/history/periods", s.handleHistoryPeriods).Methods(http.MethodGet)

	s.Server.Handler = router
	return s
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.Server.Handler }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSignIn is the landing spot for redirected unauthenticated requests.
// The service issues no tokens itself; it tells the caller what is missing.
func (s *Server) handleSignIn(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusUnauthorized, services.Fail("authentication required"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	})
}
