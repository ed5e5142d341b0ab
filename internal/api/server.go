// Package api exposes the ledger services over HTTP. Routing is plain REST
// with JSON bodies; every route under /api/v1 except register and login
// requires a bearer token.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/hisaab/internal/auth"
	"github.com/mmynk/hisaab/internal/middleware"
	"github.com/mmynk/hisaab/internal/service"
)

// Server is the HTTP API server.
type Server struct {
	auth         *service.AuthService
	transactions *service.TransactionService
	debts        *service.DebtService
	groups       *service.GroupService
	reports      *service.ReportService
	jwtManager   *auth.JWTManager
}

// NewServer creates a new API server over the given services.
func NewServer(
	authService *service.AuthService,
	transactions *service.TransactionService,
	debts *service.DebtService,
	groups *service.GroupService,
	reports *service.ReportService,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		auth:         authService,
		transactions: transactions,
		debts:        debts,
		groups:       groups,
		reports:      reports,
		jwtManager:   jwtManager,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Get("/auth/me", s.handleCurrentUser)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleCreateTransaction)
				r.Get("/{id}", s.handleGetTransaction)
				r.Patch("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Route("/debts", func(r chi.Router) {
				r.Get("/", s.handleListDebts)
				r.Post("/", s.handleCreateDebt)
				r.Get("/{id}", s.handleGetDebt)
				r.Patch("/{id}", s.handleUpdateDebt)
				r.Delete("/{id}", s.handleDeleteDebt)
				r.Post("/{id}/payments", s.handleRecordPayment)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)
				r.Get("/{id}", s.handleGetGroup)
				r.Patch("/{id}", s.handleUpdateGroup)
				r.Post("/{id}/members", s.handleAddMember)
				r.Post("/{id}/expenses", s.handleAddExpense)
				r.Get("/{id}/balances", s.handleGetBalances)
				r.Get("/{id}/balances/audit", s.handleAuditBalances)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/dashboard", s.handleDashboard)
				r.Get("/groups", s.handleGroupOverview)
			})
		})
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
