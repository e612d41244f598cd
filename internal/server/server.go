package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/notify"
	"github.com/simonvc/pocketledger/internal/service"
)

type Server struct {
	svc    *service.Service
	hub    *notify.Hub
	log    zerolog.Logger
	router chi.Router
	http   *http.Server
}

func New(svc *service.Service, hub *notify.Hub, log zerolog.Logger, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	s := &Server{svc: svc, hub: hub, log: log, router: r}
	s.http = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.createUser)

		r.Group(func(r chi.Router) {
			r.Use(identity)

			// Users
			r.Get("/users/me", s.me)

			// Wallets
			r.Post("/wallets", s.createWallet)
			r.Get("/wallets", s.listWallets)
			r.Get("/wallets/{id}", s.getWallet)
			r.Patch("/wallets/{id}", s.updateWallet)
			r.Delete("/wallets/{id}", s.deleteWallet)
			r.Get("/wallets/{id}/transactions", s.listWalletTransactions)

			// Categories
			r.Post("/categories", s.createCategory)
			r.Get("/categories", s.listCategories)
			r.Get("/categories/{id}", s.getCategory)
			r.Patch("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			// Transactions
			r.Post("/transactions", s.createTransaction)
			r.Get("/transactions/{id}", s.getTransaction)
			r.Put("/transactions/{id}", s.updateTransaction)
			r.Delete("/transactions/{id}", s.deleteTransaction)

			// Budgets
			r.Post("/budgets", s.createBudget)
			r.Get("/budgets", s.listBudgets)
			r.Get("/budgets/active", s.listActiveBudgets)
			r.Get("/budgets/by-category/{id}", s.listBudgetsByCategory)
			r.Get("/budgets/by-date-range", s.listBudgetsByDateRange)
			r.Post("/budgets/reconcile", s.reconcileBudgets)
			r.Get("/budgets/{id}", s.getBudget)
			r.Put("/budgets/{id}", s.updateBudget)
			r.Delete("/budgets/{id}", s.deleteBudget)

			// Alerts
			r.Get("/alerts/ws", s.alerts)
		})
	})

	return s
}

func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("pocketledger server listening")
	return ignoreClosed(s.http.ListenAndServe())
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("pocketledger server listening")
	return ignoreClosed(s.http.Serve(ln))
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Alert streams are hijacked connections and are not waited on.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
