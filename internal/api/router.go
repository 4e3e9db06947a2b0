// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qrispay-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Login collaborator hands over an authenticated (name, email) pair
	r.Post("/sessions", ledgerHandler.CreateSession)

	// Query and command surface per account
	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Get("/", ledgerHandler.GetAccount)
		r.Get("/topups", ledgerHandler.ListTopUps)
		r.Get("/withdrawals", ledgerHandler.ListWithdrawals)
		r.Post("/topups", ledgerHandler.CreateTopUp)
		r.Post("/withdrawals", ledgerHandler.CreateWithdrawal)
	})

	// Terminal transitions address the transaction directly
	r.Route("/topups/{transactionID}", func(r chi.Router) {
		r.Post("/confirm", ledgerHandler.ConfirmTopUp)
		r.Post("/fail", ledgerHandler.FailTopUp)
	})
	r.Route("/withdrawals/{transactionID}", func(r chi.Router) {
		r.Post("/confirm", ledgerHandler.ConfirmWithdrawal)
		r.Post("/fail", ledgerHandler.FailWithdrawal)
	})

	// Destination catalog for the presentation layer
	r.Get("/ewallets", ledgerHandler.GetEWallets)

	return r
}
