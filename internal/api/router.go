/**
 * @description
 * This file sets up the HTTP router for the bank service. It defines the API
 * endpoints, associates them with their handlers, and applies middleware for
 * logging, panic recovery, timeouts, CORS and identity resolution.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser front end.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the bank service.
func Routes(h *Handlers, verifier TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(ResolveIdentity(verifier))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/auth/signup", h.SignupHandler)
	r.Post("/auth/login", h.LoginHandler)

	// Recipient lookup carries no balance or credentials, so the read itself
	// needs no identity; the UI only reaches it from authenticated sessions.
	r.Get("/recipients/{accountNumber}", h.RecipientLookupHandler)

	r.Get("/accounts/me", h.OwnProfileHandler)
	r.Get("/transactions", h.TransactionsHandler)
	r.Post("/transactions/deposit", h.DepositHandler)
	r.Post("/transactions/transfer", h.TransferHandler)
	r.Post("/transactions/{transactionID}/report", h.ReportTransactionHandler)

	return r
}
