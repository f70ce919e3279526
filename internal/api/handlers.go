/**
 * @description
 * This file contains the HTTP handlers for the bank service's API endpoints.
 * Handlers parse incoming requests, call the application service, and write
 * the response. They are also where the two error shapes meet HTTP: hard
 * failures map to request-level status codes, while transfer business
 * rejections pass through as 200 responses with success=false.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain, internal/store: service logic, models, errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/app"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/store"
)

// Handlers holds the application service that handlers delegate to.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type signupRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Age         *int    `json:"age,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Occupation  *string `json:"occupation,omitempty"`
	IncomeRange *string `json:"income_range,omitempty"`
}

// SignupHandler opens a new account. A duplicate email is a conflict, not a
// soft result.
func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.Signup(r.Context(), app.SignupParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Age:         req.Age,
		Gender:      req.Gender,
		Occupation:  req.Occupation,
		IncomeRange: req.IncomeRange,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		if errors.Is(err, app.ErrInvalidSignup) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=signup err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler verifies a credential and returns a bearer token.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("level=error component=api endpoint=login err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// OwnProfileHandler returns the caller's full account projection.
func (h *Handlers) OwnProfileHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.OwnProfile(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		h.writeServiceError(w, "own_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// TransactionsHandler returns the caller's visible transaction history.
func (h *Handlers) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.VisibleTransactions(r.Context(), GetIdentity(r.Context()))
	if err != nil {
		h.writeServiceError(w, "transactions", err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// RecipientLookupHandler resolves an account number to its public projection.
func (h *Handlers) RecipientLookupHandler(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	recipient, err := h.service.LookupRecipient(r.Context(), accountNumber)
	if err != nil {
		log.Printf("level=error component=api endpoint=recipient_lookup err=%v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if recipient == nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, recipient)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DepositHandler adds funds to the caller's own account.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.Deposit(r.Context(), GetIdentity(r.Context()), req.Amount)
	if err != nil {
		if errors.Is(err, app.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "Amount must be greater than 0")
			return
		}
		h.writeServiceError(w, "deposit", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type transferRequest struct {
	DestinationAccountNumber string          `json:"destination_account_number"`
	Amount                   decimal.Decimal `json:"amount"`
	Description              string          `json:"description,omitempty"`
}

// TransferHandler moves funds between two accounts. Business-rule rejections
// come back as 200 with success=false; only authentication and transport
// problems produce error statuses.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentity(r.Context())

	if allowed, retryAfter := h.service.ConsumeTransferRateLimit(r.Context(), identity); !allowed {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		writeError(w, http.StatusTooManyRequests, "Too many transfer attempts. Please wait and try again.")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	outcome, err := h.service.Transfer(r.Context(), identity, req.DestinationAccountNumber, req.Amount, req.Description)
	if err != nil {
		h.writeServiceError(w, "transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// ReportTransactionHandler flags a transaction the caller participated in.
func (h *Handlers) ReportTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ok, err := h.service.ReportTransaction(r.Context(), GetIdentity(r.Context()), transactionID, req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		if errors.Is(err, app.ErrNotParticipant) {
			writeError(w, http.StatusForbidden, "Not authorized to report this transaction")
			return
		}
		h.writeServiceError(w, "report_transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

// writeServiceError maps the common hard-failure sentinels to HTTP statuses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, app.ErrAuthenticationRequired):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, store.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "Account not found")
	default:
		log.Printf("level=error component=api endpoint=%s err=%v", endpoint, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
