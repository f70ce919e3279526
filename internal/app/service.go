/**
 * @description
 * This file contains the core business logic for the bank service. The
 * `Service` struct orchestrates account lifecycle (signup, login) and the
 * read-only query surface, while transfer.go holds the money-movement
 * operations. Every core operation takes the resolved caller identity as an
 * explicit argument, never as ambient state. A nil identity means the
 * request is unauthenticated.
 *
 * Error shapes are deliberately split in two:
 * - hard failures (authentication missing, not found, not authorized,
 *   malformed input, duplicate email) surface as request-level errors;
 * - business-rule rejections on transfer surface as a success-shaped result
 *   with success=false and a human-readable message (see transfer.go).
 *
 * @dependencies
 * - golang.org/x/crypto/bcrypt: credential hashing and verification.
 * - internal/domain, internal/store: domain models and data access.
 * - pkg/token, pkg/rabbitmq: identity tokens and event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/store"
	"github.com/BIGSAMOFAFRICA/BANKAPP/pkg/rabbitmq"
	"github.com/BIGSAMOFAFRICA/BANKAPP/pkg/token"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidAmount          = errors.New("amount must be greater than 0")
	ErrInvalidSignup          = errors.New("name, email and password are required")
	ErrNotParticipant         = errors.New("not authorized to report this transaction")
)

// accountNumberAttempts bounds the retry loop on account-number collisions
// during signup. Collisions are rare enough that hitting the bound means
// something else is wrong.
const accountNumberAttempts = 5

// Service provides the core business logic for the bank.
type Service struct {
	repo           store.Repository
	tokens         *token.Issuer
	eventProducer  rabbitmq.Publisher
	limiter        RateLimiter
	bankCode       string
	openingBalance decimal.Decimal
	transferLimit  int
}

// NewService creates a new bank service instance. The event producer and rate
// limiter may be nil; both degrade to no-ops.
func NewService(repo store.Repository, tokens *token.Issuer, producer rabbitmq.Publisher, bankCode string, openingBalance decimal.Decimal) *Service {
	return &Service{
		repo:           repo,
		tokens:         tokens,
		eventProducer:  producer,
		bankCode:       bankCode,
		openingBalance: openingBalance,
	}
}

// SetTransferRateLimiter enables per-sender transfer rate limiting.
func (s *Service) SetTransferRateLimiter(limiter RateLimiter, perMinute int) {
	s.limiter = limiter
	s.transferLimit = perMinute
}

// BankCode returns the configured institution prefix.
func (s *Service) BankCode() string {
	return s.bankCode
}

// SignupParams carries everything needed to open a new account. The profile
// fields are informational only.
type SignupParams struct {
	Name        string
	Email       string
	Password    string
	Age         *int
	Gender      *string
	Occupation  *string
	IncomeRange *string
}

// AuthResult is returned by both Signup and Login.
type AuthResult struct {
	Account *domain.Account `json:"account"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

// Signup opens a new account with the configured opening balance, generating
// a fresh account number with the institution prefix. A duplicate email is a
// hard failure, unlike the business-outcome rejections on transfer.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	name := strings.TrimSpace(params.Name)
	email := domain.NormalizeEmail(params.Email)
	if name == "" || email == "" || params.Password == "" {
		return nil, ErrInvalidSignup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Balance:       s.openingBalance,
		Beneficiaries: []string{},
		Age:           params.Age,
		Gender:        params.Gender,
		Occupation:    params.Occupation,
		IncomeRange:   params.IncomeRange,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for attempt := 0; ; attempt++ {
		number, err := domain.NewAccountNumber(s.bankCode)
		if err != nil {
			return nil, err
		}
		account.AccountNumber = number

		err = s.repo.CreateAccount(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrDuplicateAccountNumber) && attempt < accountNumberAttempts-1 {
			continue
		}
		return nil, err
	}

	signed, err := s.tokens.Issue(account.ID, account.Email, account.AccountNumber)
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=app op=signup outcome=success account_number=%s", account.AccountNumber)
	return &AuthResult{
		Account: account,
		Token:   signed,
		Message: "Account created successfully",
	}, nil
}

// Login verifies the credential and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.repo.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(account.ID, account.Email, account.AccountNumber)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Account: account,
		Token:   signed,
		Message: "Login successful",
	}, nil
}

// OwnProfile returns the full account projection for the caller only.
func (s *Service) OwnProfile(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	return s.repo.FindAccountByID(ctx, identity.AccountID)
}

// VisibleTransactions returns the caller's transaction history, newest first.
// A transfer yields one debit visible only to the sender and one credit
// visible only to the receiver.
func (s *Service) VisibleTransactions(ctx context.Context, identity *domain.Identity) ([]domain.Transaction, error) {
	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	return s.repo.FindVisibleTransactions(ctx, identity.AccountNumber)
}

// LookupRecipient returns the public projection for an account number, or nil
// when no account matches. The read itself requires no authentication.
func (s *Service) LookupRecipient(ctx context.Context, accountNumber string) (*domain.PublicAccount, error) {
	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account.Public(), nil
}

func (s *Service) publishEvent(routingKey string, record *domain.Transaction) {
	if s.eventProducer == nil || record == nil {
		return
	}
	event := rabbitmq.TransferEvent{
		TransactionID: record.ID.String(),
		Amount:        record.Amount,
		Kind:          string(record.Type),
		Timestamp:     record.Timestamp,
	}
	if record.FromAccount != nil {
		event.FromAccount = *record.FromAccount
	}
	if record.ToAccount != nil {
		event.ToAccount = *record.ToAccount
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.eventProducer.Publish(ctx, routingKey, event); err != nil {
		log.Printf("level=warn component=app msg=\"event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
