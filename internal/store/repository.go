/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the bank service performs against the account store and the
 * transaction ledger. Defining an interface decouples the transfer engine from
 * the storage engine: the same business logic runs against PostgreSQL in
 * production and against the in-memory store in demo mode and tests.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid, github.com/shopspring/decimal: id and money types.
 * - internal/domain: the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrDuplicateEmail         = errors.New("an account with this email already exists")
	ErrDuplicateAccountNumber = errors.New("account number already in use")
	ErrInsufficientFunds      = errors.New("insufficient balance")
)

// TransferParams carries everything the atomic transfer unit needs: the two
// locked parties, the amount, and the pre-built ledger pair to append.
type TransferParams struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Amount     decimal.Decimal
	Debit      *domain.Transaction
	Credit     *domain.Transaction
}

// TransferResult reports both post-commit balances of a successful transfer.
type TransferResult struct {
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

// Repository defines the set of methods for interacting with the account
// store and the transaction ledger.
//
// DepositFunds and TransferFunds are the only operations that mutate a
// balance, and each executes as a single atomic unit: every sub-write commits
// together or none do. TransferFunds covers six sub-operations: debit the
// sender, credit the receiver, append the receiver to the sender's
// beneficiary list when absent, and insert both ledger legs.
type Repository interface {
	// Account store
	CreateAccount(ctx context.Context, account *domain.Account) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// Transfer engine mutations
	DepositFunds(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, credit *domain.Transaction) (decimal.Decimal, error)
	TransferFunds(ctx context.Context, params TransferParams) (*TransferResult, error)

	// Transaction ledger
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// FindVisibleTransactions returns the records the account is allowed to
	// see: debits it sent and credits it received, newest first. The filter is
	// asymmetric on purpose so neither party sees the other party's leg of the
	// same transfer.
	FindVisibleTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
	// MarkTransactionReported sets the report fields if the record is not yet
	// reported. It returns false without error when the record was already
	// reported, making repeat reports a no-op.
	MarkTransactionReported(ctx context.Context, id uuid.UUID, reason string, reportedAt time.Time) (bool, error)
}
