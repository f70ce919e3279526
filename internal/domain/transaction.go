/**
 * @description
 * This file defines the ledger record for the bank service. Every money
 * movement appends Transaction rows: a deposit appends a single credit with
 * only a destination, while a transfer between two accounts appends a
 * debit/credit pair that shares the same source, destination and amount.
 *
 * The credit leg of a transfer intentionally keeps the sender's account number
 * as its source even though it is only ever shown to the receiver. The history
 * query relies on that pairing to filter each party down to their own leg.
 *
 * @notes
 * - Records are immutable after creation except for the report fields, and the
 *   report flag is never un-set once raised.
 * - The kind-dependent field requirements are enforced by the constructors
 *   rather than by validation after the fact, so an invalid record cannot be
 *   built in the first place.
 */

package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the two ledger record kinds.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

const (
	// MaxReportReasonLength bounds the stored free-text report reason.
	MaxReportReasonLength = 500
	// DefaultReportReason is stored when a report reason is blank after trimming.
	DefaultReportReason = "Reported"
)

var (
	ErrNonPositiveAmount  = errors.New("amount must be greater than 0")
	ErrMissingDestination = errors.New("destination account is required for credit transactions")
	ErrMissingSource      = errors.New("source and destination accounts are required for debit transactions")
)

// Transaction maps directly to the `transactions` table. FromAccount and
// ToAccount are denormalized account-number strings, not structural
// references, so the ledger keeps its history even if account data changes.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	FromAccount  *string         `json:"from_account,omitempty"`
	ToAccount    *string         `json:"to_account,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Type         TransactionType `json:"type"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description,omitempty"`
	Reported     bool            `json:"reported"`
	ReportReason *string         `json:"report_reason,omitempty"`
	ReportedAt   *time.Time      `json:"reported_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewDepositTransaction builds the single credit record produced by a
// self-funding deposit. Only a destination is set.
func NewDepositTransaction(toAccount string, amount decimal.Decimal, description string) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositiveAmount
	}
	if toAccount == "" {
		return nil, ErrMissingDestination
	}
	now := time.Now().UTC()
	return &Transaction{
		ID:          uuid.New(),
		ToAccount:   &toAccount,
		Amount:      amount,
		Type:        TransactionCredit,
		Timestamp:   now,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewTransferPair builds the two records produced by a single logical
// transfer: one debit and one credit carrying the same source/destination
// pair and amount. Only the descriptions differ between the legs.
func NewTransferPair(fromAccount, toAccount string, amount decimal.Decimal, debitDescription, creditDescription string) (debit, credit *Transaction, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrNonPositiveAmount
	}
	if fromAccount == "" || toAccount == "" {
		return nil, nil, ErrMissingSource
	}
	now := time.Now().UTC()
	debit = &Transaction{
		ID:          uuid.New(),
		FromAccount: &fromAccount,
		ToAccount:   &toAccount,
		Amount:      amount,
		Type:        TransactionDebit,
		Timestamp:   now,
		Description: debitDescription,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	credit = &Transaction{
		ID:          uuid.New(),
		FromAccount: &fromAccount,
		ToAccount:   &toAccount,
		Amount:      amount,
		Type:        TransactionCredit,
		Timestamp:   now,
		Description: creditDescription,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return debit, credit, nil
}

// InvolvesAccount reports whether the account number is either party of the
// record. Only participants may report a transaction.
func (t *Transaction) InvolvesAccount(accountNumber string) bool {
	if t.FromAccount != nil && *t.FromAccount == accountNumber {
		return true
	}
	if t.ToAccount != nil && *t.ToAccount == accountNumber {
		return true
	}
	return false
}

// SanitizeReportReason trims and bounds a user-supplied report reason,
// substituting the default placeholder when nothing is left.
func SanitizeReportReason(reason string) string {
	trimmed := []rune(strings.TrimSpace(reason))
	if len(trimmed) == 0 {
		return DefaultReportReason
	}
	if len(trimmed) > MaxReportReasonLength {
		trimmed = trimmed[:MaxReportReasonLength]
	}
	return string(trimmed)
}
