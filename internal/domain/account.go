/**
 * @description
 * This file defines the account domain model for the bank service. An account
 * carries the customer's identity, their hashed credential, the current balance,
 * and the ordered list of beneficiary account numbers built up by transfers.
 *
 * @notes
 * - Balances and amounts use shopspring/decimal so repeated add/subtract cycles
 *   never lose precision the way float64 arithmetic would.
 * - The account number is generated once at signup and is immutable afterwards.
 *   Its format is a persisted, externally visible contract:
 *   "<BANKCODE>-" followed by exactly ten digits.
 */

package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountNumberDigits is the number of digits following the bank code prefix.
const AccountNumberDigits = 10

// Account maps directly to the `accounts` table. The password hash is never
// serialized into API responses.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	PasswordHash  string          `json:"-"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Beneficiaries []string        `json:"beneficiaries"`
	Age           *int            `json:"age,omitempty"`
	Gender        *string         `json:"gender,omitempty"`
	Occupation    *string         `json:"occupation,omitempty"`
	IncomeRange   *string         `json:"income_range,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PublicAccount is the minimal projection returned by recipient lookup.
// It deliberately exposes neither the balance nor any credential material.
type PublicAccount struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	AccountNumber string    `json:"account_number"`
}

// Public returns the recipient-lookup projection of the account.
func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		AccountNumber: a.AccountNumber,
	}
}

// HasBeneficiary reports whether the account number is already on the
// beneficiary list.
func (a *Account) HasBeneficiary(accountNumber string) bool {
	for _, b := range a.Beneficiaries {
		if b == accountNumber {
			return true
		}
	}
	return false
}

// Identity is the resolved caller of a core operation, produced once per
// request from a verified bearer token. A nil *Identity means the request is
// unauthenticated.
type Identity struct {
	AccountID     uuid.UUID
	AccountNumber string
}

// NormalizeEmail lower-cases and trims an email address so that lookups and
// the uniqueness constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccountNumber generates a fresh account number with the given bank code
// prefix, e.g. "BSA-4830175926". Digits come from crypto/rand; collisions are
// handled by the caller retrying against the store's uniqueness constraint.
func NewAccountNumber(bankCode string) (string, error) {
	buf := make([]byte, AccountNumberDigits)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	digits := make([]byte, AccountNumberDigits)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return fmt.Sprintf("%s-%s", bankCode, digits), nil
}

// HasBankCodePrefix reports whether the account number carries the configured
// bank code prefix. Transfers are restricted to same-institution accounts.
func HasBankCodePrefix(accountNumber, bankCode string) bool {
	return strings.HasPrefix(accountNumber, bankCode+"-")
}

// ValidAccountNumber reports whether the string is a well-formed account
// number for the given bank code: the prefix followed by exactly ten digits.
func ValidAccountNumber(accountNumber, bankCode string) bool {
	rest, ok := strings.CutPrefix(accountNumber, bankCode+"-")
	if !ok || len(rest) != AccountNumberDigits {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
