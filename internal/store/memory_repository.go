/**
 * @description
 * This file provides an in-memory implementation of the `Repository`
 * interface. It backs the service when no DATABASE_URL is configured (demo
 * mode, nothing is persisted across restarts) and the test suite.
 *
 * TransferFunds keeps the same all-or-nothing contract as the PostgreSQL
 * implementation: all writes are staged against copies and only swapped into
 * the live maps once every sub-operation has succeeded. A fault-injection
 * hook lets tests fail the unit mid-way and observe that nothing leaked.
 */

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

// MemoryRepository is a mutex-guarded, map-backed Repository.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	byEmail  map[string]uuid.UUID
	byNumber map[string]uuid.UUID
	ledger   []*domain.Transaction

	// failNextTransfer, when set, aborts the next TransferFunds call after all
	// writes have been staged but before they are committed. Used by tests to
	// exercise the rollback path.
	failNextTransfer error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
		byEmail:  make(map[string]uuid.UUID),
		byNumber: make(map[string]uuid.UUID),
	}
}

// FailNextTransfer injects a fault into the next TransferFunds call, after
// staging and before commit. The fault fires once.
func (r *MemoryRepository) FailNextTransfer(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNextTransfer = err
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Beneficiaries = append([]string(nil), a.Beneficiaries...)
	return &clone
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return ErrDuplicateEmail
	}
	if _, exists := r.byNumber[account.AccountNumber]; exists {
		return ErrDuplicateAccountNumber
	}
	stored := cloneAccount(account)
	r.accounts[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	r.byNumber[stored.AccountNumber] = stored.ID
	return nil
}

func (r *MemoryRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (r *MemoryRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *MemoryRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byNumber[accountNumber]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

func (r *MemoryRepository) DepositFunds(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, credit *domain.Transaction) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(amount)
	account.UpdatedAt = time.Now().UTC()
	r.ledger = append(r.ledger, cloneTransaction(credit))
	return account.Balance, nil
}

func (r *MemoryRepository) TransferFunds(ctx context.Context, params TransferParams) (*TransferResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.accounts[params.SenderID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	receiver, ok := r.accounts[params.ReceiverID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if sender.Balance.LessThan(params.Amount) {
		return nil, ErrInsufficientFunds
	}

	// Stage every write against copies; the live maps are untouched until the
	// staged state is swapped in below.
	stagedSender := cloneAccount(sender)
	stagedReceiver := cloneAccount(receiver)
	now := time.Now().UTC()
	stagedSender.Balance = stagedSender.Balance.Sub(params.Amount)
	stagedReceiver.Balance = stagedReceiver.Balance.Add(params.Amount)
	stagedSender.UpdatedAt = now
	stagedReceiver.UpdatedAt = now
	if !stagedSender.HasBeneficiary(stagedReceiver.AccountNumber) {
		stagedSender.Beneficiaries = append(stagedSender.Beneficiaries, stagedReceiver.AccountNumber)
	}

	if r.failNextTransfer != nil {
		err := r.failNextTransfer
		r.failNextTransfer = nil
		return nil, err
	}

	r.accounts[params.SenderID] = stagedSender
	r.accounts[params.ReceiverID] = stagedReceiver
	r.ledger = append(r.ledger, cloneTransaction(params.Debit), cloneTransaction(params.Credit))

	return &TransferResult{
		SenderBalance:   stagedSender.Balance,
		ReceiverBalance: stagedReceiver.Balance,
	}, nil
}

func (r *MemoryRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.ledger {
		if record.ID == id {
			return cloneTransaction(record), nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (r *MemoryRepository) FindVisibleTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var visible []domain.Transaction
	for _, record := range r.ledger {
		switch record.Type {
		case domain.TransactionDebit:
			if record.FromAccount != nil && *record.FromAccount == accountNumber {
				visible = append(visible, *cloneTransaction(record))
			}
		case domain.TransactionCredit:
			if record.ToAccount != nil && *record.ToAccount == accountNumber {
				visible = append(visible, *cloneTransaction(record))
			}
		}
	}
	// Newest first. The ledger is append-only, so insertion order breaks ties
	// between records sharing a timestamp.
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Timestamp.After(visible[j].Timestamp)
	})
	return visible, nil
}

func (r *MemoryRepository) MarkTransactionReported(ctx context.Context, id uuid.UUID, reason string, reportedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.ledger {
		if record.ID != id {
			continue
		}
		if record.Reported {
			return false, nil
		}
		record.Reported = true
		record.ReportReason = &reason
		at := reportedAt
		record.ReportedAt = &at
		record.UpdatedAt = time.Now().UTC()
		return true, nil
	}
	return false, ErrTransactionNotFound
}
